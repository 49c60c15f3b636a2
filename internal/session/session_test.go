package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"taskflow/internal/session"
)

// storeFactories returns a fresh store of every backend.
func storeFactories(t *testing.T) map[string]func() session.Store {
	t.Helper()
	return map[string]func() session.Store{
		"memory": func() session.Store {
			return session.NewMemoryStore(session.Session{})
		},
		"file": func() session.Store {
			return session.NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json"))
		},
		"redis": func() session.Store {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("start miniredis: %v", err)
			}
			t.Cleanup(mr.Close)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return session.NewRedisStore(client, "test:")
		},
	}
}

func TestStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore()

			got, err := store.Get(ctx)
			if err != nil {
				t.Fatalf("Get on empty store: %v", err)
			}
			if got.Active() {
				t.Fatalf("expected empty session, got %+v", got)
			}

			if err := store.Set(ctx, "abc", "u@x.com"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err = store.Get(ctx)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			want := session.Session{Token: "abc", Email: "u@x.com"}
			if got != want {
				t.Errorf("expected %+v, got %+v", want, got)
			}

			if err := store.Clear(ctx); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			got, _ = store.Get(ctx)
			if got != (session.Session{}) {
				t.Errorf("expected cleared session, got %+v", got)
			}

			// Clearing twice is fine.
			if err := store.Clear(ctx); err != nil {
				t.Errorf("second Clear: %v", err)
			}
		})
	}
}

func TestStore_SetRequiresBothValues(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := newStore()
			if err := store.Set(ctx, "", "u@x.com"); !errors.Is(err, session.ErrIncomplete) {
				t.Errorf("expected ErrIncomplete for empty token, got %v", err)
			}
			if err := store.Set(ctx, "abc", ""); !errors.Is(err, session.ErrIncomplete) {
				t.Errorf("expected ErrIncomplete for empty email, got %v", err)
			}
		})
	}
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := session.NewFileStore(path)

	if err := store.Set(context.Background(), "abc", "u@x.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain")
	}
}

func TestFileStore_SurvivesNewInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()
	if err := session.NewFileStore(path).Set(ctx, "abc", "u@x.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := session.NewFileStore(path).Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Token != "abc" || got.Email != "u@x.com" {
		t.Errorf("unexpected session %+v", got)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := session.NewFileStore(path).Get(context.Background()); err == nil {
		t.Error("expected error for corrupt session file")
	}
}

func TestFileStore_HalfSessionIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"tf_token":"abc"}`), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := session.NewFileStore(path).Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Active() {
		t.Errorf("a session without email must read as empty, got %+v", got)
	}
}

func TestRedisStore_KeysArePrefixed(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := session.NewRedisStore(client, "app1:")
	if err := store.Set(context.Background(), "abc", "u@x.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if v, _ := mr.Get("app1:tf_token"); v != "abc" {
		t.Errorf("expected token under prefixed key, got %q", v)
	}
	if v, _ := mr.Get("app1:tf_email"); v != "u@x.com" {
		t.Errorf("expected email under prefixed key, got %q", v)
	}
	if mr.Exists("tf_token") {
		t.Error("unprefixed key should not exist")
	}
}

func TestNewRedisStoreFromURL_Invalid(t *testing.T) {
	if _, err := session.NewRedisStoreFromURL("http://nope", ""); err == nil {
		t.Error("expected error for non-redis URL")
	}
}
