package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"taskflow/internal/cli"
	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/session"
	"taskflow/internal/tasks"
	"taskflow/internal/testutil"
)

// testFactory creates an env factory over the given FakeService and store.
// The config it was called with is stored in seen.
func testFactory(svc *testutil.FakeService, store session.Store, seen **config.Config) cli.EnvFactory {
	return func(ctx context.Context, cfg *config.Config, logger *log.Logger) (*commands.Env, error) {
		if seen != nil {
			*seen = cfg
		}
		return &commands.Env{Service: svc, Store: store, Log: logger}, nil
	}
}

func signedIn() *session.MemoryStore {
	return session.NewMemoryStore(session.Session{Token: "abc", Email: "u@x.com"})
}

func run(t *testing.T, factory cli.EnvFactory, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvAPIBase, "")
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	var out, errOut bytes.Buffer
	code = dispatcher.Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	svc := testutil.NewFakeService("abc")
	_, stderr, code := run(t, testFactory(svc, signedIn(), nil), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	svc := testutil.NewFakeService("abc")
	_, stderr, code := run(t, testFactory(svc, signedIn(), nil), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := run(t, testFactory(testutil.NewFakeService("abc"), signedIn(), nil), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, _, code := run(t, testFactory(testutil.NewFakeService("abc"), signedIn(), nil), "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "taskflow 0.1.0\n" {
		t.Errorf("expected 'taskflow 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService("abc"), signedIn(), nil), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService("abc"), signedIn(), nil), "list", "--status")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -status\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	svc := testutil.NewFakeService("abc")
	svc.AddTask(tasks.Task{ID: "1", Title: "A", Status: tasks.StatusPending, Priority: tasks.PriorityLow})

	stdout, _, code := run(t, testFactory(svc, signedIn(), nil), []string{}...)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "1         Pending      Low     A\n") {
		t.Errorf("expected the dashboard, got %q", stdout)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService("abc")
	store := session.NewMemoryStore(session.Session{})

	for _, name := range []string{"list", "add", "edit", "status", "rm", "whoami"} {
		_, stderr, code := run(t, testFactory(svc, store, nil), name, "x")
		if code != exitcode.AuthError {
			t.Errorf("%s: expected exit code %d, got %d", name, exitcode.AuthError, code)
		}
		if stderr != "error: not logged in (run: taskflow login)\n" {
			t.Errorf("%s: unexpected stderr %q", name, stderr)
		}
	}
	if n := len(svc.Calls()); n != 0 {
		t.Errorf("expected no API calls, got %d", n)
	}
}

func TestDispatcher_LoginDoesNotNeedSession(t *testing.T) {
	svc := testutil.NewFakeService("abc")
	svc.AddUser("u@x.com", "pw")
	store := session.NewMemoryStore(session.Session{})

	stdout, stderr, code := run(t, testFactory(svc, store, nil), "login", "--email", "u@x.com", "--password", "pw")

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if stdout != "logged in as u@x.com\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestDispatcher_CommonFlags(t *testing.T) {
	var seen *config.Config
	dir := t.TempDir()
	_, _, code := run(t, testFactory(testutil.NewFakeService("abc"), signedIn(), &seen),
		"version", "--config", dir, "--api", "https://api.example.com", "--quiet", "--debug")

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if seen.Dir != dir || seen.APIBase != "https://api.example.com" || !seen.Quiet || !seen.Debug {
		t.Errorf("common flags not applied: %+v", seen)
	}
}

func TestDispatcher_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("api_base: https://file.example.com\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var seen *config.Config
	factory := testFactory(testutil.NewFakeService("abc"), signedIn(), &seen)

	if _, _, code := run(t, factory, "version", "--config", dir); code != exitcode.Success {
		t.Fatalf("unexpected exit code %d", code)
	}
	if seen.APIBase != "https://file.example.com" {
		t.Errorf("expected file value, got %q", seen.APIBase)
	}

	if _, _, code := run(t, factory, "version", "--config", dir, "--api", "https://flag.example.com"); code != exitcode.Success {
		t.Fatalf("unexpected exit code %d", code)
	}
	if seen.APIBase != "https://flag.example.com" {
		t.Errorf("flag should win, got %q", seen.APIBase)
	}
}

func TestDispatcher_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("session:\n  backend: etcd\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := run(t, testFactory(testutil.NewFakeService("abc"), signedIn(), nil), "list", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: unknown session backend: etcd\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config, logger *log.Logger) (*commands.Env, error) {
		return nil, errors.New("session store: redis: invalid URL")
	}

	_, stderr, code := run(t, factory, "list")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session store: redis: invalid URL\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestDispatcher_ClosesEnv(t *testing.T) {
	closed := false
	factory := func(ctx context.Context, cfg *config.Config, logger *log.Logger) (*commands.Env, error) {
		return &commands.Env{
			Service: testutil.NewFakeService("abc"),
			Store:   signedIn(),
			Closer:  closerFunc(func() error { closed = true; return nil }),
		}, nil
	}

	if _, _, code := run(t, factory, "whoami"); code != exitcode.Success {
		t.Fatalf("unexpected exit code %d", code)
	}
	if !closed {
		t.Error("env closer should run after the command")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	cli.NewLogger(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug must be off by default, got %q", buf.String())
	}

	cli.NewLogger(&buf, true).WithField("k", "v").Debug("shown")
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "k=v") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestDispatcher_DebugLogsExit(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService("abc"), signedIn(), nil),
		"version", "--config", t.TempDir(), "--debug")

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if !strings.Contains(stderr, "command=version") || !strings.Contains(stderr, "exit=success") {
		t.Errorf("expected dispatch debug lines, got %q", stderr)
	}
}
