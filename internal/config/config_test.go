package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	dir := t.TempDir()

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected dir %s, got %s", dir, cfg.Dir)
	}
	if cfg.APIBase != DefaultAPIBase {
		t.Errorf("expected %s, got %s", DefaultAPIBase, cfg.APIBase)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected %v, got %v", DefaultTimeout, cfg.Timeout)
	}
	if cfg.Session.Backend != SessionBackendFile {
		t.Errorf("expected file backend, got %q", cfg.Session.Backend)
	}
}

func TestNew_LoadsYAML(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	dir := t.TempDir()
	writeConfig(t, dir, `
api_base: https://tasks.example.com
timeout: 3s
debug: true
session:
  backend: redis
  redis_url: redis://localhost:6379/2
  key_prefix: "cli:"
`)

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.APIBase != "https://tasks.example.com" {
		t.Errorf("unexpected api_base %q", cfg.APIBase)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Timeout)
	}
	if !cfg.Debug {
		t.Error("expected debug")
	}
	want := SessionConfig{Backend: SessionBackendRedis, RedisURL: "redis://localhost:6379/2", KeyPrefix: "cli:"}
	if cfg.Session != want {
		t.Errorf("expected %+v, got %+v", want, cfg.Session)
	}
	if cfg.Dir != dir {
		t.Error("config file must not override Dir")
	}
}

func TestNew_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "api_base: https://file.example.com\n")
	t.Setenv(EnvAPIBase, "https://env.example.com")

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.APIBase != "https://env.example.com" {
		t.Errorf("expected env override, got %q", cfg.APIBase)
	}
}

func TestNew_InvalidYAML(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	dir := t.TempDir()
	writeConfig(t, dir, "api_base: [unterminated\n")

	_, err := New(dir)
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty api", func(c *Config) { c.APIBase = "  " }, "api_base"},
		{"redis without url", func(c *Config) { c.Session.Backend = SessionBackendRedis }, "redis_url"},
		{"unknown backend", func(c *Config) { c.Session.Backend = "etcd" }, "unknown session backend"},
		{"blank backend defaults", func(c *Config) { c.Session.Backend = "" }, ""},
		{"zero timeout defaults", func(c *Config) { c.Timeout = 0 }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if cfg.Timeout != DefaultTimeout || cfg.Session.Backend != SessionBackendFile {
					t.Errorf("defaults not applied: %+v", cfg)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("unexpected dir %s", got)
	}
}

func TestPaths(t *testing.T) {
	cfg := Default("/cfg")
	if cfg.ConfigPath() != filepath.Join("/cfg", ConfigFile) {
		t.Errorf("unexpected config path %s", cfg.ConfigPath())
	}
	if cfg.SessionPath() != filepath.Join("/cfg", SessionFile) {
		t.Errorf("unexpected session path %s", cfg.SessionPath())
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", AppName)
	cfg := Default(dir)
	if err := cfg.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("expected 0700, got %o", perm)
	}
}
