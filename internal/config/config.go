// Package config handles the configuration directory, the optional
// config.yaml file and the settings derived from them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskflow"

	// ConfigFile is the optional YAML settings filename.
	ConfigFile = "config.yaml"

	// SessionFile is the stored session filename.
	SessionFile = "session.json"

	// DefaultAPIBase is used when neither the file, the environment nor a flag
	// names the API.
	DefaultAPIBase = "http://localhost:4000"

	// DefaultTimeout bounds every API call.
	DefaultTimeout = 10 * time.Second

	// EnvAPIBase overrides api_base from config.yaml.
	EnvAPIBase = "TASKFLOW_API_BASE"
)

// Session backends.
const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `yaml:"-"`

	// APIBase is the base URL of the task API.
	APIBase string `yaml:"api_base"`

	// Timeout bounds a single API call.
	Timeout time.Duration `yaml:"timeout"`

	// Session selects where the session token is kept.
	Session SessionConfig `yaml:"session"`

	// Debug enables debug logging.
	Debug bool `yaml:"debug"`

	// Quiet suppresses informational output.
	Quiet bool `yaml:"-"`
}

// SessionConfig controls the session store backend.
type SessionConfig struct {
	Backend   string `yaml:"backend"`    // "file" (default) or "redis"
	RedisURL  string `yaml:"redis_url"`  // redis://host:port/db
	KeyPrefix string `yaml:"key_prefix"` // prepended to tf_token / tf_email
}

// Default returns a config with defaults applied for the given directory.
func Default(dir string) *Config {
	return &Config{
		Dir:     dir,
		APIBase: DefaultAPIBase,
		Timeout: DefaultTimeout,
		Session: SessionConfig{Backend: SessionBackendFile},
	}
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskflow or $HOME/.config/taskflow.
// A config.yaml in the directory is applied when present, then the
// TASKFLOW_API_BASE environment variable.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := Default(dir)
	if err := cfg.load(); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIBase)); v != "" {
		cfg.APIBase = v
	}
	return cfg, cfg.Validate()
}

func (c *Config) load() error {
	data, err := os.ReadFile(c.ConfigPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", c.ConfigPath(), err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", c.ConfigPath(), err)
	}
	return nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBase) == "" {
		return errors.New("api_base must not be empty")
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	switch c.Session.Backend {
	case "":
		c.Session.Backend = SessionBackendFile
	case SessionBackendFile:
	case SessionBackendRedis:
		if c.Session.RedisURL == "" {
			return errors.New("session.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown session backend: %s", c.Session.Backend)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
