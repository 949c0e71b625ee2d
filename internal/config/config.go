// Package config handles the XDG configuration directory, the optional
// config file and the task store base address.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the optional YAML config filename inside Dir.
	ConfigFile = "config.yaml"

	// LogFile is the default diagnostic log filename used by the UI.
	LogFile = "todo.log"

	// DefaultBaseURL is the task store address used when nothing else is configured.
	DefaultBaseURL = "http://localhost:8080"

	// BaseURLEnv overrides the base address from the config file.
	BaseURLEnv = "TODO_BASE_URL"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// BaseURL is the task store address, without a trailing slash.
	BaseURL string

	// RequestTimeout bounds each task store request. Zero means no timeout.
	RequestTimeout time.Duration

	// LogPath is where diagnostic records are written as JSON lines.
	// Empty means no file log.
	LogPath string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// fileConfig mirrors config.yaml.
type fileConfig struct {
	BaseURL        string `yaml:"base_url"`
	RequestTimeout string `yaml:"request_timeout"`
	LogFile        string `yaml:"log_file"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
// A missing config.yaml is not an error; a malformed one is.
func New(configDir string) (*Config, error) {
	cfg := Default(configDir)

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}

	if env := strings.TrimSpace(os.Getenv(BaseURLEnv)); env != "" {
		cfg.BaseURL = env
	}
	if err := cfg.SetBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without reading config.yaml
// or the environment.
func Default(configDir string) *Config {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, BaseURL: DefaultBaseURL}
}

// loadFile applies config.yaml on top of the defaults.
func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid %s: request_timeout: %q", ConfigFile, fc.RequestTimeout)
		}
		c.RequestTimeout = d
	}
	if fc.LogFile != "" {
		c.LogPath = c.resolve(fc.LogFile)
	}
	return nil
}

// SetBaseURL validates and stores the task store address.
// Only absolute http and https URLs are accepted.
func (c *Config) SetBaseURL(raw string) error {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(trimmed)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base url: %q", raw)
	}
	c.BaseURL = trimmed
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

// Path returns the path to the config file.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// DefaultLogPath returns the log path used by the UI when none is configured.
func (c *Config) DefaultLogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// resolve makes relative paths from the config file relative to Dir.
func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}
