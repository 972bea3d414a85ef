// Package config loads and watches the tfbridge configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid config")
)

const (
	// DefaultToolPath is the client executable looked up on PATH.
	DefaultToolPath = "tf"

	// DefaultHistoryWindow is the bounded first pass of rename-history
	// reconstruction.
	DefaultHistoryWindow = 50

	// DefaultCommandTimeoutMs is the per-command timeout applied by the
	// CLI. Zero disables the timeout; the core itself never times out.
	DefaultCommandTimeoutMs = 0
)

// Config is the application configuration. Accessors are mutex-guarded so a
// reload from the watcher can swap values under running callers.
type Config struct {
	ToolPath         string `yaml:"tool_path,omitempty"`
	Collection       string `yaml:"collection,omitempty"`
	Login            string `yaml:"login,omitempty"`
	HistoryWindow    int    `yaml:"history_window,omitempty"`
	HistoryCap       int    `yaml:"history_cap,omitempty"`
	CommandTimeoutMs int    `yaml:"command_timeout_ms,omitempty"`
	// MergeCommand is the external merge tool invoked for manual merges.
	// The conflicted file path is appended as the last argument.
	MergeCommand []string `yaml:"merge_command,omitempty"`

	// path is where this config was loaded from or should be saved to.
	path string `yaml:"-"`

	mu sync.RWMutex `yaml:"-"`
}

// DefaultPath returns the config file location under the user home.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".tfbridge", "config.yaml"), nil
}

// New returns a config populated with defaults.
func New(path string) *Config {
	return &Config{
		ToolPath:      DefaultToolPath,
		HistoryWindow: DefaultHistoryWindow,
		path:          path,
	}
}

// Load reads the config file, applying defaults for missing fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := New(path)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrDefault loads the config file if it exists, otherwise returns the
// defaults without an error.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, ErrConfigNotFound) {
		return New(path), nil
	}
	return cfg, err
}

// Save writes the config to its file path, creating parent directories.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.path == "" {
		return fmt.Errorf("%w: no file path set", ErrInvalidConfig)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Reload re-reads the config file in place. Called by the watcher.
func (c *Config) Reload() error {
	c.mu.RLock()
	path := c.path
	c.mu.RUnlock()

	fresh, err := Load(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ToolPath = fresh.ToolPath
	c.Collection = fresh.Collection
	c.Login = fresh.Login
	c.HistoryWindow = fresh.HistoryWindow
	c.HistoryCap = fresh.HistoryCap
	c.CommandTimeoutMs = fresh.CommandTimeoutMs
	c.MergeCommand = fresh.MergeCommand
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// GetToolPath returns the client executable path.
func (c *Config) GetToolPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ToolPath
}

// GetCollection returns the collection URL.
func (c *Config) GetCollection() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Collection
}

// GetLogin returns the "user,password" credential pair.
func (c *Config) GetLogin() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Login
}

// GetHistoryWindow returns the bounded rename-search window.
func (c *Config) GetHistoryWindow() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.HistoryWindow
}

// GetHistoryCap returns the ceiling for the unbounded rename-search pass;
// zero means no ceiling.
func (c *Config) GetHistoryCap() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.HistoryCap
}

// CommandTimeout returns the per-command timeout; zero disables it.
func (c *Config) CommandTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.CommandTimeoutMs) * time.Millisecond
}

// GetMergeCommand returns a copy of the external merge tool command line.
func (c *Config) GetMergeCommand() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.MergeCommand))
	copy(out, c.MergeCommand)
	return out
}

func (c *Config) applyDefaults() {
	if c.ToolPath == "" {
		c.ToolPath = DefaultToolPath
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = DefaultHistoryWindow
	}
	if c.HistoryCap < 0 {
		c.HistoryCap = 0
	}
}
