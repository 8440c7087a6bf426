// Package config loads the penbox configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the penbox configuration.
type Config struct {
	Title   string        `yaml:"title"`
	Server  ServerConfig  `yaml:"server"`
	Persist PersistConfig `yaml:"persist"`
	Editor  EditorConfig  `yaml:"editor"`
	Preview PreviewConfig `yaml:"preview"`
}

// ServerConfig configures the local HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// PersistConfig configures the snapshot store and the debounce window.
type PersistConfig struct {
	Backend  string `yaml:"backend"`  // "sqlite", "postgres" or "memory"
	Path     string `yaml:"path"`     // For sqlite: database file path
	DSN      string `yaml:"dsn"`      // For postgres: connection string (env vars expanded)
	Debounce string `yaml:"debounce"` // Quiet period before autosave (e.g., "800ms")
}

// EditorConfig configures the browser editor widgets.
type EditorConfig struct {
	Theme   string `yaml:"theme"` // "light" or "dark"
	TabSize int    `yaml:"tab_size"`
	Mirror  string `yaml:"mirror"` // Optional workspace directory mirrored to files
}

// PreviewConfig configures the preview and status surfaces.
type PreviewConfig struct {
	StatusDuration string `yaml:"status_duration"` // How long a status message stays visible
}

// configFileNames are searched in order by LoadFromDir.
var configFileNames = []string{"penbox.yaml", "penbox.yml"}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Title: "Penbox",
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Persist: PersistConfig{
			Backend: "sqlite",
			Path:    "./penbox.db",
		},
		Editor: EditorConfig{
			Theme:   "dark",
			TabSize: 2,
		},
	}
}

// Load reads the configuration from a specific file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for a config file in dir and falls back to defaults
// when none exists.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return DefaultConfig(), nil
}

// Validate checks field values that cannot be expressed by the schema.
func (c *Config) Validate() error {
	switch c.Persist.Backend {
	case "", "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("invalid persist backend %q: must be sqlite, postgres or memory", c.Persist.Backend)
	}

	switch c.Editor.Theme {
	case "", "light", "dark":
	default:
		return fmt.Errorf("invalid editor theme %q: must be light or dark", c.Editor.Theme)
	}

	if c.Persist.Debounce != "" {
		if _, err := time.ParseDuration(c.Persist.Debounce); err != nil {
			return fmt.Errorf("invalid persist debounce %q: %w", c.Persist.Debounce, err)
		}
	}

	if c.Preview.StatusDuration != "" {
		if _, err := time.ParseDuration(c.Preview.StatusDuration); err != nil {
			return fmt.Errorf("invalid status duration %q: %w", c.Preview.StatusDuration, err)
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	return nil
}

// GetDebounce returns the parsed debounce window (default: 800ms).
func (c *Config) GetDebounce() time.Duration {
	if c.Persist.Debounce == "" {
		return 800 * time.Millisecond
	}
	d, err := time.ParseDuration(c.Persist.Debounce)
	if err != nil {
		return 800 * time.Millisecond
	}
	return d
}

// GetStatusDuration returns the parsed status display duration
// (default: 4s).
func (c *Config) GetStatusDuration() time.Duration {
	if c.Preview.StatusDuration == "" {
		return 4 * time.Second
	}
	d, err := time.ParseDuration(c.Preview.StatusDuration)
	if err != nil {
		return 4 * time.Second
	}
	return d
}

// GetDSN returns the postgres DSN with environment variables expanded.
func (c *Config) GetDSN() string {
	return os.ExpandEnv(c.Persist.DSN)
}

// GetTabSize returns the editor tab size (default: 2).
func (c *Config) GetTabSize() int {
	if c.Editor.TabSize <= 0 {
		return 2
	}
	return c.Editor.TabSize
}

// GetTheme returns the editor theme (default: dark).
func (c *Config) GetTheme() string {
	if c.Editor.Theme == "" {
		return "dark"
	}
	return c.Editor.Theme
}
