package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Title != "Penbox" {
		t.Errorf("unexpected default title: %q", cfg.Title)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("unexpected default server: %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Persist.Backend != "sqlite" {
		t.Errorf("unexpected default backend: %q", cfg.Persist.Backend)
	}
	if cfg.GetDebounce() != 800*time.Millisecond {
		t.Errorf("unexpected default debounce: %v", cfg.GetDebounce())
	}
	if cfg.GetStatusDuration() != 4*time.Second {
		t.Errorf("unexpected default status duration: %v", cfg.GetStatusDuration())
	}
	if cfg.GetTheme() != "dark" {
		t.Errorf("unexpected default theme: %q", cfg.GetTheme())
	}
	if cfg.GetTabSize() != 2 {
		t.Errorf("unexpected default tab size: %d", cfg.GetTabSize())
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "penbox.yaml")
	content := `title: My Pen
server:
  port: 9000
persist:
  backend: memory
  debounce: 250ms
editor:
  theme: light
  tab_size: 4
preview:
  status_duration: 2s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Title != "My Pen" {
		t.Errorf("title = %q", cfg.Title)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	// Host was not set in the file; the default survives the merge.
	if cfg.Server.Host != "localhost" {
		t.Errorf("host = %q", cfg.Server.Host)
	}
	if cfg.Persist.Backend != "memory" {
		t.Errorf("backend = %q", cfg.Persist.Backend)
	}
	if cfg.GetDebounce() != 250*time.Millisecond {
		t.Errorf("debounce = %v", cfg.GetDebounce())
	}
	if cfg.GetStatusDuration() != 2*time.Second {
		t.Errorf("status duration = %v", cfg.GetStatusDuration())
	}
	if cfg.GetTheme() != "light" {
		t.Errorf("theme = %q", cfg.GetTheme())
	}
	if cfg.GetTabSize() != 4 {
		t.Errorf("tab size = %d", cfg.GetTabSize())
	}
}

func TestLoadFromDir(t *testing.T) {
	t.Run("no config file falls back to defaults", func(t *testing.T) {
		cfg, err := LoadFromDir(t.TempDir())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Title != "Penbox" {
			t.Errorf("expected defaults, got title %q", cfg.Title)
		}
	})

	t.Run("finds yml extension", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "penbox.yml"), []byte("title: From Yml\n"), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		cfg, err := LoadFromDir(dir)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Title != "From Yml" {
			t.Errorf("title = %q", cfg.Title)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"memory backend", func(c *Config) { c.Persist.Backend = "memory" }, false},
		{"unknown backend", func(c *Config) { c.Persist.Backend = "redis" }, true},
		{"unknown theme", func(c *Config) { c.Editor.Theme = "solarized" }, true},
		{"bad debounce", func(c *Config) { c.Persist.Debounce = "fast" }, true},
		{"good debounce", func(c *Config) { c.Persist.Debounce = "1.5s" }, false},
		{"bad status duration", func(c *Config) { c.Preview.StatusDuration = "soon" }, true},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "penbox.yaml")
	if err := os.WriteFile(path, []byte("persist:\n  backend: redis\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected load to fail validation")
	}
}

func TestGetDSNExpandsEnv(t *testing.T) {
	t.Setenv("PENBOX_TEST_DB", "postgres://localhost/pens")
	cfg := DefaultConfig()
	cfg.Persist.DSN = "${PENBOX_TEST_DB}?sslmode=disable"

	if got := cfg.GetDSN(); got != "postgres://localhost/pens?sslmode=disable" {
		t.Errorf("dsn = %q", got)
	}
}
