package commands

import (
	"fmt"
	"path/filepath"

	"github.com/penbox/penbox/internal/config"
	"github.com/penbox/penbox/internal/store"
)

// openStore creates the snapshot store named by the config. Relative
// sqlite paths are resolved against the served directory.
func openStore(cfg *config.Config, dir string) (store.SnapshotStore, error) {
	switch cfg.Persist.Backend {
	case "", "sqlite":
		path := cfg.Persist.Path
		if path == "" {
			path = "penbox.db"
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		return store.NewSQLiteStore(path)
	case "postgres":
		return store.NewPostgresStore(cfg.GetDSN())
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown persist backend: %s", cfg.Persist.Backend)
	}
}
