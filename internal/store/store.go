// Package store provides the durable key-value snapshot store behind the
// persistence gateway. Entries are string-only and live under fixed,
// versioned keys so the schema can evolve without clobbering old data.
package store

import (
	"context"
	"errors"
)

// Versioned entry keys. The presentation-mode flag is stored as the
// literal strings "true"/"false".
const (
	KeyMarkup           = "penbox.v1.markup"
	KeyStyle            = "penbox.v1.style"
	KeyScript           = "penbox.v1.script"
	KeyPresentationMode = "penbox.v1.presentation-mode"
)

// Keys lists every entry key a full snapshot writes.
var Keys = []string{KeyMarkup, KeyStyle, KeyScript, KeyPresentationMode}

// ErrNoEntry is returned by Get when a key has never been written.
var ErrNoEntry = errors.New("store: no entry")

// SnapshotStore persists string entries. SetAll must replace the given
// entries atomically: either every entry is written or none is.
type SnapshotStore interface {
	// Get returns the value for key, or ErrNoEntry if absent.
	Get(ctx context.Context, key string) (string, error)

	// SetAll writes all entries in a single transaction.
	SetAll(ctx context.Context, entries map[string]string) error

	// Close releases underlying resources.
	Close() error
}
