package store

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshot entries in process memory. Used for
// --ephemeral serving and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string

	// FailWrites makes SetAll fail; lets tests exercise the gateway's
	// failure path.
	FailWrites error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// Get returns the value for key, or ErrNoEntry if absent.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	if !ok {
		return "", ErrNoEntry
	}
	return value, nil
}

// SetAll replaces the given entries. All-or-nothing is trivial here since
// the map is only swapped under the lock.
func (s *MemoryStore) SetAll(ctx context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	for key, value := range entries {
		s.entries[key] = value
	}
	return nil
}

// Set writes a single entry. Used by tests to prepare partial snapshots.
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// Len returns the number of stored entries (for testing).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
