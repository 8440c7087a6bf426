package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// storeUnderTest lets the same behavioral suite run against every backend
// that can be opened in a test environment.
type storeFactory func(t *testing.T) SnapshotStore

func memoryFactory(t *testing.T) SnapshotStore {
	return NewMemoryStore()
}

func sqliteFactory(t *testing.T) SnapshotStore {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	return st
}

func TestStoreBackends(t *testing.T) {
	backends := []struct {
		name    string
		factory storeFactory
	}{
		{"memory", memoryFactory},
		{"sqlite", sqliteFactory},
	}

	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			t.Run("missing key", func(t *testing.T) {
				st := backend.factory(t)
				defer st.Close()

				_, err := st.Get(context.Background(), KeyMarkup)
				if !errors.Is(err, ErrNoEntry) {
					t.Errorf("expected ErrNoEntry, got %v", err)
				}
			})

			t.Run("set all and get", func(t *testing.T) {
				st := backend.factory(t)
				defer st.Close()

				entries := map[string]string{
					KeyMarkup:           "<h1>Hello</h1>",
					KeyStyle:            "h1 { color: red }",
					KeyScript:           "console.log('hi')",
					KeyPresentationMode: "false",
				}
				if err := st.SetAll(context.Background(), entries); err != nil {
					t.Fatalf("set all: %v", err)
				}

				for key, want := range entries {
					got, err := st.Get(context.Background(), key)
					if err != nil {
						t.Errorf("get %s: %v", key, err)
						continue
					}
					if got != want {
						t.Errorf("%s = %q, want %q", key, got, want)
					}
				}
			})

			t.Run("overwrite", func(t *testing.T) {
				st := backend.factory(t)
				defer st.Close()

				ctx := context.Background()
				if err := st.SetAll(ctx, map[string]string{KeyMarkup: "old"}); err != nil {
					t.Fatalf("first write: %v", err)
				}
				if err := st.SetAll(ctx, map[string]string{KeyMarkup: "new"}); err != nil {
					t.Fatalf("second write: %v", err)
				}

				got, err := st.Get(ctx, KeyMarkup)
				if err != nil {
					t.Fatalf("get: %v", err)
				}
				if got != "new" {
					t.Errorf("expected overwritten value, got %q", got)
				}
			})

			t.Run("preserves awkward content", func(t *testing.T) {
				st := backend.factory(t)
				defer st.Close()

				// Buffer content is arbitrary author text; it must come
				// back byte for byte.
				value := "<script>alert('x')</script>\n\t'; DROP TABLE snapshot; --\nемодзі 🎨"
				ctx := context.Background()
				if err := st.SetAll(ctx, map[string]string{KeyScript: value}); err != nil {
					t.Fatalf("set: %v", err)
				}
				got, err := st.Get(ctx, KeyScript)
				if err != nil {
					t.Fatalf("get: %v", err)
				}
				if got != value {
					t.Errorf("content mangled:\ngot  %q\nwant %q", got, value)
				}
			})
		})
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	st, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := st.SetAll(ctx, map[string]string{KeyMarkup: "<p>kept</p>"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st2, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()

	got, err := st2.Get(ctx, KeyMarkup)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got != "<p>kept</p>" {
		t.Errorf("value lost across reopen: %q", got)
	}
}

func TestMemoryStoreFailWrites(t *testing.T) {
	st := NewMemoryStore()
	st.FailWrites = errors.New("boom")

	err := st.SetAll(context.Background(), map[string]string{KeyMarkup: "x"})
	if err == nil {
		t.Fatal("expected SetAll to fail")
	}
	if st.Len() != 0 {
		t.Error("failed write must not store entries")
	}
}
