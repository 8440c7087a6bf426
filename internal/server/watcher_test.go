package server

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// changeRecorder collects onChange callbacks from the watcher.
type changeRecorder struct {
	mu      sync.Mutex
	changes map[string]string
}

func newChangeRecorder() *changeRecorder {
	return &changeRecorder{changes: make(map[string]string)}
}

func (r *changeRecorder) record(field, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes[field] = content
}

func (r *changeRecorder) get(field string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.changes[field]
	return v, ok
}

func (r *changeRecorder) waitFor(t *testing.T, field string) string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		if v, ok := r.get(field); ok {
			return v
		}
		if time.Now().After(deadline) {
			t.Fatalf("no change recorded for %s", field)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatcherCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "workspace")

	w, err := NewWatcher(dir, func(string, string) {})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Stop()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("workspace directory not created: %v", err)
	}
}

func TestWriteFilesMirrorsBuffers(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, func(string, string) {})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Stop()

	if err := w.WriteFiles("<h1>m</h1>", "h1{}", "go()"); err != nil {
		t.Fatalf("write files: %v", err)
	}

	want := map[string]string{
		"index.html": "<h1>m</h1>",
		"style.css":  "h1{}",
		"script.js":  "go()",
	}
	for name, expected := range want {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("read %s: %v", name, err)
			continue
		}
		if string(data) != expected {
			t.Errorf("%s = %q, want %q", name, data, expected)
		}
	}
}

func TestExternalEditFlowsBack(t *testing.T) {
	dir := t.TempDir()
	rec := newChangeRecorder()

	w, err := NewWatcher(dir, rec.record)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Stop()
	w.Start()

	path := filepath.Join(dir, "style.css")
	if err := os.WriteFile(path, []byte("body{background:teal}"), 0644); err != nil {
		t.Fatalf("external write: %v", err)
	}

	got := rec.waitFor(t, "style")
	if got != "body{background:teal}" {
		t.Errorf("change content = %q", got)
	}
}

func TestOwnWritesAreNotEchoed(t *testing.T) {
	dir := t.TempDir()
	rec := newChangeRecorder()

	w, err := NewWatcher(dir, rec.record)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Stop()
	w.Start()

	if err := w.WriteFiles("<p>ours</p>", "p{}", "1"); err != nil {
		t.Fatalf("write files: %v", err)
	}

	// Give fsnotify time to deliver the events our own writes produced.
	time.Sleep(300 * time.Millisecond)

	if v, ok := rec.get("markup"); ok {
		t.Errorf("own write echoed back as change: %q", v)
	}
}

func TestUnrelatedFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	rec := newChangeRecorder()

	w, err := NewWatcher(dir, rec.record)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Stop()
	w.Start()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	rec.mu.Lock()
	n := len(rec.changes)
	rec.mu.Unlock()
	if n != 0 {
		t.Errorf("unexpected changes recorded: %v", rec.changes)
	}
}
