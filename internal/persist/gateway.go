// Package persist implements the debounced write-through between the live
// document and the snapshot store.
package persist

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/penbox/penbox/internal/document"
	"github.com/penbox/penbox/internal/status"
	"github.com/penbox/penbox/internal/store"
)

// DefaultDebounceWindow is the quiet period after the last edit before the
// deferred write fires. Each new edit pushes the deadline forward.
const DefaultDebounceWindow = 800 * time.Millisecond

// writeTimeout bounds a single store write.
const writeTimeout = 5 * time.Second

// Gateway owns the debounce timer and performs all snapshot reads/writes.
// A storage failure is reported and retried on the next edit; it never
// takes down the session.
type Gateway struct {
	doc    *document.Document
	store  store.SnapshotStore
	status *status.Channel
	window time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewGateway creates a gateway. A window of zero uses
// DefaultDebounceWindow.
func NewGateway(doc *document.Document, st store.SnapshotStore, ch *status.Channel, window time.Duration) *Gateway {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Gateway{
		doc:    doc,
		store:  st,
		status: ch,
		window: window,
	}
}

// ScheduleWrite coalesces rapid successive calls into a single write that
// fires after the debounce window, measured from the last call. The write
// persists the document state as of fire time, so intermediate states are
// skipped (last-write-wins).
func (g *Gateway) ScheduleWrite() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.window, func() {
		if err := g.write(); err != nil {
			log.Printf("[Persist] Debounced write failed: %v", err)
		}
	})
}

// FlushNow cancels any pending debounced write and writes immediately.
// Used by explicit save actions so the user gets a deterministic outcome.
func (g *Gateway) FlushNow() error {
	g.cancelPending()
	return g.write()
}

// Stop cancels any pending write without performing it.
func (g *Gateway) Stop() {
	g.cancelPending()
}

func (g *Gateway) cancelPending() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// write persists the full current snapshot: all four entries together,
// never partial-field updates.
func (g *Gateway) write() error {
	snap := g.doc.Snapshot()
	entries := map[string]string{
		store.KeyMarkup:           snap.Markup,
		store.KeyStyle:            snap.Style,
		store.KeyScript:           snap.Script,
		store.KeyPresentationMode: strconv.FormatBool(snap.PresentationMode),
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := g.store.SetAll(ctx, entries); err != nil {
		g.status.Report("Could not save your work. Changes are kept in memory.", status.Error)
		return err
	}

	g.doc.ClearDirty()
	g.status.ClearErrors()
	return nil
}

// LoadSnapshot restores the document from the store. Each field falls back
// to its built-in default independently, so a partially written snapshot
// is still usable. Read errors other than a missing entry are logged and
// treated as missing.
func (g *Gateway) LoadSnapshot(ctx context.Context) {
	snap := g.doc.Snapshot()

	if v, ok := g.load(ctx, store.KeyMarkup); ok {
		snap.Markup = v
	}
	if v, ok := g.load(ctx, store.KeyStyle); ok {
		snap.Style = v
	}
	if v, ok := g.load(ctx, store.KeyScript); ok {
		snap.Script = v
	}
	if v, ok := g.load(ctx, store.KeyPresentationMode); ok {
		snap.PresentationMode = v == "true"
	}

	g.doc.Restore(snap)
}

func (g *Gateway) load(ctx context.Context, key string) (string, bool) {
	v, err := g.store.Get(ctx, key)
	if err == store.ErrNoEntry {
		return "", false
	}
	if err != nil {
		log.Printf("[Persist] Failed to read %s: %v", key, err)
		return "", false
	}
	return v, true
}
