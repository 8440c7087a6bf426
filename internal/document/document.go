// Package document holds the in-memory state of a pen: the three source
// buffers plus the presentation-mode flag.
package document

import "sync"

// Built-in starter content used when no snapshot exists.
const (
	DefaultMarkup = `<h1>Hello, Penbox</h1>
<p>Edit the markup, style and script panels. The preview updates as you type.</p>`

	DefaultStyle = `body {
  font-family: system-ui, sans-serif;
  margin: 2rem;
}
h1 {
  color: #7c3aed;
}`

	DefaultScript = `console.log("penbox ready");`
)

// Document is the single live editing session. Buffers accept arbitrary
// text; no validation is performed. Dirty is set by every mutation and
// cleared only when a persistence write completes.
type Document struct {
	mu               sync.RWMutex
	markup           string
	style            string
	script           string
	presentationMode bool
	dirty            bool
}

// New creates a document populated with the built-in starter content.
func New() *Document {
	return &Document{
		markup: DefaultMarkup,
		style:  DefaultStyle,
		script: DefaultScript,
	}
}

// SetMarkup replaces the markup buffer and marks the document dirty.
func (d *Document) SetMarkup(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.markup = s
	d.dirty = true
}

// SetStyle replaces the style buffer and marks the document dirty.
func (d *Document) SetStyle(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.style = s
	d.dirty = true
}

// SetScript replaces the script buffer and marks the document dirty.
func (d *Document) SetScript(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.script = s
	d.dirty = true
}

// SetPresentationMode sets the mode flag and marks the document dirty.
func (d *Document) SetPresentationMode(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presentationMode = on
	d.dirty = true
}

// Markup returns the markup buffer.
func (d *Document) Markup() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.markup
}

// Style returns the style buffer.
func (d *Document) Style() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.style
}

// Script returns the script buffer.
func (d *Document) Script() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.script
}

// PresentationMode returns the mode flag.
func (d *Document) PresentationMode() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.presentationMode
}

// Dirty reports whether there are changes not yet persisted.
func (d *Document) Dirty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dirty
}

// ClearDirty marks the document as persisted. Called by the persistence
// gateway after a write completes.
func (d *Document) ClearDirty() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirty = false
}

// Snapshot is a point-in-time copy of the persistable fields.
type Snapshot struct {
	Markup           string
	Style            string
	Script           string
	PresentationMode bool
}

// Snapshot returns a consistent copy of the persistable fields.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Snapshot{
		Markup:           d.markup,
		Style:            d.style,
		Script:           d.script,
		PresentationMode: d.presentationMode,
	}
}

// Restore overwrites the persistable fields from a snapshot without
// marking the document dirty. Used once at startup.
func (d *Document) Restore(s Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.markup = s.Markup
	d.style = s.Style
	d.script = s.Script
	d.presentationMode = s.PresentationMode
	d.dirty = false
}
