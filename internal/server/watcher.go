package server

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// mirrorFiles maps workspace file names to document fields.
var mirrorFiles = map[string]string{
	"index.html": "markup",
	"style.css":  "style",
	"script.js":  "script",
}

// Watcher mirrors the document buffers to plain files in a workspace
// directory and feeds external edits back via onChange(field, content).
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	onChange func(field, content string)
	done     chan bool

	mu          sync.Mutex
	lastWritten map[string]string // file name -> content we wrote ourselves
}

// NewWatcher creates a watcher for the workspace directory, creating the
// directory if needed.
func NewWatcher(dir string, onChange func(field, content string)) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return &Watcher{
		watcher:     fsWatcher,
		dir:         dir,
		onChange:    onChange,
		done:        make(chan bool),
		lastWritten: make(map[string]string),
	}, nil
}

// WriteFiles writes the three buffers to their workspace files. Writes
// are recorded so the resulting fsnotify events are not echoed back.
func (w *Watcher) WriteFiles(markup, style, script string) error {
	contents := map[string]string{
		"index.html": markup,
		"style.css":  style,
		"script.js":  script,
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for name, content := range contents {
		if w.lastWritten[name] == content {
			continue
		}
		path := filepath.Join(w.dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
		w.lastWritten[name] = content
	}
	return nil
}

// Start begins watching for external edits.
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				w.handleEvent(event.Name)

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[Mirror] Watch error: %v", err)

			case <-w.done:
				return
			}
		}
	}()
}

// handleEvent loads a changed workspace file and forwards it unless the
// change was our own write.
func (w *Watcher) handleEvent(path string) {
	name := filepath.Base(path)
	field, ok := mirrorFiles[name]
	if !ok {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[Mirror] Failed to read %s: %v", name, err)
		return
	}
	content := string(data)

	w.mu.Lock()
	echoed := w.lastWritten[name] == content
	if !echoed {
		w.lastWritten[name] = content
	}
	w.mu.Unlock()

	if echoed {
		return
	}

	log.Printf("[Mirror] External change: %s", name)
	w.onChange(field, content)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
