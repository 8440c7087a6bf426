// Package server implements the local HTTP surface of penbox: the editor
// page, the document API, the live preview, exports and the WebSocket
// push channel.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/penbox/penbox/internal/assets"
	"github.com/penbox/penbox/internal/compose"
	"github.com/penbox/penbox/internal/config"
	"github.com/penbox/penbox/internal/document"
	"github.com/penbox/penbox/internal/persist"
	"github.com/penbox/penbox/internal/status"
)

// Server is the penbox editor server. It owns the single live document
// and wires the persistence gateway, compositor and status channel to
// their HTTP surfaces.
type Server struct {
	config  *config.Config
	doc     *document.Document
	gateway *persist.Gateway
	status  *status.Channel
	hub     *Hub
	watcher *Watcher
	editor  *template.Template
}

// New creates a server around an already restored document.
func New(cfg *config.Config, doc *document.Document, gw *persist.Gateway, ch *status.Channel) (*Server, error) {
	src, err := assets.GetEditorHTML()
	if err != nil {
		return nil, fmt.Errorf("editor page asset missing: %w", err)
	}
	tmpl, err := template.New("editor").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("editor page template invalid: %w", err)
	}

	s := &Server{
		config:  cfg,
		doc:     doc,
		gateway: gw,
		status:  ch,
		hub:     NewHub(),
		editor:  tmpl,
	}

	// Status changes are pushed to the editor as they happen, including
	// expiry (nil message clears the bar).
	ch.OnChange(func(msg *status.Message) {
		s.hub.BroadcastStatus(msg)
		if msg == nil {
			s.hub.BroadcastDirty(s.doc.Dirty())
		}
	})

	return s, nil
}

// ServeHTTP routes all requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		s.serveEditor(w, r)
	case "/preview":
		s.servePreview(w, r)
	case "/export":
		s.serveExport(w, r)
	case "/help":
		s.serveHelp(w, r)
	case "/ws":
		s.hub.ServeWS(w, r)
	case "/api/document":
		s.serveDocument(w, r)
	case "/api/save":
		s.serveSave(w, r)
	case "/api/status":
		s.serveStatus(w, r)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// serveEditor renders the editor page with the configured theme and
// title. Buffer contents are fetched by the page itself.
func (s *Server) serveEditor(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.editor.Execute(&buf, struct {
		Title   string
		Theme   string
		TabSize int
	}{s.config.Title, s.config.GetTheme(), s.config.GetTabSize()})
	if err != nil {
		log.Printf("[Server] Failed to render editor page: %v", err)
		http.Error(w, "Editor unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// servePreview returns the composed renderable document. It is rebuilt
// from the current buffers on every request, so the preview is always as
// fresh as the last edit.
func (s *Server) servePreview(w http.ResponseWriter, r *http.Request) {
	snap := s.doc.Snapshot()
	html, err := compose.Compose(snap.Markup, snap.Style, snap.Script)
	if err != nil {
		// The fallback page is still served; only the status reports it.
		log.Printf("[Server] Preview composition failed: %v", err)
		s.status.Report("Preview could not be assembled.", status.Error)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write([]byte(html))
}

// serveExport hands out the standalone artifact as a download. Nothing is
// written when assembly fails.
func (s *Server) serveExport(w http.ResponseWriter, r *http.Request) {
	snap := s.doc.Snapshot()
	html, err := compose.Export(snap.Markup, snap.Style, snap.Script)
	if err != nil {
		log.Printf("[Server] Export failed: %v", err)
		s.status.Report("Export failed. No file was produced.", status.Error)
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", compose.ExportFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(html)))
	w.Write([]byte(html))
	s.status.Report("Exported "+compose.ExportFilename, status.Info)
}

// documentPayload is the JSON shape of GET/POST /api/document. Pointer
// fields distinguish "absent" from "set to empty" on writes.
type documentPayload struct {
	Markup           *string `json:"markup,omitempty"`
	Style            *string `json:"style,omitempty"`
	Script           *string `json:"script,omitempty"`
	PresentationMode *bool   `json:"presentationMode,omitempty"`
	Dirty            bool    `json:"dirty"`
}

func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap := s.doc.Snapshot()
		out := documentPayload{
			Markup:           &snap.Markup,
			Style:            &snap.Style,
			Script:           &snap.Script,
			PresentationMode: &snap.PresentationMode,
			Dirty:            s.doc.Dirty(),
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var in documentPayload
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		s.applyUpdate(in)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})

	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// applyUpdate mutates the document from a payload, schedules the
// debounced write and refreshes listeners. Buffer content is accepted
// as-is; invalid markup/style/script is the author's business.
func (s *Server) applyUpdate(in documentPayload) {
	changed := false
	if in.Markup != nil {
		s.doc.SetMarkup(*in.Markup)
		changed = true
	}
	if in.Style != nil {
		s.doc.SetStyle(*in.Style)
		changed = true
	}
	if in.Script != nil {
		s.doc.SetScript(*in.Script)
		changed = true
	}
	if in.PresentationMode != nil {
		s.doc.SetPresentationMode(*in.PresentationMode)
		changed = true
	}
	if !changed {
		return
	}

	s.gateway.ScheduleWrite()
	s.hub.BroadcastDirty(true)
	// The editing page reloads its own frame; the refresh event keeps
	// any other open editor pages current.
	s.hub.BroadcastRefresh()
	s.mirrorOut()
}

// serveSave flushes the pending debounced write immediately so the
// explicit action has a deterministic outcome.
func (s *Server) serveSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.gateway.FlushNow(); err != nil {
		log.Printf("[Server] Manual save failed: %v", err)
		writeJSON(w, http.StatusOK, map[string]any{"saved": false})
		return
	}

	s.status.Report("Saved.", status.Info)
	s.hub.BroadcastDirty(false)
	writeJSON(w, http.StatusOK, map[string]any{"saved": true})
}

func (s *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	msg := s.status.Current()
	if msg == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": msg})
}

// serveHelp renders the embedded user guide.
func (s *Server) serveHelp(w http.ResponseWriter, r *http.Request) {
	src, err := assets.GetHelpMarkdown()
	if err != nil {
		http.Error(w, "Guide not available", http.StatusInternalServerError)
		return
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert(src, &body); err != nil {
		log.Printf("[Server] Failed to render guide: %v", err)
		http.Error(w, "Guide not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, helpShell, body.String())
}

const helpShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Penbox Guide</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; }
pre { background: #f4f4f5; padding: 0.75rem 1rem; border-radius: 6px; overflow-x: auto; }
code { font-size: 0.9em; }
</style>
</head>
<body>
%s
</body>
</html>`

// EnableMirror starts the workspace mirror in dir: buffers are written
// out as files and external edits flow back into the document.
func (s *Server) EnableMirror(dir string) error {
	watcher, err := NewWatcher(dir, s.mirrorIn)
	if err != nil {
		return fmt.Errorf("failed to start workspace mirror: %w", err)
	}
	s.watcher = watcher
	s.mirrorOut()
	s.watcher.Start()
	log.Printf("[Mirror] Workspace mirror active in %s", dir)
	return nil
}

// StopMirror stops the workspace mirror if it is running.
func (s *Server) StopMirror() error {
	if s.watcher != nil {
		return s.watcher.Stop()
	}
	return nil
}

// mirrorOut writes the current buffers to the workspace files.
func (s *Server) mirrorOut() {
	if s.watcher == nil {
		return
	}
	snap := s.doc.Snapshot()
	if err := s.watcher.WriteFiles(snap.Markup, snap.Style, snap.Script); err != nil {
		log.Printf("[Mirror] Failed to write workspace files: %v", err)
	}
}

// mirrorIn applies an external file change to the document and notifies
// the editor page.
func (s *Server) mirrorIn(field, content string) {
	switch field {
	case "markup":
		s.doc.SetMarkup(content)
	case "style":
		s.doc.SetStyle(content)
	case "script":
		s.doc.SetScript(content)
	default:
		return
	}

	s.gateway.ScheduleWrite()

	snap := s.doc.Snapshot()
	s.hub.BroadcastBuffers(snap.Markup, snap.Style, snap.Script, snap.PresentationMode)
	s.hub.BroadcastDirty(true)
}

// Shutdown stops background work and flushes unsaved changes.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.StopMirror(); err != nil {
		log.Printf("[Server] Failed to stop mirror: %v", err)
	}
	if s.doc.Dirty() {
		if err := s.gateway.FlushNow(); err != nil {
			return fmt.Errorf("final flush failed: %w", err)
		}
	} else {
		s.gateway.Stop()
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
