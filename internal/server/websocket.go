package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/penbox/penbox/internal/status"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The server binds to localhost; the editor page is the only
		// expected client.
		return true
	},
}

// Hub tracks connected editor pages and pushes events to them: preview
// refreshes, dirty-flag transitions, status messages and buffer reloads
// from the workspace mirror. Broadcasts come from HTTP handlers and from
// timer goroutines (status expiry), so each connection carries its own
// write lock; gorilla/websocket allows only one concurrent writer.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]*sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]*sync.Mutex)}
}

// ServeWS upgrades the connection and keeps it registered until the
// client goes away. Clients never send anything meaningful; reads only
// detect disconnection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	h.register(conn)

	go func() {
		defer func() {
			h.unregister(conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = &sync.Mutex{}
	log.Printf("[WS] Connection registered: %d active", len(h.conns))
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	log.Printf("[WS] Connection unregistered: %d active", len(h.conns))
}

// ConnectionCount returns the number of connected clients (for testing).
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// BroadcastRefresh tells connected editors to reload the preview frame.
func (h *Hub) BroadcastRefresh() {
	h.broadcast(map[string]any{"action": "refresh"})
}

// BroadcastDirty pushes the dirty-flag state.
func (h *Hub) BroadcastDirty(dirty bool) {
	h.broadcast(map[string]any{"action": "dirty", "dirty": dirty})
}

// BroadcastStatus pushes a status message; nil clears the status bar.
func (h *Hub) BroadcastStatus(msg *status.Message) {
	h.broadcast(map[string]any{"action": "status", "status": msg})
}

// BroadcastBuffers pushes full buffer contents after an external change.
func (h *Hub) BroadcastBuffers(markup, style, script string, presentationMode bool) {
	h.broadcast(map[string]any{
		"action": "buffers",
		"document": map[string]any{
			"markup":           markup,
			"style":            style,
			"script":           script,
			"presentationMode": presentationMode,
		},
	})
}

func (h *Hub) broadcast(msg map[string]any) {
	h.mu.RLock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.conns))
	for conn, wmu := range h.conns {
		targets[conn] = wmu
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] Failed to marshal message: %v", err)
		return
	}

	for conn, wmu := range targets {
		wmu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		wmu.Unlock()
		if err != nil {
			log.Printf("[WS] Failed to push message: %v", err)
		}
	}
}
