package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/penbox/penbox/internal/config"
	"github.com/penbox/penbox/internal/document"
	"github.com/penbox/penbox/internal/persist"
	"github.com/penbox/penbox/internal/server"
	"github.com/penbox/penbox/internal/status"
	"github.com/penbox/penbox/internal/store"
)

// App holds the desktop application state: the embedded penbox server
// bound to a free localhost port.
type App struct {
	ctx        context.Context
	server     *server.Server
	store      store.SnapshotStore
	httpServer *http.Server
	serverPort int
	currentDir string
	mu         sync.RWMutex
}

// NewApp creates a new App application struct.
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown is called when the app is closing. Unsaved changes are
// flushed before the window goes away.
func (a *App) shutdown(ctx context.Context) {
	a.stopServer()
}

func (a *App) stopServer() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown(context.Background())
		a.server = nil
	}
	if a.httpServer != nil {
		a.httpServer.Close()
		a.httpServer = nil
	}
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	a.serverPort = 0
}

// OpenPen opens a directory dialog and loads the selected pen.
func (a *App) OpenPen() (string, error) {
	selection, err := runtime.OpenDirectoryDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open Pen Directory",
	})
	if err != nil {
		return "", err
	}
	if selection == "" {
		return "", nil
	}

	if err := a.loadDirectory(selection); err != nil {
		return "", err
	}
	return selection, nil
}

// loadDirectory starts the editor server for the pen stored in dir.
func (a *App) loadDirectory(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	a.stopServer()

	cfg, err := config.LoadFromDir(absDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbPath := cfg.Persist.Path
	if dbPath == "" {
		dbPath = "penbox.db"
	}
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(absDir, dbPath)
	}

	var st store.SnapshotStore
	switch cfg.Persist.Backend {
	case "postgres":
		st, err = store.NewPostgresStore(cfg.GetDSN())
	case "memory":
		st = store.NewMemoryStore()
	default:
		st, err = store.NewSQLiteStore(dbPath)
	}
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}

	doc := document.New()
	ch := status.NewChannel(cfg.GetStatusDuration())
	gw := persist.NewGateway(doc, st, ch, cfg.GetDebounce())
	gw.LoadSnapshot(context.Background())

	srv, err := server.New(cfg, doc, gw, ch)
	if err != nil {
		st.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		st.Close()
		return fmt.Errorf("failed to find free port: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: server.WithCompression(server.SecurityHeadersMiddleware()(srv)),
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	a.mu.Lock()
	a.server = srv
	a.store = st
	a.httpServer = httpServer
	a.serverPort = port
	a.currentDir = absDir
	a.mu.Unlock()

	runtime.WindowSetTitle(a.ctx, fmt.Sprintf("Penbox - %s", filepath.Base(absDir)))

	serverURL := fmt.Sprintf("http://127.0.0.1:%d/", port)
	runtime.EventsEmit(a.ctx, "navigate", serverURL)

	return nil
}

// GetCurrentDirectory returns the currently loaded pen directory.
func (a *App) GetCurrentDirectory() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentDir
}

// GetServerURL returns the URL of the running server, or empty string if
// not running.
func (a *App) GetServerURL() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.serverPort == 0 {
		return ""
	}
	return fmt.Sprintf("http://127.0.0.1:%d/", a.serverPort)
}

// GetHandler returns the HTTP handler: the editor when a pen is loaded,
// otherwise the welcome screen.
func (a *App) GetHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.RLock()
		srv := a.server
		a.mu.RUnlock()

		if srv != nil {
			server.WithCompression(srv).ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(welcomeHTML))
	})
}

const welcomeHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8"/>
    <meta content="width=device-width, initial-scale=1.0" name="viewport"/>
    <title>Penbox Desktop</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            background: linear-gradient(135deg, #1a1a2e 0%, #16213e 100%);
            color: #fff;
            min-height: 100vh;
            display: flex;
            flex-direction: column;
            align-items: center;
            justify-content: center;
            padding: 2rem;
        }
        .container { text-align: center; max-width: 600px; }
        h1 {
            font-size: 2.5rem;
            margin-bottom: 1rem;
            background: linear-gradient(90deg, #00d4ff, #7c3aed);
            -webkit-background-clip: text;
            -webkit-text-fill-color: transparent;
            background-clip: text;
        }
        p {
            color: #94a3b8;
            font-size: 1.1rem;
            line-height: 1.6;
            margin-bottom: 2rem;
        }
        button {
            background: linear-gradient(135deg, #7c3aed 0%, #00d4ff 100%);
            border: none;
            color: white;
            padding: 0.875rem 1.75rem;
            font-size: 1rem;
            border-radius: 8px;
            cursor: pointer;
        }
        .keyboard-hint { margin-top: 2rem; color: #64748b; font-size: 0.875rem; }
        kbd {
            background: #334155;
            border-radius: 4px;
            padding: 0.25rem 0.5rem;
            font-family: monospace;
        }
        #status { margin-top: 1rem; font-size: 0.875rem; min-height: 1.5em; }
        .error { color: #ef4444; }
        .success { color: #22c55e; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Penbox Desktop</h1>
        <p>Open a pen directory to start editing. Your markup, style and script are previewed live and saved locally.</p>
        <button id="openPen">Open Pen</button>
        <p class="keyboard-hint"><kbd>Cmd+O</kbd> / <kbd>Ctrl+O</kbd> to open</p>
        <p id="status"></p>
    </div>
    <script>
        function initApp() {
            const statusEl = document.getElementById('status');

            function showStatus(message, type) {
                statusEl.textContent = message;
                statusEl.className = type || '';
            }

            showStatus('Ready', 'success');

            document.getElementById('openPen').addEventListener('click', async function() {
                try {
                    showStatus('Opening directory dialog...');
                    const dir = await window.go.main.App.OpenPen();
                    if (dir) {
                        showStatus('Loading ' + dir + '...', 'success');
                    } else {
                        showStatus('Ready', 'success');
                    }
                } catch (err) {
                    showStatus('Error: ' + err, 'error');
                }
            });
        }

        function waitForWails() {
            if (window.go && window.runtime) {
                initApp();
                window.runtime.EventsOn('navigate', function(url) {
                    window.location.href = url;
                });
            } else {
                setTimeout(waitForWails, 50);
            }
        }

        if (document.readyState === 'loading') {
            document.addEventListener('DOMContentLoaded', waitForWails);
        } else {
            waitForWails();
        }
    </script>
</body>
</html>`
