package commands

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/penbox/penbox/internal/config"
	"github.com/penbox/penbox/internal/document"
	"github.com/penbox/penbox/internal/persist"
	"github.com/penbox/penbox/internal/server"
	"github.com/penbox/penbox/internal/status"
)

// ServeCommand implements the serve command.
func ServeCommand(args []string) error {
	dir := "."
	var configPath string
	var port string
	var host string
	var ephemeral bool

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--port" || arg == "-p" {
			if i+1 < len(args) {
				port = args[i+1]
				i++
			}
		} else if arg == "--host" {
			if i+1 < len(args) {
				host = args[i+1]
				i++
			}
		} else if arg == "--config" || arg == "-c" {
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			}
		} else if arg == "--ephemeral" {
			ephemeral = true
		} else if !strings.HasPrefix(arg, "-") {
			dir = arg
		}
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", dir)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		fmt.Printf("📝 Using config: %s\n", configPath)
	} else {
		cfg, err = config.LoadFromDir(absDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	// CLI flags override config
	if port != "" {
		portInt, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port: %s", port)
		}
		cfg.Server.Port = portInt
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if ephemeral {
		cfg.Persist.Backend = "memory"
	}

	st, err := openStore(cfg, absDir)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer st.Close()

	doc := document.New()
	ch := status.NewChannel(cfg.GetStatusDuration())
	gw := persist.NewGateway(doc, st, ch, cfg.GetDebounce())
	gw.LoadSnapshot(context.Background())

	srv, err := server.New(cfg, doc, gw, ch)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if cfg.Editor.Mirror != "" {
		mirrorDir := cfg.Editor.Mirror
		if !filepath.IsAbs(mirrorDir) {
			mirrorDir = filepath.Join(absDir, mirrorDir)
		}
		if err := srv.EnableMirror(mirrorDir); err != nil {
			return err
		}
		defer srv.StopMirror()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("✏️  Penbox\n\n")
	fmt.Printf("Serving: %s\n", absDir)
	fmt.Printf("Storage: %s\n", storeDescription(cfg))
	fmt.Printf("\n🌐 Editor running at http://%s\n", addr)
	if cfg.Editor.Mirror != "" {
		fmt.Printf("📁 Workspace mirror: %s\n", cfg.Editor.Mirror)
	}
	fmt.Printf("⚡ Gzip compression enabled\n")
	fmt.Printf("Press Ctrl+C to stop\n\n")

	handler := server.WithCompression(
		server.SecurityHeadersMiddleware()(
			server.RateLimitMiddleware(50, 100)(srv)))

	httpServer := &http.Server{Addr: addr, Handler: handler}

	// Flush unsaved work on Ctrl+C before exiting.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		fmt.Printf("\nShutting down...\n")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("[Serve] Shutdown flush failed: %v", err)
		}
		httpServer.Close()
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func storeDescription(cfg *config.Config) string {
	switch cfg.Persist.Backend {
	case "postgres":
		return "postgres"
	case "memory":
		return "memory (ephemeral)"
	default:
		return fmt.Sprintf("sqlite (%s)", cfg.Persist.Path)
	}
}

func init() {
	log.SetFlags(0) // Remove timestamp from logs
}
