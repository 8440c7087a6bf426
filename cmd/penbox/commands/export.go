package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penbox/penbox/internal/compose"
	"github.com/penbox/penbox/internal/config"
	"github.com/penbox/penbox/internal/document"
	"github.com/penbox/penbox/internal/persist"
	"github.com/penbox/penbox/internal/status"
)

// ExportCommand composes the persisted snapshot into a standalone page
// and writes it to disk. Nothing is written when assembly fails.
func ExportCommand(args []string) error {
	dir := "."
	var configPath string
	var outputPath string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--output" || arg == "-o" {
			if i+1 < len(args) {
				outputPath = args[i+1]
				i++
			}
		} else if val, ok := strings.CutPrefix(arg, "--output="); ok {
			outputPath = val
		} else if val, ok := strings.CutPrefix(arg, "-o="); ok {
			outputPath = val
		} else if arg == "--config" || arg == "-c" {
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			}
		} else if !strings.HasPrefix(arg, "-") {
			dir = arg
		}
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromDir(absDir)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := openStore(cfg, absDir)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer st.Close()

	doc := document.New()
	ch := status.NewChannel(0)
	gw := persist.NewGateway(doc, st, ch, 0)
	gw.LoadSnapshot(context.Background())

	snap := doc.Snapshot()
	html, err := compose.Export(snap.Markup, snap.Style, snap.Script)
	if err != nil {
		return fmt.Errorf("failed to assemble export: %w", err)
	}

	if outputPath == "" {
		outputPath = compose.ExportFilename
	}
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	fmt.Printf("✅ Exported %s\n", outputPath)
	return nil
}
