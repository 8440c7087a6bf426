// Command penbox is the local live code editor: three buffers, a live
// sandboxed preview, local persistence and export to a standalone page.
package main

import (
	"fmt"
	"os"

	"github.com/penbox/penbox/cmd/penbox/commands"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "serve":
		err = commands.ServeCommand(args)
	case "export":
		err = commands.ExportCommand(args)
	case "version":
		fmt.Printf("penbox version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("penbox - Live code editor with sandboxed preview")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  penbox serve [directory]         Start the editor server")
	fmt.Println("  penbox export [--output=FILE]    Write the saved pen as a standalone page")
	fmt.Println("  penbox version                   Show version")
	fmt.Println("  penbox help                      Show this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  penbox serve                     # Serve current directory")
	fmt.Println("  penbox serve ./my-pen            # Serve a pen directory")
	fmt.Println("  penbox serve --port 3000         # Custom port")
	fmt.Println("  penbox serve --ephemeral         # Keep everything in memory")
	fmt.Println("  penbox export -o page.html       # Export the saved snapshot")
}
