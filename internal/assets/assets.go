// Package assets embeds the editor page and the user guide.
package assets

import "embed"

//go:embed editor.html
var editorFS embed.FS

//go:embed help.md
var helpFS embed.FS

// GetEditorHTML returns the editor page template source.
func GetEditorHTML() ([]byte, error) {
	return editorFS.ReadFile("editor.html")
}

// GetHelpMarkdown returns the user guide markdown.
func GetHelpMarkdown() ([]byte, error) {
	return helpFS.ReadFile("help.md")
}
