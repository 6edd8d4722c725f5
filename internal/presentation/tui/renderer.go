package tui

import (
	"github.com/charmbracelet/glamour"

	"github.com/framelab/scenic"
)

// NewRenderer returns a ContentRenderer that formats bot lines as
// markdown for the terminal, auto-detecting light/dark background.
func NewRenderer() scenic.ContentRenderer {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(78),
	)
	return func(text string) (string, error) {
		return r.Render(text)
	}
}
