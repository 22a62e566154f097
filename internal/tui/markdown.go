package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer converts bot answers from Markdown to styled terminal
// output. Caches the renderer and only recreates it when width changes.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// newMarkdownRenderer creates a renderer with terminal-appropriate
// styling. Returns nil on initialization failure; callers fall back to
// plain text.
func newMarkdownRenderer(width int) *markdownRenderer {
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Detect light/dark terminal
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}

	return &markdownRenderer{renderer: r, width: width}
}

// UpdateWidth recreates the renderer only if width actually changed.
func (m *markdownRenderer) UpdateWidth(width int) bool {
	if m == nil || width <= 0 || m.width == width {
		return false
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Keep existing renderer on error
		return false
	}

	m.renderer = r
	m.width = width
	return true
}

// Render converts Markdown to styled terminal output. Returns the
// original text if rendering fails.
func (m *markdownRenderer) Render(markdown string) string {
	if m == nil || m.renderer == nil {
		return markdown
	}

	rendered, err := m.renderer.Render(markdown)
	if err != nil {
		return markdown
	}

	return strings.TrimSuffix(rendered, "\n")
}
