// Package tui renders the Maddie chat widget as a Bubble Tea component:
// a collapsed floating button and an expandable conversation window with
// markdown bubbles, citations, follow-up questions, and a guarded input.
package tui

import (
	"context"
	"errors"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/maddielabs/maddie/internal/widget"
)

// Layout constants for viewport height calculation.
const (
	headerLines    = 2 // Title bar plus separator
	separatorLines = 2 // Above and below input
	helpLines      = 1 // Help bar height
	promptLines    = 1 // Prompt prefix line
	minViewport    = 3 // Minimum viewport height
)

// Model is the Bubble Tea model for the chat widget.
type Model struct {
	widget        *widget.Widget
	assistantName string

	// Input
	input textarea.Model

	// Scrollable message viewport
	viewport viewport.Model

	// Typing indicator shown while a send is in flight
	spinner spinner.Model

	// Help bar for keyboard shortcuts
	help help.Model
	keys keyMap

	// viewBuf is reused by View() to reduce allocations.
	viewBuf strings.Builder

	// followUps from the most recent bot message, prefillable via Tab.
	followUps []string

	ctx    context.Context
	width  int
	height int
	styles Styles

	// Markdown rendering (nil = graceful degradation to plain text)
	markdown *markdownRenderer
}

// New creates a Model around an orchestrating widget.
//
// ctx MUST be the same context passed to tea.WithContext so cancellation
// stays consistent.
func New(ctx context.Context, w *widget.Widget, assistantName string) (*Model, error) {
	if w == nil {
		return nil, errors.New("tui.New: widget is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if assistantName == "" {
		assistantName = "Maddie"
	}

	ta := textarea.New()
	ta.Placeholder = "Ask " + assistantName + " anything..."
	ta.SetHeight(1)
	ta.SetWidth(120)
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{
		Focused: cleanStyle,
		Blurred: cleanStyle,
	})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Viewport keys are routed explicitly in handleKey to avoid conflicts
	// with the textarea.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	return &Model{
		widget:        w,
		assistantName: assistantName,
		input:         ta,
		spinner:       sp,
		viewport:      vp,
		help:          help.New(),
		keys:          newKeyMap(),
		styles:        DefaultStyles(),
		markdown:      newMarkdownRenderer(80),
		ctx:           ctx,
		width:         80, // Until WindowSizeMsg arrives
	}, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(),
	)
}

// Run mounts the widget and blocks until the user quits.
func Run(ctx context.Context, w *widget.Widget, assistantName string) error {
	model, err := New(ctx, w, assistantName)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
