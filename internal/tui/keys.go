package tui

import (
	"errors"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/maddielabs/maddie/internal/widget"
)

// Slash command constants.
const (
	cmdHelp  = "/help"
	cmdClear = "/clear"
	cmdExit  = "/exit"
	cmdQuit  = "/quit"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Submit     key.Binding
	FollowUp   key.Binding
	Minimize   key.Binding
	Clear      key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		FollowUp:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "follow-up")),
		Minimize:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "minimize")),
		Clear:      key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear chat")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	}
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	// Global bindings, open or collapsed.
	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c', 'd':
			return m, tea.Quit
		case 'l':
			if m.widget.IsOpen() {
				if err := m.widget.ClearConversation(); err != nil {
					m.rebuildViewportContent()
					return m, nil
				}
				m.followUps = nil
				m.rebuildViewportContent()
			}
			return m, nil
		}
	}

	if !m.widget.IsOpen() {
		return m.handleCollapsedKey(k)
	}

	switch k.Code {
	case tea.KeyEnter:
		// Shift+Enter adds a newline via the textarea default.
		if k.Mod&tea.ModShift == 0 {
			return m.handleSubmit()
		}

	case tea.KeyEscape:
		m.widget.Close()
		return m, nil

	case tea.KeyTab:
		// Prefill the first follow-up question from the last bot message.
		if len(m.followUps) > 0 {
			m.input.SetValue(m.followUps[0])
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyPgUp:
		m.viewport.PageUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.PageDown()
		return m, nil
	}

	// Everything else goes to the textarea - typing stays possible even
	// while a send is in flight; only submission is guarded.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleCollapsedKey drives the floating-button state: any of enter,
// space, or "o" expands the window.
func (m *Model) handleCollapsedKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyEnter, tea.KeySpace, 'o':
		if err := m.widget.Open(); err != nil {
			// Session creation failed; stay collapsed, surface on next try.
			return m, nil
		}
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()
	case 'q':
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}

	if strings.HasPrefix(query, "/") {
		return m.handleSlashCommand(query)
	}

	return m.submit(query)
}

// submit pushes one query through the widget's send pipeline.
func (m *Model) submit(query string) (tea.Model, tea.Cmd) {
	p, err := m.widget.StartSend(query)
	if err != nil {
		switch {
		case errors.Is(err, widget.ErrRateLimited):
			// The widget surfaced a message; show it.
			m.rebuildViewportContent()
			m.viewport.GotoBottom()
		case errors.Is(err, widget.ErrInvalidMessage),
			errors.Is(err, widget.ErrBusy),
			errors.Is(err, widget.ErrNoSession):
			// Silently blocked; keep the draft so the user can edit it.
		}
		return m, nil
	}

	m.input.Reset()
	m.followUps = nil
	m.rebuildViewportContent()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.spinner.Tick, m.sendCmd(p))
}

func (m *Model) handleSlashCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case cmdHelp:
		m.input.Reset()
		m.viewport.SetContent(m.helpText())
		return m, nil
	case cmdClear:
		m.input.Reset()
		_ = m.widget.ClearConversation()
		m.followUps = nil
		m.rebuildViewportContent()
		return m, nil
	case cmdExit, cmdQuit:
		return m, tea.Quit
	default:
		m.input.Reset()
		m.rebuildViewportContent()
		return m, nil
	}
}

func (m *Model) helpText() string {
	return m.styles.System.Render(
		"Commands: " + cmdHelp + ", " + cmdClear + ", " + cmdExit + "\n" +
			"Shortcuts:\n" +
			"  Enter: send message\n" +
			"  Tab: pick up the suggested follow-up\n" +
			"  Esc: minimize the widget\n" +
			"  Ctrl+L: clear conversation\n" +
			"  Ctrl+C / Ctrl+D: exit\n" +
			"  PgUp/PgDn: scroll")
}
