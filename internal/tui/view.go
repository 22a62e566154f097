package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/maddielabs/maddie/internal/conversation"
)

// View implements tea.Model. Collapsed, the widget renders as a floating
// button with an unread badge; open, it renders the conversation window.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	if !m.widget.IsOpen() {
		m.renderButton()
	} else {
		m.renderWindow()
	}

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}

// renderButton draws the collapsed floating-button state.
func (m *Model) renderButton() {
	label := "💬 " + m.assistantName
	if n := m.widget.Unread(); n > 0 {
		label += "  " + m.styles.Badge.Render(fmt.Sprintf("%d", n))
	}

	_, _ = m.viewBuf.WriteString("\n\n")
	_, _ = m.viewBuf.WriteString(m.styles.Button.Render(label))
	_, _ = m.viewBuf.WriteString("\n\n")
	_, _ = m.viewBuf.WriteString(m.styles.System.Render("press enter to chat, q to quit"))
	_, _ = m.viewBuf.WriteString("\n")
}

// renderWindow draws the expanded conversation window.
func (m *Model) renderWindow() {
	// Header
	_, _ = m.viewBuf.WriteString(m.styles.Header.Render("💬 " + m.assistantName + " - AI Assistant"))
	_, _ = m.viewBuf.WriteString("\n")
	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Viewport (scrollable message area)
	_, _ = m.viewBuf.WriteString(m.viewport.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	// Input prompt; the placeholder doubles as the rate-limited hint.
	_, _ = m.viewBuf.WriteString(m.styles.Prompt.Render("> "))
	_, _ = m.viewBuf.WriteString(m.input.View())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderSeparator())
	_, _ = m.viewBuf.WriteString("\n")

	_, _ = m.viewBuf.WriteString(m.renderStatusBar())
}

// rebuildViewportContent reconstructs the viewport content from the
// conversation log and widget state. Called whenever either changes.
func (m *Model) rebuildViewportContent() {
	var b strings.Builder

	// Surfaced error banner, if any.
	if errMsg := m.widget.Err(); errMsg != "" {
		_, _ = b.WriteString(m.styles.ErrorBanner.Render(errMsg))
		_, _ = b.WriteString("\n\n")
	}

	for _, msg := range m.widget.Messages() {
		m.renderMessage(&b, msg)
	}

	// Typing indicator while a send is in flight.
	if m.widget.Loading() {
		_, _ = b.WriteString(m.spinner.View())
		_, _ = b.WriteString(m.styles.System.Render(" " + m.assistantName + " is typing..."))
		_, _ = b.WriteString("\n\n")
	}

	m.viewport.SetContent(b.String())
}

// renderMessage draws one bubble: sender line, body, and for bot messages
// any citations and follow-up questions.
func (m *Model) renderMessage(b *strings.Builder, msg conversation.Message) {
	stamp := m.styles.Timestamp.Render(formatClock(msg.Timestamp))

	switch msg.Sender {
	case conversation.SenderUser:
		_, _ = b.WriteString(m.styles.User.Render("You> "))
		_, _ = b.WriteString(msg.Content)
		if msg.Status == conversation.StatusFailed {
			_, _ = b.WriteString(m.styles.Error.Render("  (not delivered)"))
		}
		_, _ = b.WriteString("  ")
		_, _ = b.WriteString(stamp)

	case conversation.SenderBot:
		_, _ = b.WriteString(m.styles.Assistant.Render(m.assistantName + "> "))
		_, _ = b.WriteString(m.markdown.Render(msg.Content))
		_, _ = b.WriteString("  ")
		_, _ = b.WriteString(stamp)

		if len(msg.Sources) > 0 {
			_, _ = b.WriteString("\n")
			_, _ = b.WriteString(m.styles.Citation.Render("Sources:"))
			for _, src := range msg.Sources {
				_, _ = b.WriteString("\n")
				_, _ = b.WriteString(m.styles.Citation.Render("  • " + src.Name + " — " + src.Content))
			}
		}

		if len(msg.FollowUpQuestions) > 0 {
			_, _ = b.WriteString("\n")
			_, _ = b.WriteString(m.styles.FollowUp.Render("Suggested:"))
			for i, q := range msg.FollowUpQuestions {
				_, _ = b.WriteString("\n")
				_, _ = b.WriteString(m.styles.FollowUp.Render(fmt.Sprintf("  %d. %s", i+1, q)))
			}
		}
	}

	_, _ = b.WriteString("\n\n")
}

func (m *Model) renderSeparator() string {
	width := max(m.width, 1)
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

func (m *Model) renderStatusBar() string {
	bindings := []key.Binding{
		m.keys.Submit,
		m.keys.Minimize,
		m.keys.Clear,
		m.keys.Quit,
	}
	if len(m.followUps) > 0 {
		bindings = append([]key.Binding{m.keys.FollowUp}, bindings...)
	}

	var parts []string
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.StatusBar.Render(strings.Join(parts, " • "))
}

// formatClock renders a bubble timestamp as a 12-hour clock. A zero time
// falls back to now rather than showing a bogus value.
func formatClock(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Local().Format("03:04 PM")
}
