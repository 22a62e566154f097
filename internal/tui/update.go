package tui

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		inputHeight := m.input.Height() + promptLines
		fixedHeight := headerLines + separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(vpHeight)
		m.input.SetWidth(msg.Width - 4) // Room for "> " prompt
		m.help.SetWidth(msg.Width)
		m.markdown.UpdateWidth(msg.Width)

		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// Keep the typing indicator animated while a send is in flight.
		if m.widget.Loading() {
			m.rebuildViewportContent()
		}
		return m, cmd

	case sendDoneMsg:
		bot := m.widget.FinishSend(msg.pending, msg.resp, msg.err)
		m.followUps = bot.FollowUpQuestions
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
