package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/maddielabs/maddie/internal/doozer"
	"github.com/maddielabs/maddie/internal/widget"
)

// sendDoneMsg carries the agent's verdict for one in-flight send back to
// the event loop. Exactly one is posted per accepted send, success or
// failure.
type sendDoneMsg struct {
	pending *widget.Pending
	resp    *doozer.Response
	err     error
}

// sendCmd runs the single blocking step of the send pipeline. No timeout
// or cancellation is layered on here: the transport resolves or rejects
// on its own, and the loading guard keeps the widget to one in-flight
// request.
func (m *Model) sendCmd(p *widget.Pending) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.widget.Do(m.ctx, p)
		return sendDoneMsg{pending: p, resp: resp, err: err}
	}
}
