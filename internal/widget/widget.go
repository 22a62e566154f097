// Package widget implements the chat widget's orchestration state machine:
// the open/closed flag, unread counter, loading guard, surfaced error, and
// the send pipeline tying validation, rate limiting, history building, the
// agent client, and session bookkeeping together.
//
// All state is confined to the UI event loop. The only blocking step, the
// agent call, runs through Do between StartSend and FinishSend; the
// loading guard drops (never queues) a second send attempted while one is
// in flight.
package widget

import (
	"context"
	"errors"
	"time"

	"github.com/maddielabs/maddie/internal/conversation"
	"github.com/maddielabs/maddie/internal/doozer"
	"github.com/maddielabs/maddie/internal/log"
	"github.com/maddielabs/maddie/internal/ratelimit"
	"github.com/maddielabs/maddie/internal/security"
	"github.com/maddielabs/maddie/internal/session"
)

// Sentinel errors returned by StartSend. ErrNoSession, ErrBusy, and
// ErrInvalidMessage block silently at the UI boundary; ErrRateLimited
// additionally surfaces a user-visible message.
var (
	ErrNoSession      = errors.New("no active session")
	ErrBusy           = errors.New("send already in flight")
	ErrRateLimited    = errors.New("rate limited")
	ErrInvalidMessage = security.ErrInvalidMessage
)

// AgentClient is the outbound port to the agent API. Satisfied by
// *doozer.Client; tests substitute a fake.
type AgentClient interface {
	Send(ctx context.Context, req doozer.Request) (*doozer.Response, error)
}

// Pending is an in-flight send: the optimistically appended user message
// plus the request to execute. Produced by StartSend, consumed by Do and
// FinishSend.
type Pending struct {
	UserMessageID string
	Request       doozer.Request
}

// Widget owns the chat widget state. Not safe for concurrent use: all
// methods must be called from the UI event loop.
type Widget struct {
	log      *conversation.Log
	sessions *session.Manager
	limiter  *ratelimit.Limiter
	client   AgentClient
	logger   log.Logger

	open      bool
	unread    int
	loading   bool
	errMsg    string
	sessionID string
}

// New creates a Widget. All dependencies are required except logger.
func New(convLog *conversation.Log, sessions *session.Manager, limiter *ratelimit.Limiter, client AgentClient, logger log.Logger) (*Widget, error) {
	switch {
	case convLog == nil:
		return nil, errors.New("widget.New: conversation log is required")
	case sessions == nil:
		return nil, errors.New("widget.New: session manager is required")
	case limiter == nil:
		return nil, errors.New("widget.New: rate limiter is required")
	case client == nil:
		return nil, errors.New("widget.New: agent client is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Widget{
		log:      convLog,
		sessions: sessions,
		limiter:  limiter,
		client:   client,
		logger:   logger.With("component", "widget"),
	}, nil
}

// Open expands the widget, resets the unread counter, and lazily ensures
// a valid session exists. Sessions are created here, on first open, never
// eagerly at startup.
func (w *Widget) Open() error {
	w.open = true
	w.unread = 0
	return w.ensureSession()
}

// Close collapses the widget. Session and conversation are untouched.
func (w *Widget) Close() {
	w.open = false
}

// Toggle flips between open and closed.
func (w *Widget) Toggle() error {
	if w.open {
		w.Close()
		return nil
	}
	return w.Open()
}

// ensureSession loads the current session, creating one if it is absent
// or has expired. Expiry wipes the persisted conversation, so the
// in-memory log is reloaded to match.
func (w *Widget) ensureSession() error {
	if id, ok := w.sessions.Load(); ok {
		w.sessionID = id
		return nil
	}
	w.log.Reload() // expired session cleanup may have wiped the stored log

	id, err := w.sessions.Create()
	if err != nil {
		return err
	}
	w.sessionID = id
	return nil
}

// StartSend runs the front half of the send pipeline: guards, rate-limit
// check, sanitization, optimistic append, and history building. On success
// the loading flag is set and the returned Pending must be passed to Do
// and then FinishSend.
func (w *Widget) StartSend(content string) (*Pending, error) {
	if w.sessionID == "" {
		return nil, ErrNoSession
	}
	if w.loading {
		return nil, ErrBusy
	}
	if w.limiter.Limited() {
		return nil, ErrRateLimited
	}

	if !security.ValidateMessage(content) {
		return nil, ErrInvalidMessage
	}

	if !w.limiter.Check() {
		w.errMsg = rateLimitedMessage
		return nil, ErrRateLimited
	}

	// New attempt: clear whatever error the last one surfaced.
	w.errMsg = ""

	sanitized := security.SanitizeMessage(content)

	// History excludes the message being composed, so build it before the
	// optimistic append.
	history := conversation.BuildHistory(w.log.Messages())

	userMsg := conversation.NewUserMessage(sanitized)
	if err := w.log.Append(userMsg); err != nil {
		w.logger.Warn("failed to persist user message", "error", err)
	}

	w.loading = true
	return &Pending{
		UserMessageID: userMsg.ID,
		Request: doozer.Request{
			Query:               sanitized,
			SessionID:           w.sessionID,
			Timestamp:           conversation.ISOTimestamp(time.Now()),
			ConversationHistory: history,
		},
	}, nil
}

// Do executes the agent call for a pending send. Safe to run off the
// event loop: it touches no widget state.
func (w *Widget) Do(ctx context.Context, p *Pending) (*doozer.Response, error) {
	return w.client.Send(ctx, p.Request)
}

// FinishSend runs the back half of the pipeline with the agent's verdict
// and returns the bot message appended to the log. The loading flag is
// cleared on every path.
func (w *Widget) FinishSend(p *Pending, resp *doozer.Response, sendErr error) conversation.Message {
	w.loading = false

	var botMsg conversation.Message
	if sendErr != nil {
		w.logger.Error("send failed", "operation", "widget.Send",
			"timestamp", time.Now().Format(time.RFC3339), "error", sendErr)
		w.errMsg = userMessage(sendErr)

		if err := w.log.Fail(p.UserMessageID); err != nil {
			w.logger.Warn("failed to mark message failed", "error", err)
		}
		botMsg = conversation.NewErrorMessage()
	} else {
		if err := w.log.Confirm(p.UserMessageID); err != nil {
			w.logger.Warn("failed to confirm message", "error", err)
		}
		botMsg = conversation.NewBotMessage(resp.ID, resp.Message, resp.Sources, resp.FollowUpQuestions)

		if err := w.sessions.Touch(); err != nil {
			w.logger.Warn("failed to refresh session", "error", err)
		}
	}

	if err := w.log.Append(botMsg); err != nil {
		w.logger.Warn("failed to persist bot message", "error", err)
	}
	if !w.open {
		w.unread++
	}
	return botMsg
}

// ClearConversation wipes the message log and the surfaced error. The
// session is deliberately left alone; its lifecycle is independent.
func (w *Widget) ClearConversation() error {
	w.errMsg = ""
	return w.log.Clear()
}

// Messages returns a copy of the conversation log.
func (w *Widget) Messages() []conversation.Message {
	return w.log.Messages()
}

// IsOpen reports whether the window is expanded.
func (w *Widget) IsOpen() bool { return w.open }

// Unread returns the number of bot messages that arrived while closed.
func (w *Widget) Unread() int { return w.unread }

// Loading reports whether a send is in flight.
func (w *Widget) Loading() bool { return w.loading }

// Err returns the last surfaced user-visible error message, empty when
// none.
func (w *Widget) Err() string { return w.errMsg }

// SessionID returns the active session identifier, empty before Open.
func (w *Widget) SessionID() string { return w.sessionID }
