// Package conversation owns the widget's message log and the derivation
// of prompt/answer history sent to the agent API.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a message.
type Sender string

// Message senders.
const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Status tracks a message's delivery state. User messages are appended
// optimistically as pending and confirmed once the exchange completes,
// replacing presence checks on the log.
type Status string

// Message statuses.
const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Citation is a named source snippet attached to a bot response.
type Citation struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Message is a single conversation entry. Immutable once created except
// through the log. JSON field names stay wire-compatible with the browser
// build so migrated conversation state keeps loading.
type Message struct {
	ID                string     `json:"id"`
	Content           string     `json:"content"`
	Sender            Sender     `json:"sender"`
	Timestamp         time.Time  `json:"timestamp"`
	Status            Status     `json:"status,omitempty"`
	Sources           []Citation `json:"sources,omitempty"`
	FollowUpQuestions []string   `json:"followUpQuestions,omitempty"`
}

// NewUserMessage creates a pending user message with sanitized content.
func NewUserMessage(content string) Message {
	return Message{
		ID:        "user_" + uuid.NewString(),
		Content:   content,
		Sender:    SenderUser,
		Timestamp: time.Now(),
		Status:    StatusPending,
	}
}

// NewBotMessage creates a confirmed bot message.
func NewBotMessage(id, content string, sources []Citation, followUps []string) Message {
	if id == "" {
		id = "bot_" + uuid.NewString()
	}
	return Message{
		ID:                id,
		Content:           content,
		Sender:            SenderBot,
		Timestamp:         time.Now(),
		Status:            StatusConfirmed,
		Sources:           sources,
		FollowUpQuestions: followUps,
	}
}

// NewErrorMessage creates the placeholder bot message appended when a send
// fails, keeping the thread readable.
func NewErrorMessage() Message {
	return Message{
		ID:        "error_" + uuid.NewString(),
		Content:   "Sorry, I encountered an error processing your message. Please try again.",
		Sender:    SenderBot,
		Timestamp: time.Now(),
		Status:    StatusConfirmed,
	}
}
