package conversation

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/maddielabs/maddie/internal/log"
	"github.com/maddielabs/maddie/internal/storage"
)

// Log is the conversation message log, persisted through the storage port
// after every mutation. Thread-safe; messages are copied on the way out.
//
// The zero value is not useful - use NewLog, which loads any persisted
// conversation (corrupt state is treated as empty, never fatal).
type Log struct {
	mu       sync.RWMutex
	store    storage.Store
	logger   log.Logger
	messages []Message
}

// NewLog creates a Log backed by store, loading any persisted messages.
func NewLog(store storage.Store, logger log.Logger) *Log {
	if logger == nil {
		logger = log.NewNop()
	}
	l := &Log{
		store:  store,
		logger: logger.With("component", "conversation"),
	}
	l.loadLocked()
	return l
}

// Messages returns a copy of the log in append order.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Append adds a message and persists the log.
func (l *Log) Append(msg Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
	return l.persistLocked()
}

// Confirm marks the message with the given ID as confirmed.
func (l *Log) Confirm(id string) error {
	return l.setStatus(id, StatusConfirmed)
}

// Fail marks the message with the given ID as failed.
func (l *Log) Fail(id string) error {
	return l.setStatus(id, StatusFailed)
}

func (l *Log) setStatus(id string, status Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.messages {
		if l.messages[i].ID == id {
			l.messages[i].Status = status
			return l.persistLocked()
		}
	}
	return nil
}

// Clear drops all messages and the persisted conversation. The session is
// untouched; its lifecycle is independent.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
	if err := l.store.Delete(storage.KeyConversation); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	return nil
}

// Reload re-reads the persisted conversation, discarding in-memory state.
// Used after an expired session wiped the stored log.
func (l *Log) Reload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
	l.loadLocked()
}

func (l *Log) loadLocked() {
	raw, ok := l.store.Get(storage.KeyConversation)
	if !ok {
		return
	}
	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		l.logger.Warn("corrupt conversation log, starting empty", "error", err)
		return
	}
	l.messages = messages
}

func (l *Log) persistLocked() error {
	data, err := json.Marshal(l.messages)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	if err := l.store.Set(storage.KeyConversation, string(data)); err != nil {
		return fmt.Errorf("failed to persist conversation: %w", err)
	}
	return nil
}
