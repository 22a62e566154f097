// Package session manages the widget's client-side session: a time-boxed
// identifier correlating a user's messages without server-side
// authentication.
//
// Lifecycle: absent -> active (Create), active -> expired (detected at
// load time, never by a running timer), expired -> absent (atomic cleanup
// of identifier, timestamp, and conversation log together). Touch extends
// an active session's life after each successful exchange.
package session

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/maddielabs/maddie/internal/log"
	"github.com/maddielabs/maddie/internal/security"
	"github.com/maddielabs/maddie/internal/storage"
)

// MaxAge is how long a session stays valid without activity.
const MaxAge = 30 * time.Minute

// suffix alphabet matches the identifier format: 9 base36 characters.
const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
const suffixLength = 9

// Manager owns session lifecycle and persistence.
//
// The zero value is not useful; use NewManager.
type Manager struct {
	store  storage.Store
	logger log.Logger
	now    func() time.Time
}

// NewManager creates a session manager backed by store.
func NewManager(store storage.Store, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{
		store:  store,
		logger: logger.With("component", "session"),
		now:    time.Now,
	}
}

// Load returns the current session identifier if one exists and has not
// expired. An expired session is cleared atomically (identifier, timestamp,
// and conversation log dropped together) and reported as absent. Malformed
// persisted values are treated as absent, never as errors.
func (m *Manager) Load() (string, bool) {
	id, ok := m.store.Get(storage.KeySessionID)
	if !ok || !security.ValidateSessionID(id) {
		return "", false
	}

	raw, ok := m.store.Get(storage.KeySessionTimestamp)
	if !ok {
		return "", false
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		m.logger.Warn("malformed session timestamp, treating session as absent", "value", raw)
		return "", false
	}

	lastActivity := time.UnixMilli(millis)
	if m.now().Sub(lastActivity) > MaxAge {
		m.logger.Info("session expired", "session_id", id, "last_activity", lastActivity)
		if err := m.Clear(); err != nil {
			m.logger.Warn("failed to clear expired session", "error", err)
		}
		return "", false
	}

	return id, true
}

// Create generates a fresh session identifier and records the current time
// as its last activity. Callers must create sessions lazily, on first open
// of the chat window, never eagerly at startup.
func (m *Manager) Create() (string, error) {
	id := m.generateID()

	if err := m.store.Set(storage.KeySessionID, id); err != nil {
		return "", fmt.Errorf("failed to persist session ID: %w", err)
	}
	if err := m.store.Set(storage.KeySessionTimestamp, m.timestamp()); err != nil {
		return "", fmt.Errorf("failed to persist session timestamp: %w", err)
	}

	m.logger.Info("session created", "session_id", id)
	return id, nil
}

// Touch refreshes the session's last-activity timestamp, extending its
// life. No-op when no session exists.
func (m *Manager) Touch() error {
	if _, ok := m.store.Get(storage.KeySessionID); !ok {
		return nil
	}
	if err := m.store.Set(storage.KeySessionTimestamp, m.timestamp()); err != nil {
		return fmt.Errorf("failed to refresh session timestamp: %w", err)
	}
	return nil
}

// Clear drops the session identifier, its timestamp, and the conversation
// log together. Idempotent.
func (m *Manager) Clear() error {
	for _, key := range []string{
		storage.KeySessionID,
		storage.KeySessionTimestamp,
		storage.KeyConversation,
	} {
		if err := m.store.Delete(key); err != nil {
			return fmt.Errorf("failed to clear session state %q: %w", key, err)
		}
	}
	return nil
}

func (m *Manager) timestamp() string {
	return strconv.FormatInt(m.now().UnixMilli(), 10)
}

// generateID produces "session_<millis>_<9 alphanumerics>".
func (m *Manager) generateID() string {
	suffix := make([]byte, suffixLength)
	for i := range suffix {
		suffix[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return fmt.Sprintf("session_%d_%s", m.now().UnixMilli(), suffix)
}
