// Package ratelimit implements the widget's client-side sliding-window
// rate limiter: at most MaxRequests accepted sends per rolling Window,
// evaluated on every check rather than reset on fixed boundaries.
//
// The window is persisted through the storage port so quota survives a
// restart. A denied check never consumes quota; only accepted sends do.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/maddielabs/maddie/internal/log"
	"github.com/maddielabs/maddie/internal/storage"
)

const (
	// MaxRequests is the number of accepted sends per Window.
	MaxRequests = 10

	// Window is the rolling interval quota is enforced over.
	Window = 60 * time.Second
)

// window is the persisted representation. Field names stay wire-compatible
// with the browser build of the widget.
type window struct {
	Requests  []int64 `json:"requests"` // accepted-send instants, unix millis
	LastReset int64   `json:"lastReset"`
}

// Limiter is a persisted sliding-window request counter.
//
// The zero value is not useful; use NewLimiter.
type Limiter struct {
	store   storage.Store
	logger  log.Logger
	now     func() time.Time
	limited bool
}

// NewLimiter creates a limiter backed by store.
func NewLimiter(store storage.Store, logger log.Logger) *Limiter {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Limiter{
		store:  store,
		logger: logger.With("component", "ratelimit"),
		now:    time.Now,
	}
}

// Check loads the persisted window, discards timestamps older than
// now-Window, and reports whether a send may proceed. On acceptance the
// current instant is recorded and persisted; on denial nothing is recorded,
// so being blocked carries no penalty.
func (l *Limiter) Check() bool {
	now := l.now()
	win := l.load(now)

	// Prune entries that fell out of the rolling window.
	cutoff := now.Add(-Window).UnixMilli()
	kept := win.Requests[:0]
	for _, ts := range win.Requests {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	win.Requests = kept

	if len(win.Requests) >= MaxRequests {
		l.limited = true
		l.logger.Info("rate limit exceeded",
			"requests_in_window", len(win.Requests), "window", Window)
		return false
	}

	win.Requests = append(win.Requests, now.UnixMilli())
	if err := l.persist(win); err != nil {
		l.logger.Warn("failed to persist rate-limit window", "error", err)
	}

	l.limited = false
	return true
}

// Limited reports whether the most recent Check was denied.
func (l *Limiter) Limited() bool {
	return l.limited
}

// Reset clears the persisted window and the limited flag unconditionally.
func (l *Limiter) Reset() error {
	l.limited = false
	if err := l.store.Delete(storage.KeyRateLimit); err != nil {
		return fmt.Errorf("failed to clear rate-limit window: %w", err)
	}
	return nil
}

// load reads the persisted window; missing or corrupt state yields a
// fresh empty window.
func (l *Limiter) load(now time.Time) window {
	raw, ok := l.store.Get(storage.KeyRateLimit)
	if !ok {
		return window{LastReset: now.UnixMilli()}
	}

	var win window
	if err := json.Unmarshal([]byte(raw), &win); err != nil {
		l.logger.Warn("corrupt rate-limit window, starting fresh", "error", err)
		return window{LastReset: now.UnixMilli()}
	}
	return win
}

func (l *Limiter) persist(win window) error {
	data, err := json.Marshal(win)
	if err != nil {
		return fmt.Errorf("failed to encode rate-limit window: %w", err)
	}
	return l.store.Set(storage.KeyRateLimit, string(data))
}
