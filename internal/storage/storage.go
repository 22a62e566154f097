// Package storage provides the persistent key-value store backing the chat
// widget's client-side state (conversation log, session record, rate-limit
// window).
//
// The Store interface is the single port every component uses; production
// code injects a FileStore, tests inject a MemStore. Reads are deliberately
// forgiving: a missing key, an unreadable file, or corrupt contents all
// surface as "absent" so callers can fall back to defaults instead of
// failing the widget.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/maddielabs/maddie/internal/log"
)

// Store is the key-value port shared by session, rate-limit, and
// conversation persistence. Values are opaque strings; callers own their
// own encoding.
type Store interface {
	// Get returns the value for key. The second return is false when the
	// key is absent or the underlying state could not be read.
	Get(key string) (string, bool)

	// Set persists value under key.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

const stateFileName = "state.json"

// FileStore persists keys to a single JSON file guarded by an advisory
// file lock, so concurrent widget processes sharing a state directory do
// not corrupt each other's writes.
type FileStore struct {
	path   string
	lock   *flock.Flock
	logger log.Logger

	mu sync.Mutex // serializes read-modify-write within this process
}

// NewFileStore creates a FileStore rooted at dir, creating dir if needed.
func NewFileStore(dir string, logger log.Logger) (*FileStore, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	path := filepath.Join(dir, stateFileName)
	return &FileStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger.With("component", "storage"),
	}, nil
}

// Get implements Store. Read failures and corrupt state are logged and
// reported as absent, never as errors.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.RLock(); err != nil {
		s.logger.Warn("state file lock failed, treating as empty", "error", err)
		return "", false
	}
	defer func() { _ = s.lock.Unlock() }()

	state := s.load()
	value, ok := state[key]
	return value, ok
}

// Set implements Store.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock state file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	state := s.load()
	state[key] = value
	return s.save(state)
}

// Delete implements Store.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock state file: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	state := s.load()
	if _, ok := state[key]; !ok {
		return nil
	}
	delete(state, key)
	return s.save(state)
}

// load reads the state file. Missing or corrupt files yield an empty map;
// corruption is logged once here rather than propagated to every caller.
func (s *FileStore) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read state file, treating as empty",
				"path", s.path, "error", err)
		}
		return make(map[string]string)
	}

	var state map[string]string
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("corrupt state file, treating as empty",
			"path", s.path, "error", err)
		return make(map[string]string)
	}
	if state == nil {
		state = make(map[string]string)
	}
	return state
}

func (s *FileStore) save(state map[string]string) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and embedding scenarios that
// need no persistence across restarts. Safe for concurrent use.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

// Get implements Store.
func (s *MemStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

// Set implements Store.
func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete implements Store.
func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
