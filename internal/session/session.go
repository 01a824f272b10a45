// Package session holds the opaque API credential. The token is written
// once at login, read by every authenticated request and cleared at
// logout; views subscribe to the authenticated/unauthenticated flips
// instead of polling storage.
package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Store is the injected credential holder. The zero value is unusable;
// construct with New or NewFile.
type Store struct {
	mu        sync.RWMutex
	token     string
	path      string // empty for in-memory stores
	observers []func(authenticated bool)
}

// New returns an in-memory store, suitable for tests and short-lived
// commands that log in themselves.
func New() *Store {
	return &Store{}
}

// NewFile returns a store persisted at path, loading any token already
// saved there. A missing or unreadable file simply yields a logged-out
// store.
func NewFile(path string) *Store {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err == nil {
		s.token = strings.TrimSpace(string(data))
	}
	return s
}

// DefaultPath returns the conventional token location under the user's
// config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "shopctl", "token")
}

// Token returns the current credential, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a credential is present.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Subscribe registers fn to run on every authenticated-state change.
// fn is invoked synchronously from Set/Clear.
func (s *Store) Subscribe(fn func(authenticated bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Set stores the token, persists it if the store is file-backed and
// notifies observers when the authenticated state flipped.
func (s *Store) Set(token string) {
	s.mu.Lock()
	was := s.token != ""
	s.token = token
	path := s.path
	observers := s.observers
	s.mu.Unlock()

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err == nil {
			if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
				log.WithField("path", path).Warn("Failed to persist credential: ", err)
			}
		}
	}

	now := token != ""
	if was != now {
		for _, fn := range observers {
			fn(now)
		}
	}
}

// Clear drops the credential and removes the persisted copy.
func (s *Store) Clear() {
	s.mu.Lock()
	was := s.token != ""
	s.token = ""
	path := s.path
	observers := s.observers
	s.mu.Unlock()

	if path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.WithField("path", path).Warn("Failed to remove credential file: ", err)
		}
	}

	if was {
		for _, fn := range observers {
			fn(false)
		}
	}
}
