package session

import (
	"sync"
	"time"

	"github.com/taskriser/taskriser/pkg/auth"
)

// Data is the server-side state of one session.
type Data struct {
	Identity  auth.Identity
	ExpiresAt time.Time
}

// Store is an in-memory session store. Sessions are process-local and
// lost on restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Data
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]Data)}
}

// Save stores a session under its ID.
func (s *Store) Save(id string, data Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = data
}

// Get returns the session data for an ID.
func (s *Store) Get(id string) (Data, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.sessions[id]
	return data, ok
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Cleanup drops expired sessions. Call periodically from a background
// goroutine.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, data := range s.sessions {
		if now.After(data.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}
