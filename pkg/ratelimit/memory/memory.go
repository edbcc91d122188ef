// Package memory provides an in-process CounterStore backed by a
// mutex-guarded map. Counters are process-local and lost on restart.
package memory

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	count   int
	resetAt time.Time
}

// Store is an in-memory counter store. The mutex makes the
// read-modify-write of each Incr atomic under parallel request
// handling.
type Store struct {
	mu       sync.Mutex
	counters map[string]*counter
}

// New creates an empty counter store.
func New() *Store {
	return &Store{counters: make(map[string]*counter)}
}

// Incr bumps the counter for key, opening a fresh window when none is
// live.
func (s *Store) Incr(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.resetAt) {
		c = &counter{count: 1, resetAt: now.Add(window)}
		s.counters[key] = c
		return c.count, c.resetAt, nil
	}

	c.count++
	return c.count, c.resetAt, nil
}

// Reset discards the counter for key.
func (s *Store) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, key)
	return nil
}
