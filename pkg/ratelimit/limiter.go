package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// CounterStore holds per-key request counters with window expiry.
// Incr must be atomic per key: when no live counter exists for the key
// a new window is opened, otherwise the existing counter is bumped.
type CounterStore interface {
	// Incr increments the counter for key, opening a fresh window of
	// the given length when none is live. It returns the count within
	// the current window and the window's reset time.
	Incr(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)

	// Reset discards the counter for key.
	Reset(ctx context.Context, key string) error
}

// Decision is the limiter's verdict on one request.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns the whole seconds until the window resets, rounded
// up, never below 1.
func (d Decision) RetryAfter() int {
	secs := int(time.Until(d.ResetAt).Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Limiter is a fixed-window rate limiter.
type Limiter struct {
	store  CounterStore
	max    int
	window time.Duration
}

// NewLimiter creates a limiter allowing max requests per window per key.
func NewLimiter(store CounterStore, max int, window time.Duration) *Limiter {
	return &Limiter{store: store, max: max, window: window}
}

// Allow records a request for key and decides whether it is within the
// limit. Store errors fail open with a logged warning.
func (l *Limiter) Allow(ctx context.Context, key string) Decision {
	count, resetAt, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		slog.Warn("rate limit store error, failing open", "key", key, "error", err)
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max, ResetAt: time.Now().Add(l.window)}
	}

	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
