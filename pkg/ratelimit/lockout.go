package ratelimit

import (
	"sync"
	"time"
)

// Lockout defaults: five failures within fifteen minutes lock the account.
const (
	DefaultLockoutThreshold = 5
	DefaultLockoutWindow    = 15 * time.Minute
)

// LockoutTracker tracks failed login attempts per account and locks
// accounts that fail too often within a trailing window. State is
// process-local and lost on restart.
type LockoutTracker struct {
	threshold int
	window    time.Duration

	mu       sync.Mutex
	attempts map[string]*attemptRecord
}

type attemptRecord struct {
	failures int
	lastAt   time.Time
}

// NewLockoutTracker creates a tracker with the given threshold and
// window; zero values fall back to the defaults.
func NewLockoutTracker(threshold int, window time.Duration) *LockoutTracker {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	if window <= 0 {
		window = DefaultLockoutWindow
	}
	return &LockoutTracker{
		threshold: threshold,
		window:    window,
		attempts:  make(map[string]*attemptRecord),
	}
}

// Locked reports whether the account is currently locked out, and the
// remaining lockout duration. Stale records outside the window are
// discarded on inspection.
func (t *LockoutTracker) Locked(account string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.attempts[account]
	if !ok {
		return false, 0
	}

	elapsed := time.Since(rec.lastAt)
	if elapsed >= t.window {
		delete(t.attempts, account)
		return false, 0
	}

	if rec.failures >= t.threshold {
		return true, t.window - elapsed
	}
	return false, 0
}

// Failure records a failed login attempt for the account.
func (t *LockoutTracker) Failure(account string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	rec, ok := t.attempts[account]
	if !ok || now.Sub(rec.lastAt) >= t.window {
		t.attempts[account] = &attemptRecord{failures: 1, lastAt: now}
		return
	}
	rec.failures++
	rec.lastAt = now
}

// Success clears the failure record for the account.
func (t *LockoutTracker) Success(account string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, account)
}
