// Package guard holds admission checks applied before the session economy is
// touched.
package guard

import (
	"sync"
	"time"
)

// SessionLimiter is a sliding-window limiter on session creation, keyed by
// player id. It enforces the catalog's maxSessionsPerDay setting; anonymous
// sessions (empty key) are never limited.
type SessionLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration
}

// NewSessionLimiter creates a limiter allowing limit creations per window.
// A non-positive limit disables the check.
func NewSessionLimiter(limit int, window time.Duration) *SessionLimiter {
	return &SessionLimiter{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
	}
}

// Allow reports whether the key may create another session now. When denied
// it returns the wait until the oldest creation leaves the window.
func (l *SessionLimiter) Allow(key string) (bool, time.Duration) {
	if l.limit <= 0 || key == "" {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	entries := l.windows[key]
	valid := entries[:0]
	for _, t := range entries {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= l.limit {
		l.windows[key] = valid
		return false, valid[0].Sub(cutoff)
	}

	l.windows[key] = append(valid, now)
	return true, 0
}
