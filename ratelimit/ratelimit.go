// Package ratelimit implements the fixed-window request limiter applied to
// API routes. State is in-memory and process-local: a restart resets every
// window, an accepted tradeoff for this deployment.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultMaxRequests is the request budget per identifier per window.
	DefaultMaxRequests = 100
	// DefaultWindow is the width of the fixed window.
	DefaultWindow = 60 * time.Second
)

// Limiter tracks request timestamps per client identifier within a fixed
// window. It is constructed explicitly and injected at call sites so tests
// can run independent limiters and the backend can later be swapped for a
// distributed store.
type Limiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

// New creates a Limiter allowing max requests per identifier within window.
func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		requests: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// NewDefault creates a Limiter with the standard API budget.
func NewDefault() *Limiter {
	return New(DefaultMaxRequests, DefaultWindow)
}

// Allow reports whether a request from identifier may proceed. Timestamps
// older than the window are pruned on every check. A rejected request is
// not recorded, so hammering a full window does not extend the lockout.
func (l *Limiter) Allow(identifier string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := l.requests[identifier]
	start := 0
	for start < len(stamps) && stamps[start].Before(cutoff) {
		start++
	}
	stamps = stamps[start:]

	if len(stamps) >= l.max {
		l.requests[identifier] = stamps
		return false
	}

	l.requests[identifier] = append(stamps, now)
	return true
}

// Sweep drops identifiers whose every timestamp has aged out of the window.
// Call periodically from a background goroutine to bound memory on
// long-running processes.
func (l *Limiter) Sweep() {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, stamps := range l.requests {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
			delete(l.requests, id)
		}
	}
}
