package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a Limiter deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(max int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := New(max, window)
	l.now = clock.now
	return l, clock
}

func TestLimiter_Boundary(t *testing.T) {
	l, _ := newTestLimiter(100, time.Minute)

	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("x"), "request %d should be within budget", i+1)
	}
	assert.False(t, l.Allow("x"), "request 101 must be rejected")
}

func TestLimiter_WindowReset(t *testing.T) {
	l, clock := newTestLimiter(100, time.Minute)

	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("x"))
	}
	require.False(t, l.Allow("x"))

	clock.advance(61 * time.Second)
	assert.True(t, l.Allow("x"), "window should reset after 60s of silence")
}

func TestLimiter_RejectionNotRecorded(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)

	require.True(t, l.Allow("x"))
	require.True(t, l.Allow("x"))

	// Hammering a full window must not extend the lockout.
	for i := 0; i < 10; i++ {
		require.False(t, l.Allow("x"))
	}

	clock.advance(61 * time.Second)
	assert.True(t, l.Allow("x"))
}

func TestLimiter_IdentifiersIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "identifier b has its own budget")
}

func TestLimiter_PartialPrune(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)

	require.True(t, l.Allow("x"))
	clock.advance(40 * time.Second)
	require.True(t, l.Allow("x"))
	require.False(t, l.Allow("x"))

	// First stamp ages out; the second is still inside the window.
	clock.advance(30 * time.Second)
	assert.True(t, l.Allow("x"))
	assert.False(t, l.Allow("x"))
}

func TestLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute)

	require.True(t, l.Allow("stale"))
	clock.advance(2 * time.Minute)
	require.True(t, l.Allow("fresh"))

	l.Sweep()

	l.mu.Lock()
	_, staleKept := l.requests["stale"]
	_, freshKept := l.requests["fresh"]
	l.mu.Unlock()

	assert.False(t, staleKept, "aged-out identifier should be dropped")
	assert.True(t, freshKept, "active identifier should be kept")
}
