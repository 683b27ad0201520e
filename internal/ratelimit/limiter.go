// Package ratelimit implements a per-client fixed-window request limiter.
//
// This is deliberately a fixed-window counter, not a sliding window or
// token bucket: bursts at window boundaries are an accepted limitation, and
// counts are process-local best-effort state, not a security control.
package ratelimit

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Defaults matching the public API's published limits.
const (
	DefaultLimit  = 100
	DefaultWindow = 60 * time.Second
)

type window struct {
	count   int
	resetAt time.Time
}

// Limiter tracks request counts per client identifier. Safe for concurrent
// use. Expired windows are swept opportunistically during Allow so the
// client map stays bounded over long uptimes without a background task.
type Limiter struct {
	limit  int
	window time.Duration
	clock  clockwork.Clock

	mu        sync.Mutex
	windows   map[string]*window
	nextSweep time.Time
}

// New creates a Limiter allowing limit requests per window duration.
// Pass nil for clock to use real time.
func New(limit int, windowDur time.Duration, clock clockwork.Clock) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	l := &Limiter{
		limit:   limit,
		window:  windowDur,
		clock:   clock,
		windows: make(map[string]*window),
	}
	l.nextSweep = clock.Now().Add(windowDur)
	return l
}

// Allow reports whether the client may make another request. The first
// request in a window (or after the previous window expired) always passes
// and starts a fresh count; once the count reaches the limit, further
// requests are denied without incrementing.
func (l *Limiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.maybeSweep(now)

	w, ok := l.windows[clientID]
	if !ok || now.After(w.resetAt) {
		l.windows[clientID] = &window{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Size returns the number of tracked client windows, expired or not.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// maybeSweep drops expired windows at most once per window duration.
// Caller must hold mu.
func (l *Limiter) maybeSweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for id, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, id)
		}
	}
	l.nextSweep = now.Add(l.window)
}
