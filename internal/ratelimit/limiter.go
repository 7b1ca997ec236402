// Package ratelimit implements fixed-window request counting per key.
// Counters accumulate inside a window of fixed duration and reset once the
// window has fully elapsed; there is no rolling lookback.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Outcome reports the result of a limiter check for one request.
type Outcome struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is when the current window ends and the counter restarts.
	Reset time.Time
	// RetryAfter is whole seconds until Reset, never below 1. Only
	// meaningful when Allowed is false.
	RetryAfter int
}

// Limiter counts requests per key within fixed windows. All state lives in
// the injected Store; the limiter's own mutex makes read-check-increment a
// single atomic step, so two concurrent requests for the same key can never
// both slip under the max when admitting either would exceed it.
type Limiter struct {
	mu     sync.Mutex
	store  Store
	window time.Duration
	max    int
	now    func() time.Time
}

// NewLimiter builds a limiter admitting at most max requests per window.
func NewLimiter(store Store, window time.Duration, max int) *Limiter {
	return &Limiter{store: store, window: window, max: max, now: time.Now}
}

// WithClock swaps the limiter's clock. Intended for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Max returns the per-window request budget.
func (l *Limiter) Max() int { return l.max }

// Window returns the window duration.
func (l *Limiter) Window() time.Duration { return l.window }

// current loads the window for key, restarting it when the expiry instant
// has passed. A request arriving exactly at start+window belongs to the new
// window: the boundary check is >=, not >.
func (l *Limiter) current(key string, now time.Time) Window {
	w, ok := l.store.Get(key)
	if !ok || !now.Before(w.Start.Add(l.window)) {
		return Window{Start: now, Count: 0}
	}
	return w
}

func (l *Limiter) outcome(w Window, allowed bool, now time.Time) Outcome {
	remaining := l.max - w.Count
	if remaining < 0 {
		remaining = 0
	}
	reset := w.Start.Add(l.window)
	retry := int(math.Ceil(reset.Sub(now).Seconds()))
	if retry < 1 {
		retry = 1
	}
	return Outcome{
		Allowed:    allowed,
		Limit:      l.max,
		Remaining:  remaining,
		Reset:      reset,
		RetryAfter: retry,
	}
}

// Allow performs the atomic check-and-increment for one request. The
// request is admitted when the incremented count does not exceed the max.
func (l *Limiter) Allow(key string) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w := l.current(key, now)
	w.Count++
	l.store.Set(key, w)
	return l.outcome(w, w.Count <= l.max, now)
}

// Peek reports whether a request for key would currently be admitted
// without consuming any quota. Used by policies that only count failures.
func (l *Limiter) Peek(key string) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w := l.current(key, now)
	return l.outcome(w, w.Count < l.max, now)
}

// RecordFailure consumes one unit of quota for key without an admission
// check. Paired with Peek for the failed-attempts-only policy.
func (l *Limiter) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w := l.current(key, now)
	w.Count++
	l.store.Set(key, w)
}

// Reset clears all state for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.Reset(key)
}
