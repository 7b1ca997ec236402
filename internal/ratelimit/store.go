package ratelimit

import (
	"sync"
	"time"
)

// Window is the per-key counter state for one fixed window.
type Window struct {
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// Store holds window state per key. The in-memory implementation is the
// default; RedisStore swaps in a shared backend without changing the limiter
// contract. Implementations do not need to be atomic on their own; the
// limiter serializes check-and-increment around store access.
type Store interface {
	Get(key string) (Window, bool)
	Set(key string, w Window)
	Reset(key string)
}

// MemoryStore keeps windows in a plain map guarded by a mutex. Expired
// entries are dropped lazily by the janitor.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]Window
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]Window)}
}

// Get implements Store.
func (s *MemoryStore) Get(key string) (Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[key]
	return w, ok
}

// Set implements Store.
func (s *MemoryStore) Set(key string, w Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows[key] = w
}

// Reset implements Store.
func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
}

// Cleanup removes every window that ended before the cutoff. maxAge should
// be at least the limiter's window duration.
func (s *MemoryStore) Cleanup(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, w := range s.windows {
		if w.Start.Before(cutoff) {
			delete(s.windows, k)
		}
	}
}

// StartJanitor runs Cleanup every interval until the context is done.
func (s *MemoryStore) StartJanitor(ctx DoneContext, interval, maxAge time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup(maxAge)
			}
		}
	}()
}

// DoneContext is the minimum needed to accept a context.Context without
// importing context here.
type DoneContext interface {
	Done() <-chan struct{}
}
