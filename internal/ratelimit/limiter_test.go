package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestLimiter_AllowUpToMax(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l := NewLimiter(NewMemoryStore(), 15*time.Minute, 3).WithClock(fixedClock(start))

	for i := 0; i < 3; i++ {
		out := l.Allow("1.2.3.4")
		require.True(t, out.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, 3, out.Limit)
		assert.Equal(t, 3-(i+1), out.Remaining)
	}

	out := l.Allow("1.2.3.4")
	assert.False(t, out.Allowed)
	assert.Equal(t, 0, out.Remaining)
	assert.Equal(t, start.Add(15*time.Minute), out.Reset)
	assert.Equal(t, 15*60, out.RetryAfter)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), time.Minute, 1)

	require.True(t, l.Allow("a").Allowed)
	assert.False(t, l.Allow("a").Allowed)
	assert.True(t, l.Allow("b").Allowed)
}

func TestLimiter_WindowResets(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	now := start
	l := NewLimiter(NewMemoryStore(), 15*time.Minute, 2).WithClock(func() time.Time { return now })

	l.Allow("k")
	l.Allow("k")
	assert.False(t, l.Allow("k").Allowed)

	// Just before the boundary the old window still applies.
	now = start.Add(15*time.Minute - time.Second)
	assert.False(t, l.Allow("k").Allowed)

	// Exactly at the boundary a fresh window begins.
	now = start.Add(15 * time.Minute)
	out := l.Allow("k")
	assert.True(t, out.Allowed)
	assert.Equal(t, 1, out.Remaining)
	assert.Equal(t, now.Add(15*time.Minute), out.Reset)
}

func TestLimiter_PeekDoesNotConsume(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), time.Minute, 2)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Peek("k").Allowed)
	}
	assert.True(t, l.Allow("k").Allowed)
	assert.True(t, l.Allow("k").Allowed)
	assert.False(t, l.Allow("k").Allowed)
}

func TestLimiter_RecordFailureConsumesQuota(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), time.Minute, 2)

	l.RecordFailure("k")
	assert.True(t, l.Peek("k").Allowed)
	l.RecordFailure("k")

	out := l.Peek("k")
	assert.False(t, out.Allowed)
	assert.GreaterOrEqual(t, out.RetryAfter, 1)
}

func TestLimiter_RetryAfterNeverBelowOne(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	now := start
	l := NewLimiter(NewMemoryStore(), time.Minute, 1).WithClock(func() time.Time { return now })

	l.Allow("k")
	now = start.Add(time.Minute - 50*time.Millisecond)
	out := l.Allow("k")
	require.False(t, out.Allowed)
	assert.Equal(t, 1, out.RetryAfter)
}

func TestLimiter_ResetClearsKey(t *testing.T) {
	l := NewLimiter(NewMemoryStore(), time.Minute, 1)

	l.Allow("k")
	assert.False(t, l.Allow("k").Allowed)
	l.Reset("k")
	assert.True(t, l.Allow("k").Allowed)
}

func TestLimiter_ConcurrentAllowNeverOveradmits(t *testing.T) {
	const max = 50
	l := NewLimiter(NewMemoryStore(), time.Minute, max)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared").Allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, max, admitted)
}
