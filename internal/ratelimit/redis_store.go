package ratelimit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps window state in Redis so the counter survives restarts
// and can be shared between processes. It satisfies the same Store contract
// as MemoryStore; callers do not change.
//
// Keys expire on their own a little after the window does, so no janitor is
// needed. Redis errors degrade to "no window", i.e. the request is admitted
// rather than the whole API failing closed on a cache outage.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. ttl bounds how long an idle window
// key lives; it should exceed the longest policy window.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "rl"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(k string) string { return s.prefix + ":" + k }

// Get implements Store.
func (s *RedisStore) Get(key string) (Window, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		return Window{}, false
	}
	var w Window
	if err := json.Unmarshal(raw, &w); err != nil {
		return Window{}, false
	}
	return w, true
}

// Set implements Store.
func (s *RedisStore) Set(key string, w Window) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	raw, err := json.Marshal(w)
	if err != nil {
		return
	}
	_ = s.rdb.Set(ctx, s.key(key), raw, s.ttl).Err()
}

// Reset implements Store.
func (s *RedisStore) Reset(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.rdb.Del(ctx, s.key(key)).Err()
}
