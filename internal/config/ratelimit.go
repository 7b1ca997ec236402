package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig holds the three throttling policies applied by the
// request pipeline. Each policy is a fixed window with a request budget;
// the auth policy only counts failed attempts.
type RateLimitConfig struct {
	Enabled bool

	GeneralWindow time.Duration // general API policy window
	GeneralMax    int           // max requests per general window, keyed by IP

	AuthWindow time.Duration // auth endpoints policy window
	AuthMax    int           // max *failed* attempts per window, keyed by IP+email

	AIWindow time.Duration // AI endpoints policy window
	AIMax    int           // max requests per AI window, keyed by IP

	UseRedis bool   // back window state with Redis instead of process memory
	Prefix   string // key prefix for the shared store
}

// LoadRateLimitConfig reads policy knobs from the environment, falling back
// to the documented defaults: 100/15min general, 5 failures/15min auth,
// 20/60min AI.
func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:       envBool("RATE_LIMIT_ENABLED", true),
		GeneralWindow: envDur("RATE_LIMIT_GENERAL_WINDOW", 15*time.Minute),
		GeneralMax:    envInt("RATE_LIMIT_GENERAL_MAX", 100),
		AuthWindow:    envDur("RATE_LIMIT_AUTH_WINDOW", 15*time.Minute),
		AuthMax:       envInt("RATE_LIMIT_AUTH_MAX", 5),
		AIWindow:      envDur("RATE_LIMIT_AI_WINDOW", time.Hour),
		AIMax:         envInt("RATE_LIMIT_AI_MAX", 20),
		UseRedis:      envBool("RATE_LIMIT_REDIS", false),
		Prefix:        envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if def.GeneralMax < 1 {
		def.GeneralMax = 1
	}
	if def.AuthMax < 1 {
		def.AuthMax = 1
	}
	if def.AIMax < 1 {
		def.AIMax = 1
	}
	return def
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
		return dur
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return d
}
