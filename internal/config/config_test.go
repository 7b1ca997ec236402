package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfig_Defaults(t *testing.T) {
	rl := LoadRateLimitConfig()
	assert.True(t, rl.Enabled)
	assert.Equal(t, 15*time.Minute, rl.GeneralWindow)
	assert.Equal(t, 100, rl.GeneralMax)
	assert.Equal(t, 15*time.Minute, rl.AuthWindow)
	assert.Equal(t, 5, rl.AuthMax)
	assert.Equal(t, time.Hour, rl.AIWindow)
	assert.Equal(t, 20, rl.AIMax)
	assert.False(t, rl.UseRedis)
}

func TestLoadRateLimitConfig_Overrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_GENERAL_WINDOW", "1m")
	t.Setenv("RATE_LIMIT_GENERAL_MAX", "7")
	t.Setenv("RATE_LIMIT_AUTH_WINDOW", "90") // bare number reads as seconds
	t.Setenv("RATE_LIMIT_AI_MAX", "0")       // floor at 1

	rl := LoadRateLimitConfig()
	assert.False(t, rl.Enabled)
	assert.Equal(t, time.Minute, rl.GeneralWindow)
	assert.Equal(t, 7, rl.GeneralMax)
	assert.Equal(t, 90*time.Second, rl.AuthWindow)
	assert.Equal(t, 1, rl.AIMax)
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Equal(t, []string{"https://a.example", "https://b.example"},
		splitCSV(" https://a.example , https://b.example ,"))
}

func TestIsProd(t *testing.T) {
	assert.False(t, Config{Env: "dev"}.IsProd())
	assert.True(t, Config{Env: "prod"}.IsProd())
	assert.True(t, Config{Env: "production"}.IsProd())
}
