package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_URI", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := Load()
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "gemini-1.5-flash", cfg.AI.Model)
	assert.False(t, cfg.AI.IsEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REDIS_URI", "redis://cache:6380")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GEMINI_TIMEOUT_MS", "2500")

	cfg := Load()
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.AI.IsEnabled())
	assert.Equal(t, 2500*time.Millisecond, cfg.AI.Timeout())
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("COMPLAINT_TTL", "soon")
	assert.Equal(t, 30*24*time.Hour, Load().ComplaintTTL)
}
