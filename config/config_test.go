package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "JWT_SECRET", "TOKEN_TTL_HOURS", "COOKIE_NAME", "REDIS_URL", "REALTIME_REQUIRE_TOKEN"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "jwt", cfg.CookieName)
	assert.Equal(t, 20*24*time.Hour, cfg.TokenTTL)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.RealtimeRequireToken)
	assert.Equal(t, 64, cfg.WSSendBuffer)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL_HOURS", "1")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("REALTIME_REQUIRE_TOKEN", "1")
	t.Setenv("ENVIRONMENT", "production")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.RealtimeRequireToken)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	assert.Equal(t, 3, getEnvAsInt("REDIS_DB", 3))
}
