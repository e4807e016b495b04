package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.FeedStreakWindow)
	assert.Equal(t, 4, cfg.FeedWorkers)
	assert.Equal(t, 1024, cfg.FeedQueueSize)
	assert.Equal(t, 10*time.Second, cfg.RateLimitComment)
	assert.Equal(t, "dev-secret", cfg.JWTSecret)
	assert.True(t, cfg.Database.Debug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("FEED_STREAK_WINDOW", "90s")
	t.Setenv("FEED_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.FeedStreakWindow)
	assert.Equal(t, 8, cfg.FeedWorkers)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("FEED_WORKERS", "many")
	_, err := Load()
	assert.ErrorContains(t, err, "FEED_WORKERS")

	t.Setenv("FEED_WORKERS", "4")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}
