package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterCooldown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := New(rdb)
	ctx := context.Background()
	user := uuid.New()

	ok, err := l.Allow(ctx, user, "comment", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, user, "comment", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := l.Remaining(ctx, user, "comment")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	mr.FastForward(11 * time.Second)
	ok, err = l.Allow(ctx, user, "comment", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Clear(ctx, user, "comment"))
	ok, err = l.Allow(ctx, user, "comment", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiterWithoutRedis(t *testing.T) {
	ok, err := New(nil).Allow(context.Background(), uuid.New(), "comment", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
