package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisResendLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisResendLimiter(client, 10*time.Minute, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "jane@example.org")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "jane@example.org")
	require.NoError(t, err)
	assert.False(t, ok)

	// other accounts have their own window
	ok, err = l.Allow(ctx, "john@example.org")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 10*time.Minute, mr.TTL(resendKey("jane@example.org")))
	mr.FastForward(10 * time.Minute)

	ok, err = l.Allow(ctx, "jane@example.org")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisResendLimiter_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	_, err := NewRedisResendLimiter(client, time.Minute, 1).Allow(context.Background(), "jane@example.org")
	assert.Error(t, err)
}

func TestNoopResendLimiter(t *testing.T) {
	ok, err := NewNoopResendLimiter().Allow(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisResendLimiter_RepairsCounterWithoutTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	key := resendKey("jane@example.org")
	require.NoError(t, mr.Set(key, "7"))
	require.Zero(t, mr.TTL(key))

	ok, err := NewRedisResendLimiter(client, 10*time.Minute, 5).Allow(context.Background(), "jane@example.org")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 10*time.Minute, mr.TTL(key))

	mr.FastForward(10 * time.Minute)
	ok, err = NewRedisResendLimiter(client, 10*time.Minute, 5).Allow(context.Background(), "jane@example.org")
	require.NoError(t, err)
	assert.True(t, ok)
}
