package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironbridge-it/website-api/pkg/logging"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisWindowAllowsFiveThenDenies(t *testing.T) {
	_, client := setupTestRedis(t)
	limiter := NewRedisWindow(client, "ratelimit:contact", DefaultLimit, DefaultWindow, logging.Discard())
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		assert.True(t, limiter.Allow(ctx, "198.51.100.4"), "submission %d", i)
	}
	assert.False(t, limiter.Allow(ctx, "198.51.100.4"))
	assert.True(t, limiter.Allow(ctx, "198.51.100.5"), "other clients keep their own window")
}

func TestRedisWindowSetsExpiryOnFirstHit(t *testing.T) {
	mr, client := setupTestRedis(t)
	limiter := NewRedisWindow(client, "ratelimit:contact:", DefaultLimit, DefaultWindow, logging.Discard())

	require.True(t, limiter.Allow(context.Background(), "client"))
	assert.Equal(t, DefaultWindow, mr.TTL("ratelimit:contact:client"))
}

func TestRedisWindowResetsAfterExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	limiter := NewRedisWindow(client, "", 2, time.Minute, logging.Discard())
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "client"))
	require.True(t, limiter.Allow(ctx, "client"))
	require.False(t, limiter.Allow(ctx, "client"))

	mr.FastForward(time.Minute)
	assert.True(t, limiter.Allow(ctx, "client"))
}

func TestRedisWindowConcurrentCallsNeverExceedLimit(t *testing.T) {
	_, client := setupTestRedis(t)
	limiter := NewRedisWindow(client, "", DefaultLimit, DefaultWindow, logging.Discard())
	ctx := context.Background()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow(ctx, "shared") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(DefaultLimit), allowed.Load())
}

func TestRedisWindowFailsOpen(t *testing.T) {
	mr, client := setupTestRedis(t)
	limiter := NewRedisWindow(client, "", 1, time.Minute, logging.Discard())
	mr.Close()

	assert.True(t, limiter.Allow(context.Background(), "client"))
	assert.True(t, limiter.Allow(context.Background(), "client"))
}
