package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_Allow(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewRateLimitStore(client)
	ctx := context.Background()

	t.Run("allows requests within limit", func(t *testing.T) {
		for i := int64(1); i <= 3; i++ {
			result, err := store.Allow(ctx, "10.0.0.1:transactions", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, result.Allowed, "request %d should be allowed", i)
			assert.Equal(t, int64(3), result.Limit)
			assert.Equal(t, 3-i, result.Remaining)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		result, err := store.Allow(ctx, "10.0.0.1:transactions", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, int64(0), result.Remaining)
	})

	t.Run("different keys are independent", func(t *testing.T) {
		result, err := store.Allow(ctx, "10.0.0.2:transactions", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, int64(4), result.Remaining)
	})

	t.Run("reset after window expires", func(t *testing.T) {
		key := "10.0.0.3:auth_login"
		_, err := store.Allow(ctx, key, 1, time.Minute)
		require.NoError(t, err)

		result, err := store.Allow(ctx, key, 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, result.Allowed)

		mr.FastForward(61 * time.Second)

		result, err = store.Allow(ctx, key, 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})
}

func TestRateLimitStore_WindowBoundaries(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewRateLimitStore(client)
	now := time.Unix(1_800_000_030, 0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	result, err := store.Allow(ctx, "user-1:auth_register", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1_800_000_060), result.ResetAt)

	key := "ratelimit:user-1:auth_register:30000000"
	require.True(t, mr.Exists(key))
	assert.Equal(t, 61*time.Second, mr.TTL(key))

	now = now.Add(time.Minute)
	result, err = store.Allow(ctx, "user-1:auth_register", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "next window starts a fresh counter")
}

func TestAttemptLimiter_Allow(t *testing.T) {
	mr, client := newTestClient(t)
	limiter := NewAttemptLimiter(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "user:tx", 3, 15*time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}

	ok, err := limiter.Allow(ctx, "user:tx", 3, 15*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 15*time.Minute, mr.TTL("auth_attempts:user:tx"), "later attempts do not extend the window")

	ok, err = limiter.Allow(ctx, "user:other-tx", 3, 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(16 * time.Minute)
	ok, err = limiter.Allow(ctx, "user:tx", 3, 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAttemptLimiter_Unavailable(t *testing.T) {
	mr, client := newTestClient(t)
	limiter := NewAttemptLimiter(client)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "user:tx", 3, time.Minute)
	assert.Error(t, err)
}
