package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// AttemptLimiter implements ports.AttemptLimiter. The window starts at the
// first attempt for a key and is not extended by later ones.
type AttemptLimiter struct {
	client *goredis.Client
	prefix string
}

// NewAttemptLimiter creates a Redis-backed attempt limiter.
func NewAttemptLimiter(client *goredis.Client) *AttemptLimiter {
	return &AttemptLimiter{client: client, prefix: "auth_attempts:"}
}

// Allow records an attempt and reports whether it is within limit.
func (l *AttemptLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := incr(ctx, l.client, l.prefix+key, window)
	if err != nil {
		return false, fmt.Errorf("redis attempt limiter: %w", err)
	}
	return count <= int64(limit), nil
}
