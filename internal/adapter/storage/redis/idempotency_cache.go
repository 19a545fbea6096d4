package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// IdempotencyCache implements ports.IdempotencyCache. It maps a client's
// Idempotency-Key to the id of the transaction that key initiated, so a
// retried initiate replays that transaction instead of opening a second
// payment with the provider.
type IdempotencyCache struct {
	client goredis.Cmdable
	prefix string
}

// NewIdempotencyCache creates the initiate replay cache on client.
func NewIdempotencyCache(client goredis.Cmdable) *IdempotencyCache {
	return &IdempotencyCache{client: client, prefix: "idempotency:"}
}

// Get returns the transaction id recorded for key. An unknown or expired
// key is nil, nil and the caller initiates afresh.
func (c *IdempotencyCache) Get(ctx context.Context, key string) ([]byte, error) {
	txID, err := c.client.Get(ctx, c.prefix+key).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("redis idempotency get %q: %w", key, err)
	}
	return txID, nil
}

// Set records txID for key until ttl passes. An existing mapping is kept:
// when two first uses of a key race, later replays all resolve to the
// transaction that was recorded first.
func (c *IdempotencyCache) Set(ctx context.Context, key string, txID []byte, ttl time.Duration) error {
	if err := c.client.SetNX(ctx, c.prefix+key, txID, ttl).Err(); err != nil {
		return fmt.Errorf("redis idempotency set %q: %w", key, err)
	}
	return nil
}
