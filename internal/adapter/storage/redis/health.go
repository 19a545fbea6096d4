package redis

import (
	"context"

	"biosecure-pay/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// HealthCheck implements ports.HealthChecker for Redis.
type HealthCheck struct {
	client *goredis.Client
}

// NewHealthCheck creates a Redis health checker.
func NewHealthCheck(client *goredis.Client) *HealthCheck {
	return &HealthCheck{client: client}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

func (h *HealthCheck) Name() string {
	return "redis"
}

var (
	_ ports.HealthChecker    = (*HealthCheck)(nil)
	_ ports.IdempotencyCache = (*IdempotencyCache)(nil)
	_ ports.AttemptLimiter   = (*AttemptLimiter)(nil)
)
