// Package redis holds the Redis-backed idempotency cache, request rate
// limiter and authentication attempt limiter.
package redis

import (
	"context"
	"fmt"
	"time"

	"biosecure-pay/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Msg("Redis connection established")

	return client, nil
}

// incrWithExpiry increments KEYS[1] and arms its expiry on the first hit,
// in one round trip so a crash between the two can never leave a counter
// without a TTL.
var incrWithExpiry = goredis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

func incr(ctx context.Context, client goredis.Scripter, key string, ttl time.Duration) (int64, error) {
	return incrWithExpiry.Run(ctx, client, []string{key}, ttl.Milliseconds()).Int64()
}
