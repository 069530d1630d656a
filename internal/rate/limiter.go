package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning parameters.
type Config struct {
	// Prefix namespaces the counter keys.
	Prefix      string
	MaxRequests int
	Window      time.Duration
}

// Limiter enforces a fixed-window request budget per key using Redis
// counters. Keys are typically client IPs.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) (*Limiter, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("rate: redis client is nil")
	}
	if cfg.MaxRequests <= 0 {
		return nil, fmt.Errorf("rate: max requests must be > 0")
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rate: window must be > 0")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	return &Limiter{redis: redisClient, config: cfg}, nil
}

// Allow records one request for key. When the budget for the current window
// is spent it returns ErrRateLimited together with the time left in the
// window.
func (l *Limiter) Allow(ctx context.Context, key string) (time.Duration, error) {
	k := l.config.Prefix + ":" + key
	count, err := l.incrementWithTTL(ctx, k)
	if err != nil {
		return 0, err
	}
	if count <= int64(l.config.MaxRequests) {
		return 0, nil
	}

	ttl, err := l.redis.PTTL(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if ttl < 0 {
		ttl = l.config.Window
	}
	return ttl, ErrRateLimited
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.PExpire(ctx, key, l.config.Window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
