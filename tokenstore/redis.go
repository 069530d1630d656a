package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of a go-redis client.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore returns a Redis-backed store. An empty prefix defaults to "pwr".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "pwr"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(k string) string {
	return prefixed(s.prefix, k)
}

// Put stores value under key for ttl.
func (s *RedisStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be > 0")
	}
	if err := s.redis.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns the value stored under key, if any.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.redis.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, true, nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.key(k))
	}
	if err := s.redis.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Claim writes key with ttl only if it does not exist yet.
func (s *RedisStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, errors.New("ttl must be > 0")
	}
	acquired, err := s.redis.SetNX(ctx, s.key(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return acquired, nil
}

// Cooldown reports the time left on the cooldown mark for identity.
func (s *RedisStore) Cooldown(ctx context.Context, identity string) (time.Duration, bool, error) {
	ttl, err := s.redis.PTTL(ctx, s.key(cooldownSegment+identity)).Result()
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch {
	case ttl == -2:
		return 0, false, nil
	case ttl < 0:
		// Present without expiry; only reachable if written outside this store.
		return 0, true, nil
	default:
		return ttl, true, nil
	}
}

// SetCooldown places a cooldown mark for identity unless one already exists.
func (s *RedisStore) SetCooldown(ctx context.Context, identity string, window time.Duration) (bool, error) {
	if window <= 0 {
		return false, errors.New("cooldown window must be > 0")
	}
	acquired, err := s.redis.SetNX(ctx, s.key(cooldownSegment+identity), "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return acquired, nil
}
