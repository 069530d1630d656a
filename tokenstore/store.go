package tokenstore

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps every backend failure reported by a Store.
var ErrUnavailable = errors.New("token store unavailable")

// Store is the TTL-keyed key/value contract used for reset tokens and
// issuance cooldowns.
//
// A key written with TTL t is unreadable after t even if it is never deleted.
// Deleting an absent key is a no-op. Claim and SetCooldown are atomic
// set-if-absent writes and report false when the key already exists.
type Store interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, keys ...string) error
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Cooldown(ctx context.Context, identity string) (time.Duration, bool, error)
	SetCooldown(ctx context.Context, identity string, window time.Duration) (bool, error)
}

const cooldownSegment = "cooldown:"

func prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
