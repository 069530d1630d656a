package tokenstore

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a process-local Store for tests and single-instance
// development servers. Expired entries are dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	// Now is the clock used for expiry; time.Now when nil.
	Now func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MemoryStore) lookup(key string, now time.Time) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !now.Before(entry.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

// Put stores value under key for ttl.
func (s *MemoryStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be > 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns the unexpired value stored under key, if any.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.lookup(key, s.now())
	if !ok {
		return "", false, nil
	}
	return entry.value, true, nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

// Claim writes key with ttl only if no unexpired entry exists.
func (s *MemoryStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, errors.New("ttl must be > 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if _, ok := s.lookup(key, now); ok {
		return false, nil
	}
	s.entries[key] = memoryEntry{value: "1", expiresAt: now.Add(ttl)}
	return true, nil
}

// Cooldown reports the time left on the cooldown mark for identity.
func (s *MemoryStore) Cooldown(_ context.Context, identity string) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	entry, ok := s.lookup(cooldownSegment+identity, now)
	if !ok {
		return 0, false, nil
	}
	return entry.expiresAt.Sub(now), true, nil
}

// SetCooldown places a cooldown mark for identity unless one already exists.
func (s *MemoryStore) SetCooldown(_ context.Context, identity string, window time.Duration) (bool, error) {
	if window <= 0 {
		return false, errors.New("cooldown window must be > 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	key := cooldownSegment + identity
	if _, ok := s.lookup(key, now); ok {
		return false, nil
	}
	s.entries[key] = memoryEntry{value: "1", expiresAt: now.Add(window)}
	return true, nil
}
