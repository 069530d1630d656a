package stores

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/goRecover/tokenstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestPair(t *testing.T) (*miniredis.Miniredis, *TokenPair) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewTokenPair(tokenstore.NewRedisStore(client, "pwr"))
}

func TestTokenPairIssueAndLookup(t *testing.T) {
	mr, pair := newTestPair(t)
	ctx := context.Background()

	superseded, err := pair.Issue(ctx, "a@b.com", "tok-1", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if superseded {
		t.Fatal("first issue must not report supersession")
	}

	email, ok, err := pair.LookupByToken(ctx, "tok-1")
	if err != nil || !ok || email != "a@b.com" {
		t.Fatalf("LookupByToken = %q,%v,%v", email, ok, err)
	}

	if !mr.Exists("pwr:email:" + IdentityKey("a@b.com")) {
		t.Fatal("expected email index entry")
	}
	for _, k := range mr.Keys() {
		if k == "pwr:email:a@b.com" {
			t.Fatal("raw email must not appear in keys")
		}
	}
}

func TestTokenPairSupersession(t *testing.T) {
	_, pair := newTestPair(t)
	ctx := context.Background()

	if _, err := pair.Issue(ctx, "a@b.com", "tok-old", 10*time.Minute); err != nil {
		t.Fatalf("Issue old failed: %v", err)
	}
	superseded, err := pair.Issue(ctx, "A@B.com ", "tok-new", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue new failed: %v", err)
	}
	if !superseded {
		t.Fatal("expected the earlier token to be superseded")
	}

	if _, ok, _ := pair.LookupByToken(ctx, "tok-old"); ok {
		t.Fatal("superseded token must no longer resolve")
	}
	if _, ok, _ := pair.LookupByToken(ctx, "tok-new"); !ok {
		t.Fatal("new token must resolve")
	}
}

func TestTokenPairExpiry(t *testing.T) {
	mr, pair := newTestPair(t)
	ctx := context.Background()

	if _, err := pair.Issue(ctx, "a@b.com", "tok", 10*time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	mr.FastForward(10*time.Minute + time.Second)

	if _, ok, _ := pair.LookupByToken(ctx, "tok"); ok {
		t.Fatal("expired token must not resolve")
	}
}

func TestTokenPairInvalidate(t *testing.T) {
	mr, pair := newTestPair(t)
	ctx := context.Background()

	if _, err := pair.Issue(ctx, "a@b.com", "tok", 10*time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := pair.Invalidate(ctx, "tok"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, ok, _ := pair.LookupByToken(ctx, "tok"); ok {
		t.Fatal("invalidated token must not resolve")
	}
	if mr.Exists("pwr:email:" + IdentityKey("a@b.com")) {
		t.Fatal("email index pointing at the invalidated token must be cleared")
	}
	if err := pair.Invalidate(ctx, "tok"); err != nil {
		t.Fatalf("second Invalidate must be a no-op, got %v", err)
	}
	if err := pair.Invalidate(ctx, ""); err != nil {
		t.Fatalf("empty Invalidate must be a no-op, got %v", err)
	}
}

func TestTokenPairInvalidateKeepsNewerIndex(t *testing.T) {
	mem := tokenstore.NewMemoryStore()
	pair := NewTokenPair(mem)
	ctx := context.Background()

	if err := mem.Put(ctx, tokenKey("stale"), "a@b.com", time.Minute); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := mem.Put(ctx, emailKey("a@b.com"), "fresh", time.Minute); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := pair.Invalidate(ctx, "stale"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if v, ok, _ := mem.Get(ctx, emailKey("a@b.com")); !ok || v != "fresh" {
		t.Fatalf("index for a newer token must survive, got %q,%v", v, ok)
	}
}

func TestTokenPairClaimRelease(t *testing.T) {
	mr, pair := newTestPair(t)
	ctx := context.Background()

	if _, err := pair.Issue(ctx, "a@b.com", "tok", 10*time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	won, err := pair.Claim(ctx, "tok", time.Minute)
	if err != nil || !won {
		t.Fatalf("first Claim = %v,%v", won, err)
	}
	if !mr.Exists("pwr:token:tok:claim") {
		t.Fatal("expected claim entry next to the token entry")
	}
	won, err = pair.Claim(ctx, "tok", time.Minute)
	if err != nil || won {
		t.Fatalf("second Claim must lose, got %v,%v", won, err)
	}

	if err := pair.Release(ctx, "tok"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	won, err = pair.Claim(ctx, "tok", time.Minute)
	if err != nil || !won {
		t.Fatalf("Claim after Release = %v,%v", won, err)
	}

	if err := pair.Invalidate(ctx, "tok"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if mr.Exists("pwr:token:tok:claim") {
		t.Fatal("Invalidate must drop the claim")
	}
	if won, _ := pair.Claim(ctx, "", time.Minute); won {
		t.Fatal("empty token must never be claimed")
	}
}

func TestTokenPairCooldown(t *testing.T) {
	_, pair := newTestPair(t)
	ctx := context.Background()

	acquired, err := pair.MarkCooldown(ctx, "a@b.com", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("MarkCooldown = %v,%v", acquired, err)
	}
	remaining, ok, err := pair.Cooldown(ctx, "A@b.com")
	if err != nil || !ok || remaining <= 0 {
		t.Fatalf("Cooldown = %v,%v,%v", remaining, ok, err)
	}
}

func TestTokenPairRejectsEmptyToken(t *testing.T) {
	_, pair := newTestPair(t)
	if _, err := pair.Issue(context.Background(), "a@b.com", "", time.Minute); err != ErrEmptyToken {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}
