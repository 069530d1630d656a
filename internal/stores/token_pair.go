package stores

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goRecover/tokenstore"
)

const (
	emailSegment = "email:"
	tokenSegment = "token:"
	claimSuffix  = ":claim"
)

// ErrEmptyToken is returned when an empty token is issued.
var ErrEmptyToken = errors.New("reset token is empty")

// TokenPair maintains the two entries behind every live reset token:
// email index -> token and token -> email.
type TokenPair struct {
	store tokenstore.Store
}

// NewTokenPair returns a TokenPair writing through store.
func NewTokenPair(store tokenstore.Store) *TokenPair {
	return &TokenPair{store: store}
}

// IdentityKey is the deterministic, non-reversible key fragment for an email.
func IdentityKey(email string) string {
	sum := sha256.Sum256([]byte(NormalizeEmail(email)))
	return hex.EncodeToString(sum[:])
}

// NormalizeEmail trims surrounding whitespace and lower-cases email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailKey(email string) string {
	return emailSegment + IdentityKey(email)
}

func tokenKey(token string) string {
	return tokenSegment + token
}

func claimKey(token string) string {
	return tokenSegment + token + claimSuffix
}

// Issue revokes any token previously issued for email and then records token.
// The reverse entry is written last so the token only resolves once both
// entries exist.
func (p *TokenPair) Issue(ctx context.Context, email, token string, ttl time.Duration) (bool, error) {
	if token == "" {
		return false, ErrEmptyToken
	}

	superseded, err := p.Revoke(ctx, email)
	if err != nil {
		return false, err
	}

	if err := p.store.Put(ctx, emailKey(email), token, ttl); err != nil {
		return superseded, err
	}
	if err := p.store.Put(ctx, tokenKey(token), email, ttl); err != nil {
		return superseded, err
	}
	return superseded, nil
}

// Revoke deletes the live token for email, if any.
func (p *TokenPair) Revoke(ctx context.Context, email string) (bool, error) {
	previous, ok, err := p.store.Get(ctx, emailKey(email))
	if err != nil {
		return false, err
	}
	if !ok || previous == "" {
		return false, nil
	}
	if err := p.store.Delete(ctx, tokenKey(previous), emailKey(email)); err != nil {
		return false, err
	}
	return true, nil
}

// LookupByToken resolves token to the email it was issued for.
func (p *TokenPair) LookupByToken(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	return p.store.Get(ctx, tokenKey(token))
}

// Claim reserves token for a single redemption attempt. Only one caller
// holds the claim until Release, Invalidate or ttl expiry.
func (p *TokenPair) Claim(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if token == "" {
		return false, nil
	}
	return p.store.Claim(ctx, claimKey(token), ttl)
}

// Release drops a claim taken by Claim so the token can be redeemed again.
func (p *TokenPair) Release(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return p.store.Delete(ctx, claimKey(token))
}

// Invalidate makes token unusable and drops its claim. The email index is
// cleared only when it still points at this token.
func (p *TokenPair) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	email, ok, err := p.store.Get(ctx, tokenKey(token))
	if err != nil {
		return err
	}
	if !ok {
		return p.store.Delete(ctx, claimKey(token))
	}

	keys := []string{tokenKey(token), claimKey(token)}
	current, ok, err := p.store.Get(ctx, emailKey(email))
	if err != nil {
		return err
	}
	if ok && subtle.ConstantTimeCompare([]byte(current), []byte(token)) == 1 {
		keys = append(keys, emailKey(email))
	}
	return p.store.Delete(ctx, keys...)
}

// Cooldown reports the remaining issuance cooldown for email.
func (p *TokenPair) Cooldown(ctx context.Context, email string) (time.Duration, bool, error) {
	return p.store.Cooldown(ctx, IdentityKey(email))
}

// MarkCooldown starts the issuance cooldown for email unless one is running.
func (p *TokenPair) MarkCooldown(ctx context.Context, email string, window time.Duration) (bool, error) {
	return p.store.SetCooldown(ctx, IdentityKey(email), window)
}
