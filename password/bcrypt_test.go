package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndVerify(t *testing.T) {
	hasher, err := NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}

	hash, err := hasher.Hash("Sh0rt!pw")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !hasher.Recognizes(hash) {
		t.Fatalf("expected own hash to be recognized: %s", hash)
	}

	ok, err := hasher.Verify("Sh0rt!pw", hash)
	if err != nil || !ok {
		t.Fatalf("Verify correct = %v, %v", ok, err)
	}
	ok, err = hasher.Verify("wrong", hash)
	if err != nil || ok {
		t.Fatalf("Verify wrong = %v, %v", ok, err)
	}
}

func TestBcryptRejectsBadCost(t *testing.T) {
	if _, err := NewBcrypt(bcrypt.MaxCost + 1); err == nil {
		t.Fatal("expected out-of-range cost to fail")
	}
	h, err := NewBcrypt(0)
	if err != nil || h.cost != bcrypt.DefaultCost {
		t.Fatalf("zero cost must select default, got %v %v", h, err)
	}
}

func TestBcryptEmptyPassword(t *testing.T) {
	h, _ := NewBcrypt(bcrypt.MinCost)
	if _, err := h.Hash(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestBcryptRejectsOverlongPassword(t *testing.T) {
	h, _ := NewBcrypt(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("a", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("72-byte password must hash, got %v", err)
	}
}

func TestMultiVerifiesLegacyEncodings(t *testing.T) {
	argon := fastArgon2(t)
	legacy, err := NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}
	multi := &Multi{Primary: argon, Legacy: []Hasher{legacy}}

	oldHash, err := legacy.Hash("old-secret")
	if err != nil {
		t.Fatalf("bcrypt Hash error: %v", err)
	}
	ok, err := multi.Verify("old-secret", oldHash)
	if err != nil || !ok {
		t.Fatalf("expected legacy hash to verify, ok=%v err=%v", ok, err)
	}

	newHash, err := multi.Hash("new-secret")
	if err != nil {
		t.Fatalf("Multi Hash error: %v", err)
	}
	if !argon.Recognizes(newHash) {
		t.Fatalf("expected primary algorithm output, got %s", newHash)
	}
	ok, err = multi.Verify("new-secret", newHash)
	if err != nil || !ok {
		t.Fatalf("expected primary hash to verify, ok=%v err=%v", ok, err)
	}

	if _, err := multi.Verify("x", "plain-text"); !errors.Is(err, ErrUnsupportedHash) {
		t.Fatalf("expected ErrUnsupportedHash, got %v", err)
	}
}
