package password

import (
	"errors"
	"strings"
	"testing"
)

func fastArgon2(t *testing.T) *Argon2 {
	t.Helper()
	h, err := NewArgon2(Config{Memory: MinMemoryKB, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}
	return h
}

func TestArgon2HashAndVerify(t *testing.T) {
	h := fastArgon2(t)

	hash, err := h.Hash("Sh0rt!pw")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding: %s", hash)
	}

	if ok, err := h.Verify("Sh0rt!pw", hash); err != nil || !ok {
		t.Fatalf("Verify correct = %v, %v", ok, err)
	}
	if ok, err := h.Verify("Sh0rt!pX", hash); err != nil || ok {
		t.Fatalf("Verify wrong = %v, %v", ok, err)
	}
}

func TestArgon2SaltsDiffer(t *testing.T) {
	h := fastArgon2(t)
	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestArgon2VerifiesWithStoredParameters(t *testing.T) {
	old := fastArgon2(t)
	hash, err := old.Hash("history-entry")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	current, err := NewArgon2(Config{Memory: 16 * 1024, Time: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}
	if ok, err := current.Verify("history-entry", hash); err != nil || !ok {
		t.Fatalf("hash from older parameters must verify: %v, %v", ok, err)
	}
}

func TestArgon2RejectsMalformed(t *testing.T) {
	h := fastArgon2(t)
	valid, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	cases := map[string]string{
		"not phc":       "not-a-phc-hash",
		"wrong alg":     strings.Replace(valid, "$argon2id$", "$argon2i$", 1),
		"wrong version": strings.Replace(valid, "$v=19$", "$v=18$", 1),
		"weak memory":   strings.Replace(valid, "m=8192", "m=1024", 1),
		"extra param":   strings.Replace(valid, "p=1$", "p=1,x=2$", 1),
		"bad salt":      strings.Join(append(strings.Split(valid, "$")[:4], "!!", "AAAA"), "$"),
	}
	for name, encoded := range cases {
		if _, err := h.Verify("pw", encoded); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("%s: expected ErrMalformedHash, got %v", name, err)
		}
	}
}

func TestArgon2ConfigFloors(t *testing.T) {
	bad := []Config{
		{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		{Memory: MinMemoryKB, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		{Memory: MinMemoryKB, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 32},
		{Memory: MinMemoryKB, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 32},
		{Memory: MinMemoryKB, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8},
	}
	for i, cfg := range bad {
		if _, err := NewArgon2(cfg); err == nil {
			t.Fatalf("case %d: expected config error", i)
		}
	}
}

func TestArgon2HashEmptyPassword(t *testing.T) {
	if _, err := fastArgon2(t).Hash(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestArgon2Recognizes(t *testing.T) {
	h := fastArgon2(t)
	if !h.Recognizes("$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA") {
		t.Fatal("expected argon2id PHC string to be recognized")
	}
	if h.Recognizes("$2a$10$abcdefghijklmnopqrstuv") {
		t.Fatal("bcrypt hash must not be recognized as argon2id")
	}
}
