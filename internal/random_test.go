package internal

import (
	"strings"
	"testing"
)

func TestNewResetTokenShapeAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 256)
	for i := 0; i < 256; i++ {
		token, err := NewResetToken()
		if err != nil {
			t.Fatalf("NewResetToken failed: %v", err)
		}
		if strings.Contains(token, "/") {
			t.Fatalf("token must not contain '/': %q", token)
		}
		if len(token) != 75 {
			t.Fatalf("unexpected token length %d", len(token))
		}
		if !WellFormedResetToken(token) {
			t.Fatalf("generated token rejected: %q", token)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = struct{}{}
	}
}

func TestWellFormedResetToken(t *testing.T) {
	cases := map[string]bool{
		"":                        false,
		"abc_DEF-123":             true,
		"has/slash":               false,
		"has space":               false,
		"a@b.com":                 false,
		strings.Repeat("a", 129):  false,
		strings.Repeat("a", 128):  true,
	}
	for in, want := range cases {
		if got := WellFormedResetToken(in); got != want {
			t.Fatalf("WellFormedResetToken(%q) = %v, want %v", in, got, want)
		}
	}
}

func FuzzWellFormedResetToken(f *testing.F) {
	f.Add("")
	f.Add("abc")
	f.Add("../../etc/passwd")
	f.Add(strings.Repeat("x", 200))
	f.Fuzz(func(t *testing.T, token string) {
		if WellFormedResetToken(token) && strings.ContainsAny(token, "/?#% ") {
			t.Fatalf("accepted unsafe token %q", token)
		}
	})
}
