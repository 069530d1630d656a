package password

import (
	"errors"
	"strings"
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password must not be empty")

// ErrPasswordTooLong is returned when a password exceeds what the hash
// algorithm can encode without truncation.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// ErrUnsupportedHash is returned by Multi when no hasher recognizes an encoding.
var ErrUnsupportedHash = errors.New("unsupported password hash encoding")

// Hasher is the one-way hashing primitive used for stored credentials.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

type recognizer interface {
	Recognizes(encodedHash string) bool
}

// Recognizes reports whether encodedHash is an Argon2id PHC string.
func (a *Argon2) Recognizes(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$"+algorithmID+"$")
}

// Multi hashes with Primary and verifies with whichever hasher recognizes the
// stored encoding. It lets password history written by an older algorithm
// keep participating in reuse checks.
type Multi struct {
	Primary Hasher
	Legacy  []Hasher
}

func (m *Multi) Hash(password string) (string, error) {
	return m.Primary.Hash(password)
}

func (m *Multi) Verify(password, encodedHash string) (bool, error) {
	for _, h := range append([]Hasher{m.Primary}, m.Legacy...) {
		if r, ok := h.(recognizer); ok && r.Recognizes(encodedHash) {
			return h.Verify(password, encodedHash)
		}
	}
	return false, ErrUnsupportedHash
}
