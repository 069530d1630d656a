package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const resetSecretSize = 32

// MaxResetTokenLength bounds accepted token input. Generated tokens are 75 characters.
const MaxResetTokenLength = 128

// NewResetToken returns an unguessable, URL-path-safe reset token: a random
// UUID without hyphens followed by 32 random bytes in unpadded base64url.
// Nothing about the recipient is encoded in it.
func NewResetToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	var secret [resetSecretSize]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return "", err
	}

	token := strings.ReplaceAll(id.String(), "-", "") + base64.RawURLEncoding.EncodeToString(secret[:])
	token = strings.ReplaceAll(token, "/", "")
	if token == "" {
		return "", errors.New("empty reset token")
	}
	return token, nil
}

// WellFormedResetToken rejects input that could not have come from NewResetToken.
func WellFormedResetToken(token string) bool {
	if token == "" || len(token) > MaxResetTokenLength {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
