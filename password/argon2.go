package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const algorithmID = "argon2id"

// Floors accepted both when configuring a hasher and when reading a stored
// hash. Stored hashes below them are treated as malformed.
const (
	MinMemoryKB   uint32 = 8 * 1024
	MinSaltLength uint32 = 16
	MinKeyLength  uint32 = 16
)

// ErrMalformedHash is returned when a stored value is not a usable Argon2id
// PHC string.
var ErrMalformedHash = errors.New("malformed argon2id hash")

// Config holds Argon2id cost parameters.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func (c Config) validate() error {
	switch {
	case c.Memory < MinMemoryKB:
		return fmt.Errorf("argon2 memory must be >= %d KiB", MinMemoryKB)
	case c.Time < 1:
		return errors.New("argon2 time must be >= 1")
	case c.Parallelism < 1:
		return errors.New("argon2 parallelism must be >= 1")
	case c.SaltLength < MinSaltLength:
		return fmt.Errorf("argon2 salt length must be >= %d", MinSaltLength)
	case c.KeyLength < MinKeyLength:
		return fmt.Errorf("argon2 key length must be >= %d", MinKeyLength)
	}
	return nil
}

// Argon2 hashes passwords with Argon2id and encodes them in PHC format.
type Argon2 struct {
	config Config
}

// NewArgon2 validates cfg against the minimum cost parameters.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Argon2{config: cfg}, nil
}

// Hash returns a PHC-encoded Argon2id hash of password with a fresh salt.
// Length rules are not applied here.
func (a *Argon2) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, a.config.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	stored := argon2Hash{
		params: a.config,
		salt:   salt,
		key:    argon2.IDKey([]byte(password), salt, a.config.Time, a.config.Memory, a.config.Parallelism, a.config.KeyLength),
	}
	return stored.String(), nil
}

// Verify compares password with encodedHash in constant time, using the
// parameters recorded in the hash rather than the receiver's.
func (a *Argon2) Verify(password string, encodedHash string) (bool, error) {
	stored, err := decodeArgon2(encodedHash)
	if err != nil {
		return false, err
	}

	p := stored.params
	key := argon2.IDKey([]byte(password), stored.salt, p.Time, p.Memory, p.Parallelism, uint32(len(stored.key)))
	return subtle.ConstantTimeCompare(key, stored.key) == 1, nil
}

// argon2Hash is a decoded PHC string.
type argon2Hash struct {
	params Config
	salt   []byte
	key    []byte
}

func (h argon2Hash) String() string {
	b64 := base64.StdEncoding
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID, argon2.Version,
		h.params.Memory, h.params.Time, h.params.Parallelism,
		b64.EncodeToString(h.salt), b64.EncodeToString(h.key))
}

// decodeArgon2 parses $argon2id$v=19$m=..,t=..,p=..$salt$key.
func decodeArgon2(encoded string) (argon2Hash, error) {
	var out argon2Hash

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != algorithmID {
		return out, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return out, fmt.Errorf("%w: version", ErrMalformedHash)
	}
	if version != argon2.Version {
		return out, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	p := &out.params
	n, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism)
	if err != nil || n != 3 || fmt.Sprintf("m=%d,t=%d,p=%d", p.Memory, p.Time, p.Parallelism) != fields[3] {
		return out, fmt.Errorf("%w: parameters", ErrMalformedHash)
	}
	if p.Memory < MinMemoryKB || p.Time < 1 || p.Parallelism < 1 {
		return out, fmt.Errorf("%w: parameters below minimum", ErrMalformedHash)
	}

	if out.salt, err = base64.StdEncoding.DecodeString(fields[4]); err != nil || len(out.salt) < int(MinSaltLength) {
		return out, fmt.Errorf("%w: salt", ErrMalformedHash)
	}
	if out.key, err = base64.StdEncoding.DecodeString(fields[5]); err != nil || len(out.key) == 0 {
		return out, fmt.Errorf("%w: key", ErrMalformedHash)
	}
	p.SaltLength = uint32(len(out.salt))
	p.KeyLength = uint32(len(out.key))
	return out, nil
}
