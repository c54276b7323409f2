// Package cryptox implements one-way credential hashing with argon2id.
//
// Encoded hashes use the PHC string format, so every stored record carries
// its own algorithm, version, cost parameters and salt:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<digest>
//
// Salt and digest are unpadded standard base64. Neither the plaintext nor the
// encoded hash is ever logged by this package.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/chatserver/internal/common"
	"golang.org/x/crypto/argon2"
)

const algorithmID = "argon2id"

// Params are the argon2id work factors.
type Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams match the argon2 reference defaults (19 MiB, 2 passes, 1 lane).
var DefaultParams = Params{
	Memory:  19 * 1024,
	Time:    2,
	Threads: 1,
	SaltLen: 16,
	KeyLen:  32,
}

// upper bounds accepted when parsing a stored record.
const (
	maxMemory  = 4 * 1024 * 1024
	maxTime    = 64
	maxKeyLen  = 1024
	minSaltLen = 8
)

// Hasher hashes and verifies passwords with a fixed parameter set.
// The zero value is not usable; use NewHasher.
type Hasher struct {
	params Params
}

func NewHasher(p Params) *Hasher {
	return &Hasher{params: p}
}

var defaultHasher = NewHasher(DefaultParams)

// HashPassword hashes with DefaultParams.
func HashPassword(password []byte) (string, error) {
	return defaultHasher.Hash(password)
}

// VerifyPassword checks password against an encoded record.
func VerifyPassword(password []byte, encoded string) (bool, error) {
	return defaultHasher.Verify(password, encoded)
}

// Hash derives a digest under a fresh random salt and returns the PHC string.
func (h *Hasher) Hash(password []byte) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrHashing, err)
	}

	digest := argon2.IDKey(password, salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify recomputes the digest using the parameters embedded in encoded.
// A wrong password yields (false, nil); an unparsable record yields
// common.ErrCorruptCredentialRecord. The hasher's own params are not used.
func (h *Hasher) Verify(password []byte, encoded string) (bool, error) {
	p, salt, digest, err := decode(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, uint32(len(digest)))

	return subtle.ConstantTimeCompare(candidate, digest) == 1, nil
}

func decode(encoded string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return p, nil, nil, corrupt("unexpected layout")
	}

	var version int
	// Sscanf stops at the last verb, so the segment must also round-trip.
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version ||
		fmt.Sprintf("v=%d", version) != parts[2] {
		return p, nil, nil, corrupt("unsupported version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil ||
		fmt.Sprintf("m=%d,t=%d,p=%d", p.Memory, p.Time, p.Threads) != parts[3] {
		return p, nil, nil, corrupt("bad parameters")
	}
	if p.Memory == 0 || p.Memory > maxMemory || p.Time == 0 || p.Time > maxTime || p.Threads == 0 {
		return p, nil, nil, corrupt("parameters out of range")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < minSaltLen {
		return p, nil, nil, corrupt("bad salt")
	}

	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 || len(digest) > maxKeyLen {
		return p, nil, nil, corrupt("bad digest")
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(digest))
	return p, salt, digest, nil
}

func corrupt(reason string) error {
	return fmt.Errorf("%w: %s", common.ErrCorruptCredentialRecord, reason)
}
