// Package security hashes fixture credentials the same way the application stores them
package security

import (
	"golang.org/x/crypto/bcrypt"
)

// FixtureCost is the bcrypt cost used for seeded credentials
const FixtureCost = 10

// MaxPasswordBytes is the longest input bcrypt reads. Longer passwords are
// truncated to this length.
const MaxPasswordBytes = 72

// Hasher hashes and verifies passwords using bcrypt. Every Hash call draws a
// fresh salt, so the same plaintext never produces the same hash twice.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with the given bcrypt cost clamped to the
// range bcrypt accepts. A non-positive cost selects FixtureCost.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = FixtureCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a bcrypt hash of password suitable for storage
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(truncate(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare returns nil if password matches hash, otherwise an error
// (bcrypt.ErrMismatchedHashAndPassword on mismatch)
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password))
}

func truncate(password []byte) []byte {
	if len(password) > MaxPasswordBytes {
		return password[:MaxPasswordBytes]
	}
	return password
}
