// Package password hashes and verifies account passwords. The interface
// keeps the services independent of the concrete algorithm; the shipped
// implementation is bcrypt.
package password

import "golang.org/x/crypto/bcrypt"

// DefaultCost is the bcrypt cost factor the product has always used.
const DefaultCost = 10

// Hasher hashes plaintext passwords and verifies candidates against a
// stored digest.
type Hasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(plaintext string) (string, error)

	// Check reports whether plaintext matches the stored digest. It never
	// returns an error on mismatch, only false.
	Check(plaintext, digest string) bool
}

// BcryptHasher implements Hasher with golang.org/x/crypto/bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost factor; values
// outside bcrypt's supported range fall back to DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Check(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
