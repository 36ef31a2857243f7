package helpers

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt with a fixed cost chosen at startup. bcrypt salts every
// hash, so hashing the same password twice yields different strings that both
// verify, and CompareHashAndPassword runs in constant time with respect to
// the mismatch position.
type Hasher struct {
	cost int
}

// NewHasher clamps the cost into bcrypt's supported range and falls back to
// the default cost (10) when the value is out of bounds or zero.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash hashes the plain text password using bcrypt.
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches the stored bcrypt hash. A malformed
// hash is treated as a failed verification, never an error.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
