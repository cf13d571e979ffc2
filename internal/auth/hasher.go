package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies account passwords with bcrypt. Each Hash call
// generates a fresh random salt which bcrypt embeds in the output, so Verify
// is self-contained. bcrypt's compare is constant-time.
type Hasher struct {
	cost int
}

// HasherOption configures a Hasher.
type HasherOption func(*Hasher)

// WithCost sets the bcrypt work factor. Values outside bcrypt's valid
// range are ignored and the default is kept.
func WithCost(cost int) HasherOption {
	return func(h *Hasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewHasher constructs a Hasher with bcrypt's default cost unless overridden.
func NewHasher(opts ...HasherOption) *Hasher {
	h := &Hasher{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash returns the bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches the stored hash.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
