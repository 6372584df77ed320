package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns plaintext passwords into storable hashes and back.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt hasher; cost <= 0 selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), err
}

func (h *bcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

