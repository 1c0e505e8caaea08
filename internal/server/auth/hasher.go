package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher is the opaque hash/compare capability used for credentials.
type PasswordHasher interface {
	Hash(pw []byte) ([]byte, error)
	Compare(hash, pw []byte) error
}

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(pw []byte) ([]byte, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword(pw, cost)
}

func (BcryptHasher) Compare(hash, pw []byte) error {
	return bcrypt.CompareHashAndPassword(hash, pw)
}
