package auth

import (
	"golang.org/x/crypto/bcrypt"

	"oportunidades/internal/pkg/errors"
)

type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.New(errors.ErrValidation, "Senha deve ter no máximo 72 bytes")
	}
	return string(hashed), nil
}

// Check returns ErrInvalidCredential when password does not match hash.
func (h *PasswordHasher) Check(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return errors.New(errors.ErrInvalidCredential, "Senha inválida")
	}
	return nil
}
