package services

import (
	"unicode"

	"bizgate/internal/autherrors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is the credential-store contract: salted, slow, timing-safe.
type PasswordHasher interface {
	Derive(password string) (string, error)
	Verify(password, storedHash string) bool
}

type bcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Derive(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *bcryptHasher) Verify(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

// Eight characters is the floor; configuration can only raise it.
const minPasswordLength = 8

// ValidatePasswordPolicy enforces the minimum password requirements: at least
// minLength characters with an upper-case letter, a lower-case letter, and a
// digit.
func ValidatePasswordPolicy(password string, minLength int) error {
	if minLength < minPasswordLength {
		minLength = minPasswordLength
	}
	if len(password) < minLength {
		return autherrors.ErrPasswordPolicyViolation
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return autherrors.ErrPasswordPolicyViolation
	}
	return nil
}
