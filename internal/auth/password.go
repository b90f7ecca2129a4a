package auth

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"ecommerce-backend/internal/apperror"
)

const (
	MinPasswordLength = 7
	passwordSymbols   = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`
)

// Hasher hashes and verifies secrets with bcrypt.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", apperror.Internal("could not hash secret", err)
	}
	return string(digest), nil
}

func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// ValidatePassword checks the acceptance policy and reports the first rule
// that fails, in the order length, uppercase, symbol, digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperror.Validation("password", "Password must be at least 7 characters long.")
	}
	if !containsRange(password, 'A', 'Z') {
		return apperror.Validation("password", "Password must contain at least one uppercase letter.")
	}
	if !strings.ContainsAny(password, passwordSymbols) {
		return apperror.Validation("password", "Password must contain at least one special character.")
	}
	if !containsRange(password, '0', '9') {
		return apperror.Validation("password", "Password must contain at least one number.")
	}
	return nil
}

func containsRange(s string, lo, hi rune) bool {
	for _, r := range s {
		if r >= lo && r <= hi {
			return true
		}
	}
	return false
}
