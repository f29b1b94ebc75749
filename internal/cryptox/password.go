// Package cryptox wraps the hashing and comparison primitives used for
// credentials and stored tokens.
package cryptox

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor for new password hashes.
const DefaultCost = bcrypt.DefaultCost

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// ComparePassword reports whether password matches hash. A malformed hash
// is reported as an error, a plain mismatch as (false, nil).
func ComparePassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt: %w", err)
	}
}

// IsHashed reports whether s is already a bcrypt hash, so it is not hashed
// a second time on save.
func IsHashed(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// ConstantTimeEqual compares two tokens without leaking the position of the
// first difference. Empty values never match.
func ConstantTimeEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
