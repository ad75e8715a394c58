// Package password hashes and verifies the local admin credential used by
// the session-login fallback.
package password

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hash returns a bcrypt hash of password at the default cost.
func Hash(password string) (string, error) {
	if err := Validate(password); err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a bcrypt hash with a plaintext password.
func Verify(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	return err == nil, err
}

// IsBcryptHash detects common bcrypt PHC prefixes.
func IsBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

// Validate applies the password policy.
// Minimal policy: length >= 8 characters.
func Validate(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password_too_short")
	}
	return nil
}
