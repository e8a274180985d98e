// Package auth provides password hashing and the bearer-token session
// store backing every authenticated request.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt rejects inputs longer than 72 bytes.
const maxPasswordLength = 72

// HashPassword creates a bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	if len(password) > maxPasswordLength {
		return "", errors.New("password too long (max 72 bytes)")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword returns nil when password matches the stored hash.
func VerifyPassword(hashedPassword, password string) error {
	if hashedPassword == "" || password == "" {
		return errors.New("password cannot be empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePasswordStrength rejects passwords outside the accepted 8..72
// byte range before they reach the hasher.
func ValidatePasswordStrength(password string) error {
	switch {
	case password == "":
		return errors.New("password cannot be empty")
	case len(password) < 8:
		return errors.New("password must be at least 8 characters long")
	case len(password) > maxPasswordLength:
		return errors.New("password is too long (maximum 72 bytes)")
	}
	return nil
}
