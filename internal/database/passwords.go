package database

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for new password hashes
var PasswordCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash stored in place of the password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// checkPassword compares a supplied password with the stored value.
// Stored values that are not bcrypt hashes were written in plaintext by an
// earlier deployment and are compared in constant time.
func checkPassword(stored, supplied string) bool {
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
