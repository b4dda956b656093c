package auth

import (
	"fmt"
	"strings"

	"techhub/logger"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 6

// HashPassword generates a bcrypt hash for the given password using the cost from config.
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		logger.Log.Errorf("Failed to hash password: %v", err)
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plain text password with a stored bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// isBcryptHash reports whether a stored value looks like a bcrypt hash ($2a$, $2b$, $2y$).
func isBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2")
}

// verifyPassword checks plain against the stored value. A stored value that is not
// a bcrypt hash is compared verbatim only when allowPlaintext is set.
func verifyPassword(plain, stored string, allowPlaintext bool) bool {
	if stored == "" {
		return false
	}
	if !isBcryptHash(stored) {
		if !allowPlaintext {
			logger.Log.Warn("Stored password is not a bcrypt hash and plaintext passwords are disabled")
			return false
		}
		return plain == stored
	}
	return CheckPasswordHash(plain, stored)
}
