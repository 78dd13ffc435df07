// internal/auth/password.go
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Annany2002/nebula-docstore/internal/logger"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidAPIKey      = errors.New("invalid or inactive api key")
	ErrInvalidCredentials = errors.New("invalid email or password")
	errHashFailed         = errors.New("failed to hash password")
	customLog             = logger.NewLogger()
)

// HashPassword returns the bcrypt hash stored on a user record.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		customLog.Warnf("Auth: bcrypt hashing failed: %v", err)
		return "", errHashFailed
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches hash. Malformed hashes
// never match.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		customLog.Warnf("Auth: comparing password hash: %v", err)
	}
	return err == nil
}
