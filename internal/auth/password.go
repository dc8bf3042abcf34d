// Package auth provides password hashing and login-attempt throttling
// for hobbsd.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
)

// HashPassword bcrypt-hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", hobbserrors.Io("hash password", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored bcrypt
// hash. Comparison happens outside any caller-held lock since bcrypt is
// deliberately CPU-intensive.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
