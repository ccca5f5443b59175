// Package service declares the ports the usecases depend on: credential hashing, access
// tokens, artifact storage and state-change publishing.
package service

import "marketplace/internal/errors"

// MaxPasswordBytes is the longest password, in bytes, a PasswordHasher accepts.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for passwords over MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher turns registration passwords into Account.PasswordHash values and
// verifies login attempts against them.
type PasswordHasher interface {
	// Hash returns a salted one-way hash, or ErrPasswordTooLong.
	Hash(password string) (string, error)

	// Check reports whether password matches hash. A malformed hash never matches.
	Check(password, hash string) bool
}
