package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt digest of plaintext at the given cost.
// Cost is clamped to the bcrypt range; tests pass bcrypt.MinCost to stay fast.
func HashPassword(plaintext string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyDigest reports whether candidate matches digest. A nil or empty
// digest never matches; comparison failures degrade to false, never to an
// error, so a broken digest cannot open an authentication bypass.
func VerifyDigest(digest *string, candidate string) bool {
	if digest == nil || *digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*digest), []byte(candidate)) == nil
}
