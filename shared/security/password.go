package security

import (
	"fmt"

	"github.com/matthewhartstonge/argon2"
)

// HashPassword hashes a plaintext password with argon2id. The PHC-encoded
// result embeds a per-call random salt, so hashing the same password twice
// yields different digests that both verify.
func HashPassword(password string) (string, error) {
	cfg := argon2.DefaultConfig()

	encoded, err := cfg.HashEncoded([]byte(password))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(encoded), nil
}

// VerifyPassword reports whether password matches the PHC-encoded digest.
// The comparison is constant-time. Any mismatch, including a malformed
// digest, reports false rather than an error so callers can treat the result
// as a plain credential check.
func VerifyPassword(password, encoded string) bool {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encoded))
	if err != nil {
		return false
	}

	return ok
}
