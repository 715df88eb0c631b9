package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of the input string
func Hash(input string) string {
	return HashBytes([]byte(input))
}

// HashBytes returns the hex SHA-256 of b, joined with any extra parts.
// Parts let callers fold a version or option set into the key.
func HashBytes(b []byte, parts ...string) string {
	hasher := sha256.New()
	hasher.Write(b)
	for _, p := range parts {
		hasher.Write([]byte{0})
		hasher.Write([]byte(p))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
