package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the content address of data: the lowercase hex SHA-256.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// hashKey returns the first 16 hex characters of the SHA-256 hash of key.
// This produces a deterministic, filesystem-safe identifier for any key
// regardless of length, special characters, or path separators.
func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:8]) // 8 bytes = 16 hex chars
}

// validHash reports whether s looks like a value returned by Sum.
func validHash(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
