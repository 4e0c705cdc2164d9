package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// SumSHA256 returns the SHA-256 checksum of the provided data.
func SumSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ETag returns a strong entity tag for the JSON encoding of v.
func ETag(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := SumSHA256(b)
	return `"` + hex.EncodeToString(sum[:16]) + `"`, nil
}
