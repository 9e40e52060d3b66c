package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashString returns the hex SHA-256 of input.
func HashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Fingerprint is a short, stable stand-in for a client address in logs.
func Fingerprint(input string) string {
	return HashString(input)[:12]
}
