// Package util holds small helpers shared by the service packages.
package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DocumentID derives a stable identifier from document text. Leading and
// trailing whitespace does not change the id.
func DocumentID(text string) string {
	hasher := sha256.New()
	hasher.Write([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(hasher.Sum(nil))[:16] // Use first 16 chars of the hash
}
