package helper

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

func Hash8(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

// EmailTag is a stable, non-reversible label for an address, safe for logs
// and metrics.
func EmailTag(email string) string {
	return Hash8(strings.ToLower(strings.TrimSpace(email)))
}
