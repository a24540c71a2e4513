package id

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	return randomHex(16)
}

// NewToken returns a 16-char uppercase hex validation token (8 random bytes).
func NewToken() string {
	return strings.ToUpper(randomHex(8))
}

// NewFilingCode returns RAD-YYYYMMDD-XXXXXXXX for the calendar date of t.
// Uniqueness is left to the store's unique index on the column.
func NewFilingCode(t time.Time) string {
	return "RAD-" + t.Format("20060102") + "-" + strings.ToUpper(randomHex(4))
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
