package cryptoutils

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// EncodeHex renders b as lowercase hex, without a 0x prefix.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex parses a hex string, case-insensitively, without a 0x prefix.
// It fails on odd length or any non-hex character.
func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

// ConstantTimeEqual reports whether a and b hold the same bytes, in time
// independent of where they first differ. Slices of different length are
// never equal, but that length check is itself not constant-time — callers
// comparing secrets of public, fixed length (the common case here) are
// unaffected.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
