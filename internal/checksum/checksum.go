// Package checksum fingerprints document contents so runs can record
// whether a pass actually changed a file.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortLen is the number of hex characters Abbrev keeps.
const ShortLen = 12

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Abbrev shortens a digest returned by Sum for console output.
func Abbrev(sum string) string {
	if len(sum) > ShortLen {
		return sum[:ShortLen]
	}
	return sum
}
