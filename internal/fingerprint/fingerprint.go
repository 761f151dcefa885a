// Package fingerprint derives content identities for alert text.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is the lowercase hex SHA-256 digest of a text's exact bytes.
type Fingerprint string

// Of fingerprints text. The empty string is valid input.
func Of(text string) Fingerprint {
	sum := sha256.Sum256([]byte(text))

	return Fingerprint(hex.EncodeToString(sum[:]))
}

func (f Fingerprint) String() string {
	return string(f)
}
