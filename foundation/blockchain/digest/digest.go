// Package digest provides the content hashing used to seal blocks.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Size is the length of a hex encoded digest.
const Size = sha256.Size * 2

// =============================================================================

// Hash returns the hex encoded SHA-256 of the canonical JSON encoding of the
// value. The JSON is produced with HTML escaping turned off and without the
// trailing newline the encoder adds, so the hashed text matches what any
// other JSON producer would emit for the same document.
func Hash(value any) (string, error) {
	data, err := Canonical(value)
	if err != nil {
		return "", err
	}

	return Sum(data), nil
}

// Canonical returns the exact text that is hashed for the value. Key order
// comes from the value itself, so callers that need sorted keys must declare
// their struct fields in sorted order.
func Canonical(value any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Sum returns the hex encoded SHA-256 of the raw bytes.
func Sum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
