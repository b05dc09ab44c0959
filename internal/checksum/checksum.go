// Package checksum computes content digests for sources and cache keys.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumReader streams r through SHA-256 and returns the hex digest and the
// number of bytes read.
func SumReader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Key joins parts with ":" and returns their digest, for use as a cache key.
func Key(parts ...string) string {
	return Sum([]byte(strings.Join(parts, ":")))
}
