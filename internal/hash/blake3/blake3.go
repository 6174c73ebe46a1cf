// Package blake3 provides BLAKE3 hashing for cache identity tags.
package blake3

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// tagBytes is the number of digest bytes kept in an identity tag.
const tagBytes = 16

// Hasher implements tree.Hasher using BLAKE3 keyed by the build version.
// Every tag changes when the build version changes, even for identical input.
type Hasher struct {
	key [32]byte
}

// New returns a Hasher whose key is derived from buildVersion.
func New(buildVersion string) *Hasher {
	return &Hasher{key: blake3.Sum256([]byte(buildVersion))}
}

// Hash hashes the input under the build key and returns a hex digest.
func (h *Hasher) Hash(data []byte) (string, error) {
	hasher, err := blake3.NewKeyed(h.key[:])
	if err != nil {
		return "", fmt.Errorf("keyed blake3: %w", err)
	}
	if _, err := hasher.Write(data); err != nil {
		return "", fmt.Errorf("hash write: %w", err)
	}
	sum := hasher.Sum(nil)
	return hex.EncodeToString(sum[:tagBytes]), nil
}

// Digest returns the unkeyed hex digest of data. It identifies anonymous
// payloads that have no stable name of their own.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
