package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

// Hash returns the hex SHA-256 of data. FileCache names entry files with it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// idSetHash hashes a set of entity IDs. Order and repeats do not change
// the result, and IDs are NUL-separated so {"ab"} and {"a", "b"} differ.
func idSetHash(ids []string) string {
	set := slices.Clone(ids)
	slices.Sort(set)
	set = slices.Compact(set)

	h := sha256.New()
	for _, id := range set {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
