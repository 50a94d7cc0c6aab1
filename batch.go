package merkle

import (
	"crypto/sha256"
	"fmt"

	"github.com/prysmaticlabs/gohashtree"
)

// batchEligible reports whether levels can be built with the vectorized
// SHA-256 path. Only the default configuration qualifies: a custom digest is
// opaque, and sorted pairs reorder siblings before hashing.
func batchEligible(opts *Options) bool {
	return opts.HashFunc == nil && opts.Algorithm == SHA256 && !opts.SortPairs
}

// batchableLevel reports whether every node is a raw 32-byte digest, the
// chunk width gohashtree operates on.
func batchableLevel(level [][]byte) bool {
	for _, node := range level {
		if len(node) != sha256.Size {
			return false
		}
	}
	return true
}

// hashLevelSHA256 hashes one whole level in a single vectorized pass,
// duplicating the odd tail node so the pairing matches hashLevel exactly.
func hashLevelSHA256(level [][]byte) ([][]byte, error) {
	padded := len(level)
	if padded%2 != 0 {
		padded++
	}
	chunks := make([][32]byte, padded)
	for i, node := range level {
		copy(chunks[i][:], node)
	}
	if padded != len(level) {
		chunks[padded-1] = chunks[len(level)-1]
	}

	digests := make([][32]byte, padded/2)
	if err := gohashtree.Hash(digests, chunks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashFailure, err)
	}

	parents := make([][]byte, len(digests))
	for i := range digests {
		parents[i] = cloneHash(digests[i][:])
	}
	return parents, nil
}
