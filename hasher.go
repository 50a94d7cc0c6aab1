package merkle

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// ErrHashFailure is returned when the injected hash function fails. The error
// names the offending leaf index when one is known.
var ErrHashFailure = errors.New("hash function failed")

// HashFunc maps arbitrary-length input bytes to a fixed-length digest. It
// must be deterministic: the same input always yields the same output. The
// core does not police output length; callers are responsible for using the
// same function when building and when verifying.
type HashFunc func(data []byte) ([]byte, error)

// Algorithm names one of the built-in digest families.
type Algorithm uint8

const (
	// SHA256 is the default digest.
	SHA256 Algorithm = iota
	SHA512
	SHA3_256
	BLAKE2b256
)

func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	case SHA512:
		return "sha512"
	case SHA3_256:
		return "sha3-256"
	case BLAKE2b256:
		return "blake2b-256"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// Size returns the digest length in bytes.
func (a Algorithm) Size() int {
	switch a {
	case SHA512:
		return sha512.Size
	default:
		return sha256.Size
	}
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	case SHA3_256:
		return sha3.New256(), nil
	case BLAKE2b256:
		return blake2b.New256(nil)
	default:
		return nil, fmt.Errorf("unknown algorithm (%d)", uint8(a))
	}
}

// HashFunc returns the digest function for the algorithm.
func (a Algorithm) HashFunc() HashFunc {
	return func(data []byte) ([]byte, error) {
		h, err := a.newHash()
		if err != nil {
			return nil, err
		}
		h.Write(data)
		return h.Sum(nil), nil
	}
}

// treeHasher computes leaf and node hashes for one tree configuration.
type treeHasher struct {
	hashFn    HashFunc
	sortPairs bool
}

func newTreeHasher(opts *Options) treeHasher {
	fn := opts.HashFunc
	if fn == nil {
		fn = opts.Algorithm.HashFunc()
	}
	return treeHasher{hashFn: fn, sortPairs: opts.SortPairs}
}

// HashLeaf hashes one raw leaf input into its level-0 digest.
func (th treeHasher) HashLeaf(data []byte) ([]byte, error) {
	digest, err := th.hashFn(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashFailure, err)
	}
	return digest, nil
}

// HashNode hashes the concatenation of two child digests, left first. In
// sorted-pairs mode the two digests are ordered bytewise before
// concatenation, which makes the parent independent of child order.
func (th treeHasher) HashNode(left, right []byte) ([]byte, error) {
	if th.sortPairs && bytes.Compare(right, left) < 0 {
		left, right = right, left
	}
	buf := make([]byte, 0, len(left)+len(right))
	buf = append(buf, left...)
	buf = append(buf, right...)
	digest, err := th.hashFn(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashFailure, err)
	}
	return digest, nil
}
