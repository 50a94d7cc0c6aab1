package merkle

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput      = errors.New("tree requires at least one leaf")
	ErrIndexOutOfRange = errors.New("leaf index out of range")
)

// Options configure tree construction and proof verification.
type Options struct {
	// Algorithm selects a built-in digest. Ignored when HashFunc is set.
	Algorithm Algorithm
	// HashFunc, when non-nil, replaces the built-in digest entirely.
	HashFunc HashFunc
	// SortPairs orders each sibling pair bytewise before hashing.
	SortPairs bool
}

// Option configures Options.
type Option func(*Options)

// WithAlgorithm selects one of the built-in digests. The default is SHA256.
func WithAlgorithm(a Algorithm) Option {
	return func(opts *Options) {
		opts.Algorithm = a
	}
}

// WithHashFunc injects a custom digest function. It takes precedence over
// WithAlgorithm.
func WithHashFunc(fn HashFunc) Option {
	return func(opts *Options) {
		opts.HashFunc = fn
	}
}

// WithSortPairs enables canonical bytewise ordering of each sibling pair
// before concatenation and hashing. Trees built with and without sorted pairs
// produce incompatible roots and proofs, so the same setting must be used for
// building, verifying and deserializing. The default is unsorted
// concatenation.
func WithSortPairs(sort bool) Option {
	return func(opts *Options) {
		opts.SortPairs = sort
	}
}

func defaultOptions() *Options {
	return &Options{Algorithm: SHA256}
}

func applyOptions(setters []Option) *Options {
	opts := defaultOptions()
	for _, setter := range setters {
		setter(opts)
	}
	return opts
}

// Tree is an immutable Merkle tree. levels[0] holds the leaf hashes and the
// last level holds the single root; level i+1 always has ceil(len(level i)/2)
// nodes. Once constructed a Tree is never mutated, so concurrent readers need
// no locking.
type Tree struct {
	th     treeHasher
	levels [][][]byte
}

// New builds a tree over the given ordered leaves. Each leaf is hashed
// exactly once; the raw leaf content is not retained. Returns ErrEmptyInput
// for an empty leaf list and ErrHashFailure if the digest function fails.
func New(leaves [][]byte, setters ...Option) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyInput
	}
	opts := applyOptions(setters)
	th := newTreeHasher(opts)

	leafHashes := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		leafHash, err := th.HashLeaf(leaf)
		if err != nil {
			return nil, fmt.Errorf("leaf %d: %w", i, err)
		}
		leafHashes[i] = leafHash
	}

	levels, err := buildLevels(leafHashes, th, batchEligible(opts))
	if err != nil {
		return nil, err
	}
	return &Tree{th: th, levels: levels}, nil
}

// buildLevels grows the level structure bottom-up until a single root
// remains. The last node of an odd-length level is paired with itself.
func buildLevels(leafHashes [][]byte, th treeHasher, useBatch bool) ([][][]byte, error) {
	levels := [][][]byte{leafHashes}
	for current := leafHashes; len(current) > 1; {
		var (
			parents [][]byte
			err     error
		)
		if useBatch && batchableLevel(current) {
			parents, err = hashLevelSHA256(current)
		} else {
			parents, err = hashLevel(current, th)
		}
		if err != nil {
			return nil, err
		}
		levels = append(levels, parents)
		current = parents
	}
	return levels, nil
}

func hashLevel(level [][]byte, th treeHasher) ([][]byte, error) {
	parents := make([][]byte, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		left := level[i]
		right := left // self-pair at the odd tail
		if i+1 < len(level) {
			right = level[i+1]
		}
		parent, err := th.HashNode(left, right)
		if err != nil {
			return nil, err
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

// Root returns a copy of the root hash.
func (t *Tree) Root() []byte {
	return cloneHash(t.levels[len(t.levels)-1][0])
}

// LeafCount returns the number of leaves the tree was built from.
func (t *Tree) LeafCount() int {
	return len(t.levels[0])
}

// Depth returns the number of levels, including the leaf level and the root.
func (t *Tree) Depth() int {
	return len(t.levels)
}

// LeafHash returns a copy of the leaf hash at the given index.
func (t *Tree) LeafHash(index int) ([]byte, error) {
	if index < 0 || index >= t.LeafCount() {
		return nil, fmt.Errorf("%w: index %d, leaf count %d", ErrIndexOutOfRange, index, t.LeafCount())
	}
	return cloneHash(t.levels[0][index]), nil
}

// LeafHashes returns copies of all leaf hashes in leaf order.
func (t *Tree) LeafHashes() [][]byte {
	hashes := make([][]byte, t.LeafCount())
	for i, leafHash := range t.levels[0] {
		hashes[i] = cloneHash(leafHash)
	}
	return hashes
}

func cloneHash(digest []byte) []byte {
	out := make([]byte, len(digest))
	copy(out, digest)
	return out
}
