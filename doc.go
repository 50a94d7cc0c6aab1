// Package merkle implements a binary Merkle hash tree over an ordered
// sequence of leaves, together with inclusion proof generation and
// verification and a hex/JSON interchange snapshot.
//
// A tree is built once from its leaves and is read-only afterwards; rebuilding
// requires constructing a new tree. Level 0 holds the leaf hashes and every
// level above pairs adjacent nodes, hashing the concatenation left-to-right,
// until a single root remains. The last node of an odd-length level is paired
// with itself.
//
//	tree, err := merkle.New([][]byte{[]byte("a"), []byte("b"), []byte("c")})
//	if err != nil {
//		// ...
//	}
//	proof, err := tree.Prove(1)
//	leafHash, _ := tree.LeafHash(1)
//	ok, err := merkle.VerifyInclusion(leafHash, proof, tree.Root())
//
// The digest is pluggable: pick one of the built-in algorithms with
// WithAlgorithm or inject any deterministic bytes-to-bytes function with
// WithHashFunc. Proofs only carry byte values, so they verify without access
// to the tree that produced them, as long as build and verify agree on the
// digest and on the pairing mode (see WithSortPairs).
package merkle
