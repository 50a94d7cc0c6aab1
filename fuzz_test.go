package merkle_test

import (
	"bytes"
	"testing"

	"github.com/google/gofuzz"

	"github.com/hextree/merkle"
)

func TestFuzzBuildProveVerify(t *testing.T) {
	if testing.Short() {
		t.Skip("TestFuzzBuildProveVerify skipped in short mode.")
	}

	configs := map[string][]merkle.Option{
		"default":     nil,
		"sorted":      {merkle.WithSortPairs(true)},
		"blake2b-256": {merkle.WithAlgorithm(merkle.BLAKE2b256)},
	}

	f := fuzz.New().NilChance(0).NumElements(1, 64)
	for round := 0; round < 32; round++ {
		var leaves [][]byte
		f.Fuzz(&leaves)

		for name, setters := range configs {
			tree, err := merkle.New(leaves, setters...)
			if err != nil {
				t.Fatalf("[%s] error on New() with %v leaves: %v", name, len(leaves), err)
			}
			root := tree.Root()

			for index := 0; index < tree.LeafCount(); index++ {
				proof, err := tree.Prove(index)
				if err != nil {
					t.Fatalf("[%s] error on Prove(%v): %v", name, index, err)
				}
				leafHash, err := tree.LeafHash(index)
				if err != nil {
					t.Fatalf("[%s] error on LeafHash(%v): %v", name, index, err)
				}
				ok, err := merkle.VerifyInclusion(leafHash, proof, root, setters...)
				if err != nil {
					t.Fatalf("[%s] error on VerifyInclusion(%v): %v", name, index, err)
				}
				if !ok {
					t.Fatalf("[%s] expected VerifyInclusion(%v) == true", name, index)
				}
			}

			encoded, err := tree.Serialize()
			if err != nil {
				t.Fatalf("[%s] error on Serialize(): %v", name, err)
			}
			decoded, err := merkle.Deserialize(encoded, setters...)
			if err != nil {
				t.Fatalf("[%s] error on Deserialize(): %v", name, err)
			}
			if !bytes.Equal(decoded.Root(), root) {
				t.Fatalf("[%s] round-tripped root %x != original %x", name, decoded.Root(), root)
			}
		}
	}
}
