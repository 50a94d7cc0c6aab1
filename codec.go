package merkle

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformedSerialization marks a decode-time structural or encoding
// violation. The error message names the field or level that broke.
var ErrMalformedSerialization = errors.New("malformed serialized tree")

// serializedTree is the interchange snapshot. tree[0] duplicates leaves.
type serializedTree struct {
	Leaves []string   `json:"leaves"`
	Tree   [][]string `json:"tree"`
}

// Serialize renders the tree as {"leaves":[hex...],"tree":[[hex...],...]}
// with lowercase hex, preserving level order and in-level order. The snapshot
// carries hash values only; the original raw leaf content is not recoverable
// from it.
func (t *Tree) Serialize() ([]byte, error) {
	snapshot := serializedTree{
		Leaves: encodeLevel(t.levels[0]),
		Tree:   make([][]string, len(t.levels)),
	}
	for i, level := range t.levels {
		snapshot.Tree[i] = encodeLevel(level)
	}
	return json.Marshal(snapshot)
}

func encodeLevel(level [][]byte) []string {
	encoded := make([]string, len(level))
	for i, digest := range level {
		encoded[i] = hex.EncodeToString(digest)
	}
	return encoded
}

// Deserialize reconstructs a tree from its interchange snapshot. It validates
// structure only: both fields present and arrays, every level an array, every
// entry a non-empty hex string, leaves agreeing with tree[0], and each level
// holding ceil(half) of the level below down to a single root. It does not
// re-derive the levels from the leaves under the hash function; a tampered
// snapshot that keeps the shape intact is only detected when the caller
// compares the root against known-good data. The options must match the ones
// the tree was built with for subsequent Prove calls to be meaningful.
func Deserialize(data []byte, setters ...Option) (*Tree, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformedSerialization)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformedSerialization)
	}

	leaves := doc.Get("leaves")
	if !leaves.IsArray() {
		return nil, fmt.Errorf("%w: leaves is missing or not an array", ErrMalformedSerialization)
	}
	leafHashes, err := decodeLevel(leaves.Array(), "leaves")
	if err != nil {
		return nil, err
	}
	if len(leafHashes) == 0 {
		return nil, fmt.Errorf("%w: leaves is empty", ErrMalformedSerialization)
	}

	rawTree := doc.Get("tree")
	if !rawTree.IsArray() {
		return nil, fmt.Errorf("%w: tree is missing or not an array", ErrMalformedSerialization)
	}
	rawLevels := rawTree.Array()
	if len(rawLevels) == 0 {
		return nil, fmt.Errorf("%w: tree has no levels", ErrMalformedSerialization)
	}

	levels := make([][][]byte, len(rawLevels))
	for i, rawLevel := range rawLevels {
		if !rawLevel.IsArray() {
			return nil, fmt.Errorf("%w: tree[%d] is not an array", ErrMalformedSerialization, i)
		}
		level, err := decodeLevel(rawLevel.Array(), fmt.Sprintf("tree[%d]", i))
		if err != nil {
			return nil, err
		}
		if len(level) == 0 {
			return nil, fmt.Errorf("%w: tree[%d] is empty", ErrMalformedSerialization, i)
		}
		levels[i] = level
	}

	if !levelsEqual(leafHashes, levels[0]) {
		return nil, fmt.Errorf("%w: leaves does not match tree[0]", ErrMalformedSerialization)
	}
	for i := 0; i < len(levels)-1; i++ {
		want := (len(levels[i]) + 1) / 2
		if got := len(levels[i+1]); got != want {
			return nil, fmt.Errorf("%w: tree[%d] has %d nodes, want %d", ErrMalformedSerialization, i+1, got, want)
		}
	}
	if got := len(levels[len(levels)-1]); got != 1 {
		return nil, fmt.Errorf("%w: last level has %d nodes, want a single root", ErrMalformedSerialization, got)
	}

	return &Tree{th: newTreeHasher(applyOptions(setters)), levels: levels}, nil
}

func levelsEqual(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func decodeLevel(entries []gjson.Result, field string) ([][]byte, error) {
	level := make([][]byte, len(entries))
	for i, entry := range entries {
		if entry.Type != gjson.String {
			return nil, fmt.Errorf("%w: %s[%d] is not a string", ErrMalformedSerialization, field, i)
		}
		digest, err := hex.DecodeString(entry.String())
		if err != nil || len(digest) == 0 {
			return nil, fmt.Errorf("%w: %s[%d] is not a non-empty hex string", ErrMalformedSerialization, field, i)
		}
		level[i] = digest
	}
	return level, nil
}
