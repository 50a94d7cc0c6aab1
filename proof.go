package merkle

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidProof marks a structurally malformed proof: an empty sibling
// hash, an unrecognized position tag, or invalid proof JSON. A well-formed
// proof that simply does not prove membership is not an error; verification
// returns false for it.
var ErrInvalidProof = errors.New("malformed inclusion proof")

// Position tells which side a sibling occupies relative to the path node at
// its level.
type Position uint8

const (
	Left Position = iota
	Right
)

func (p Position) String() string {
	switch p {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("position(%d)", uint8(p))
	}
}

// ProofStep pairs a sibling hash with the side it sits on. A self-pair step
// (odd tail of a level) carries the path node's own hash with position Right.
type ProofStep struct {
	Sibling  []byte
	Position Position
}

// Proof is the ordered sibling path for one leaf, from level 0 up to the
// level just below the root, one step per level.
type Proof []ProofStep

// Prove returns the inclusion proof for the leaf at the given index. It is a
// pure function of the tree: proving the same index twice yields identical
// steps.
func (t *Tree) Prove(index int) (Proof, error) {
	if index < 0 || index >= t.LeafCount() {
		return nil, fmt.Errorf("%w: index %d, leaf count %d", ErrIndexOutOfRange, index, t.LeafCount())
	}
	proof := make(Proof, 0, t.Depth()-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling >= len(level) {
			// odd tail: the node pairs with itself
			sibling = index
		}
		position := Right
		if sibling < index {
			position = Left
		}
		proof = append(proof, ProofStep{
			Sibling:  cloneHash(level[sibling]),
			Position: position,
		})
		index /= 2
	}
	return proof, nil
}

// VerifyInclusion recomputes a root from the leaf hash and the proof and
// compares it to the claimed root. It needs no access to the tree the proof
// came from, only the same digest and pairing options the tree was built
// with. Structurally malformed steps fail with ErrInvalidProof; a proof that
// folds to the wrong root (including wrong-length hashes) returns false.
func VerifyInclusion(leafHash []byte, proof Proof, root []byte, setters ...Option) (bool, error) {
	th := newTreeHasher(applyOptions(setters))

	current := leafHash
	for i, step := range proof {
		if len(step.Sibling) == 0 {
			return false, fmt.Errorf("%w: step %d: empty sibling", ErrInvalidProof, i)
		}
		if step.Position != Left && step.Position != Right {
			return false, fmt.Errorf("%w: step %d: unrecognized position %q", ErrInvalidProof, i, step.Position)
		}
		left, right := current, step.Sibling
		if step.Position == Left {
			left, right = step.Sibling, current
		}
		next, err := th.HashNode(left, right)
		if err != nil {
			return false, err
		}
		current = next
	}
	return bytes.Equal(current, root), nil
}

type proofStepJSON struct {
	Position string `json:"position"`
	Sibling  string `json:"sibling"`
}

// MarshalJSON renders the step as {"position":"left|right","sibling":hex}.
func (s ProofStep) MarshalJSON() ([]byte, error) {
	return json.Marshal(proofStepJSON{
		Position: s.Position.String(),
		Sibling:  hex.EncodeToString(s.Sibling),
	})
}

// UnmarshalJSON parses and validates one proof step. Violations fail with
// ErrInvalidProof.
func (s *ProofStep) UnmarshalJSON(data []byte) error {
	var raw proofStepJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	switch raw.Position {
	case "left":
		s.Position = Left
	case "right":
		s.Position = Right
	default:
		return fmt.Errorf("%w: unrecognized position %q", ErrInvalidProof, raw.Position)
	}
	sibling, err := hex.DecodeString(raw.Sibling)
	if err != nil || len(sibling) == 0 {
		return fmt.Errorf("%w: sibling is not a non-empty hex string", ErrInvalidProof)
	}
	s.Sibling = sibling
	return nil
}
