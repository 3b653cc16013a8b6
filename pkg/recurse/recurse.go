// Package recurse implements the unbounded-recursion primitive: one
// branch circuit verifies a child that is either a leaf proof or another
// branch proof of unknown depth, with identical verification logic.
//
// Every circuit of a recursive family declares its verifier identity as
// a public input. Leaves leave it unconstrained; a branch selects, per
// child, between the leaf circuit's identity (embedded as a constant)
// and its own declared identity as the expected verifier, and constrains
// the child's declared identity to equal its own. Transitively every
// proof in a tree comes from exactly one of two circuits, and the base
// case is checked out of circuit by VerifyRoot.
//
// Both leaf and branch pad to the shared recursion threshold, which is
// what lets a branch proof stand wherever a leaf proof can.
package recurse

import (
	"errors"
	"fmt"

	"github.com/yourorg/treezk/pkg/indices"
	"github.com/yourorg/treezk/pkg/plonkish"
)

// ErrShapeMismatch reports a branch circuit whose re-derived public
// indices disagree with its leaf's. It signals wiring drift between the
// two halves of a circuit family, before any proof exists.
var ErrShapeMismatch = errors.New("recurse: branch indices disagree with leaf")

// Indices locates the recursion subcircuit's values inside a family
// member's public-input vector.
type Indices struct {
	Own indices.Identity
}

// Equal reports whether two index tables agree.
func (i Indices) Equal(other Indices) bool { return i == other }

// LeafInputs holds the recursion wires of a leaf under construction.
type LeafInputs struct {
	Own plonkish.IdentityWires
}

// NewLeafInputs declares the leaf's verifier-identity public inputs in a
// caller-owned builder. Hosts must allocate subcircuit inputs in the
// same order for the leaf and the branch of one family.
func NewLeafInputs(b *plonkish.Builder) LeafInputs {
	return LeafInputs{Own: plonkish.IdentityWires{
		Digest:     b.PublicInput(),
		Commitment: b.PublicInput(),
	}}
}

// BuildLeaf finishes the leaf: the declared identity stays unconstrained
// here (the parent pins it), and the circuit pads to the recursion
// threshold. Call after every other subcircuit has added its constraints.
func (li LeafInputs) BuildLeaf(b *plonkish.Builder) {
	b.PadToRecursionThreshold()
}

// Leaf is the compiled leaf half of a recursive family.
type Leaf struct {
	Circuit *plonkish.Circuit
	Wires   LeafInputs
	Idx     Indices
}

// NewLeaf resolves the leaf's recursion indices after compilation.
func NewLeaf(c *plonkish.Circuit, in LeafInputs) (*Leaf, error) {
	idx, err := indices.FindIdentity(c.PublicWires(), in.Own)
	if err != nil {
		return nil, err
	}
	return &Leaf{Circuit: c, Wires: in, Idx: Indices{Own: idx}}, nil
}

// SetWitness assigns the family's branch identity as the leaf's declared
// verifier identity.
func (l *Leaf) SetWitness(w *plonkish.Witness, branchID plonkish.Identity) {
	w.Set(l.Wires.Own.Digest, branchID.Digest)
	w.Set(l.Wires.Own.Commitment, branchID.Commitment)
}

// BranchInputs holds the recursion wires of a branch under construction.
type BranchInputs struct {
	Own                     plonkish.IdentityWires
	LeftIsLeaf, RightIsLeaf plonkish.Wire
	Left, Right             plonkish.ProofSlot
}

// NewBranchInputs declares the branch's identity publics, the two child
// is-leaf flags and the two child proof slots. The slots expose the
// children's public inputs, which other subcircuits read through the
// leaf's index tables.
func NewBranchInputs(b *plonkish.Builder, leaf *Leaf) BranchInputs {
	own := plonkish.IdentityWires{
		Digest:     b.PublicInput(),
		Commitment: b.PublicInput(),
	}
	leftIsLeaf := b.SecretInput()
	rightIsLeaf := b.SecretInput()
	left := b.AddProofSlot(leaf.Circuit.NumPublics())
	right := b.AddProofSlot(leaf.Circuit.NumPublics())
	return BranchInputs{
		Own:         own,
		LeftIsLeaf:  leftIsLeaf,
		RightIsLeaf: rightIsLeaf,
		Left:        left,
		Right:       right,
	}
}

// BuildBranch adds the two embedded verifications and identity bindings,
// then pads to the recursion threshold. Call after every other
// subcircuit has added its constraints.
func (bi BranchInputs) BuildBranch(b *plonkish.Builder, leaf *Leaf) {
	leafID := leaf.Circuit.Identity()
	leafDigest := b.Constant(leafID.Digest)
	leafCommitment := b.Constant(leafID.Commitment)

	b.AssertBool(bi.LeftIsLeaf)
	b.AssertBool(bi.RightIsLeaf)

	sides := []struct {
		isLeaf plonkish.Wire
		slot   plonkish.ProofSlot
	}{
		{bi.LeftIsLeaf, bi.Left},
		{bi.RightIsLeaf, bi.Right},
	}
	for _, s := range sides {
		expected := plonkish.IdentityWires{
			Digest:     b.Select(s.isLeaf, leafDigest, bi.Own.Digest),
			Commitment: b.Select(s.isLeaf, leafCommitment, bi.Own.Commitment),
		}
		b.VerifyProof(s.slot, expected)

		// The child's declared identity is the branch's own identity,
		// whichever of the two circuits produced the child.
		declared := leaf.Idx.Own.In(s.slot.Publics)
		b.AssertEqual(declared.Digest, bi.Own.Digest)
		b.AssertEqual(declared.Commitment, bi.Own.Commitment)
	}

	b.PadToRecursionThreshold()
}

// Branch is the compiled branch half of a recursive family.
type Branch struct {
	Circuit *plonkish.Circuit
	Wires   BranchInputs
	Idx     Indices
	leaf    *Leaf
}

// NewBranch resolves the branch's recursion indices and checks them
// against the leaf's, catching wiring regressions before any proof
// exists. It also checks the two circuits landed on the same padded size.
func NewBranch(c *plonkish.Circuit, in BranchInputs, leaf *Leaf) (*Branch, error) {
	idx, err := indices.FindIdentity(c.PublicWires(), in.Own)
	if err != nil {
		return nil, err
	}
	got := Indices{Own: idx}
	if !got.Equal(leaf.Idx) {
		return nil, fmt.Errorf("%w: leaf %+v, branch %+v", ErrShapeMismatch, leaf.Idx, got)
	}
	if c.NumGates() != leaf.Circuit.NumGates() {
		return nil, fmt.Errorf("%w: leaf padded to %d gates, branch to %d",
			ErrShapeMismatch, leaf.Circuit.NumGates(), c.NumGates())
	}
	if c.NumPublics() != leaf.Circuit.NumPublics() {
		return nil, fmt.Errorf("%w: leaf has %d publics, branch %d",
			ErrShapeMismatch, leaf.Circuit.NumPublics(), c.NumPublics())
	}
	return &Branch{Circuit: c, Wires: in, Idx: got, leaf: leaf}, nil
}

// SetWitness binds the two child proofs, their is-leaf flags, and the
// branch's self-referential identity.
func (br *Branch) SetWitness(w *plonkish.Witness, left, right *plonkish.Proof, leftIsLeaf, rightIsLeaf bool) error {
	own := br.Circuit.Identity()
	w.Set(br.Wires.Own.Digest, own.Digest)
	w.Set(br.Wires.Own.Commitment, own.Commitment)
	w.SetBool(br.Wires.LeftIsLeaf, leftIsLeaf)
	w.SetBool(br.Wires.RightIsLeaf, rightIsLeaf)
	if err := w.SetProof(br.Wires.Left, left); err != nil {
		return err
	}
	return w.SetProof(br.Wires.Right, right)
}

// VerifyRoot is the out-of-circuit base case of the recursion: it checks
// that the root proof declares this branch circuit as its verifier
// identity, then verifies the proof itself. Interior proofs were checked
// when their parents were proved, so the root is all a verifier needs.
func (br *Branch) VerifyRoot(p *plonkish.Proof) error {
	declared := br.Idx.Own.Get(p.Publics())
	if !declared.Equal(br.Circuit.Identity()) {
		return fmt.Errorf("%w: root declares a foreign verifier identity", plonkish.ErrVerifyFailed)
	}
	return br.Circuit.Verify(p)
}

// VerifyLeafRoot verifies a single-leaf tree: a lone leaf proof whose
// declared identity must be this family's branch identity.
func (br *Branch) VerifyLeafRoot(p *plonkish.Proof) error {
	declared := br.leaf.Idx.Own.Get(p.Publics())
	if !declared.Equal(br.Circuit.Identity()) {
		return fmt.Errorf("%w: leaf declares a foreign verifier identity", plonkish.ErrVerifyFailed)
	}
	return br.leaf.Circuit.Verify(p)
}
