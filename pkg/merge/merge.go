// Package merge certifies the combination of two already-summarized
// trees A and B into one tree whose non-absent leaves are the union of
// both sides, preserving each side's internal left-to-right order. The
// combinator at every node is the summarization hash-or-forward rule,
// applied to the A, B and merged columns independently; the rule is
// associative, so a combined tree may be folded in any bracketing.
//
// How A's and B's nodes are paired into the binary shape is decided out
// of circuit (see Plan); the circuits only certify that the chosen
// pairing satisfies the hash-or-forward algebra at every step.
package merge

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/treezk/internal/hashutil"
	"github.com/yourorg/treezk/pkg/plonkish"
	"github.com/yourorg/treezk/pkg/recurse"
	"github.com/yourorg/treezk/pkg/summarize"
)

// Side is an out-of-circuit optional summary hash.
type Side struct {
	Present bool
	Hash    fr.Element
}

// PresentSide returns a side holding h.
func PresentSide(h fr.Element) Side { return Side{Present: true, Hash: h} }

// AbsentSide returns the placeholder side.
func AbsentSide() Side { return Side{} }

// Fold applies hash-or-forward to two sides.
func Fold(a, b Side) Side {
	p, h := hashutil.Fold(a.Present, a.Hash, b.Present, b.Hash)
	return Side{Present: p, Hash: h}
}

// Indices locates the three summary columns in a family member's
// publics.
type Indices struct {
	A, B, Merged summarize.Indices
}

// Equal reports whether two index tables agree.
func (i Indices) Equal(other Indices) bool { return i == other }

// LeafCircuit is the compiled leaf of the merge family: it certifies one
// hash-or-forward application over two possibly-absent inputs.
type LeafCircuit struct {
	Circuit *plonkish.Circuit
	Rec     *recurse.Leaf

	A, B, Merged *summarize.Leaf
}

// BuildLeaf constructs and compiles the merge leaf circuit.
func BuildLeaf() (*LeafCircuit, error) {
	b := plonkish.NewBuilder()

	rin := recurse.NewLeafInputs(b)
	ain := summarize.NewLeafInputs(b)
	bin := summarize.NewLeafInputs(b)
	min := summarize.NewLeafInputs(b)

	ain.BuildLeaf(b)
	bin.BuildLeaf(b)
	present, hash := summarize.HashOrForward(b, ain.Present, ain.Hash, bin.Present, bin.Hash)
	b.AssertEqual(min.Present, present)
	b.AssertEqual(min.Hash, hash)
	rin.BuildLeaf(b)

	c, err := b.Compile()
	if err != nil {
		return nil, err
	}
	rec, err := recurse.NewLeaf(c, rin)
	if err != nil {
		return nil, err
	}
	a, err := summarize.NewLeaf(c, ain)
	if err != nil {
		return nil, err
	}
	bb, err := summarize.NewLeaf(c, bin)
	if err != nil {
		return nil, err
	}
	m, err := summarize.NewLeaf(c, min)
	if err != nil {
		return nil, err
	}
	return &LeafCircuit{Circuit: c, Rec: rec, A: a, B: bb, Merged: m}, nil
}

// Idx returns the family's column index table.
func (lc *LeafCircuit) Idx() Indices {
	return Indices{A: lc.A.Idx, B: lc.B.Idx, Merged: lc.Merged.Idx}
}

// Prove emits a leaf-merge proof for the two sides. branchID is the
// identity of the family's branch circuit, declared by every proof in
// the tree.
func (lc *LeafCircuit) Prove(branchID plonkish.Identity, a, b Side) (*plonkish.Proof, error) {
	w := plonkish.NewWitness()
	lc.Rec.SetWitness(w, branchID)
	lc.A.SetWitness(w, a.Present, a.Hash)
	lc.B.SetWitness(w, b.Present, b.Hash)
	m := Fold(a, b)
	lc.Merged.SetWitness(w, m.Present, m.Hash)
	return lc.Circuit.Prove(w)
}

// BranchCircuit is the compiled branch of the merge family: it verifies
// two child merge proofs (leaves or branches, unbounded) and folds each
// of the three columns one level up.
type BranchCircuit struct {
	Circuit *plonkish.Circuit
	Rec     *recurse.Branch

	A, B, Merged *summarize.Branch
}

// BuildBranch constructs and compiles the merge branch circuit for an
// already-built leaf.
func BuildBranch(leaf *LeafCircuit) (*BranchCircuit, error) {
	b := plonkish.NewBuilder()

	rin := recurse.NewBranchInputs(b, leaf.Rec)
	ain := summarize.NewBranchInputs(b)
	bin := summarize.NewBranchInputs(b)
	min := summarize.NewBranchInputs(b)

	ain.BuildBranch(b, leaf.A.Idx, rin.Left.Publics, rin.Right.Publics)
	bin.BuildBranch(b, leaf.B.Idx, rin.Left.Publics, rin.Right.Publics)
	min.BuildBranch(b, leaf.Merged.Idx, rin.Left.Publics, rin.Right.Publics)
	rin.BuildBranch(b, leaf.Rec)

	c, err := b.Compile()
	if err != nil {
		return nil, err
	}
	rec, err := recurse.NewBranch(c, rin, leaf.Rec)
	if err != nil {
		return nil, err
	}
	a, err := summarize.NewBranch(c, ain, leaf.A)
	if err != nil {
		return nil, err
	}
	bb, err := summarize.NewBranch(c, bin, leaf.B)
	if err != nil {
		return nil, err
	}
	m, err := summarize.NewBranch(c, min, leaf.Merged)
	if err != nil {
		return nil, err
	}
	return &BranchCircuit{Circuit: c, Rec: rec, A: a, B: bb, Merged: m}, nil
}

// Prove folds two finished sibling merge nodes into their parent proof.
func (bc *BranchCircuit) Prove(left, right recurse.Node) (*plonkish.Proof, error) {
	w := plonkish.NewWitness()
	if err := bc.Rec.SetWitness(w, left.Proof, right.Proof, left.IsLeaf, right.IsLeaf); err != nil {
		return nil, err
	}
	bc.A.SetWitnessFromChildren(w, left.Proof, right.Proof)
	bc.B.SetWitnessFromChildren(w, left.Proof, right.Proof)
	bc.Merged.SetWitnessFromChildren(w, left.Proof, right.Proof)
	return bc.Circuit.Prove(w)
}

// VerifyRoot verifies a merge tree by its root node alone.
func (bc *BranchCircuit) VerifyRoot(root recurse.Node) error {
	if root.IsLeaf {
		return bc.Rec.VerifyLeafRoot(root.Proof)
	}
	return bc.Rec.VerifyRoot(root.Proof)
}

// RootSummary extracts the merged column of a root proof.
func (bc *BranchCircuit) RootSummary(p *plonkish.Proof) Side {
	vals := p.Publics()
	return Side{
		Present: bc.Merged.Idx.PresentOf(vals),
		Hash:    bc.Merged.Idx.HashOf(vals),
	}
}
