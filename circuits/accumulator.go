// Package circuits holds the host circuits composing the invariant
// subcircuits with the recursion primitive, plus the outer gnark
// settlement circuit. Higher-level proofs are instantiations of the
// accumulator shape defined here.
package circuits

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/treezk/pkg/plonkish"
	"github.com/yourorg/treezk/pkg/propagate"
	"github.com/yourorg/treezk/pkg/recurse"
	"github.com/yourorg/treezk/pkg/summarize"
	"github.com/yourorg/treezk/pkg/treeaddr"
)

// Item is one accumulated fact: a payload hash bound to a leaf position.
type Item struct {
	Payload fr.Element
	Addr    treeaddr.Address
}

// AccumulatorLeaf is the compiled leaf of the accumulator family. It
// composes the recursion identity, a summary hash, a sparse address and
// a propagated metadata vector, with summary and address presence tied
// together.
type AccumulatorLeaf struct {
	Circuit *plonkish.Circuit
	Rec     *recurse.Leaf
	Summary *summarize.Leaf
	Addr    *treeaddr.Leaf
	Meta    *propagate.Leaf
}

// BuildAccumulatorLeaf constructs and compiles the accumulator leaf with
// a metaWidth-wide propagated vector.
func BuildAccumulatorLeaf(metaWidth int) (*AccumulatorLeaf, error) {
	b := plonkish.NewBuilder()

	rin := recurse.NewLeafInputs(b)
	sin := summarize.NewLeafInputs(b)
	ain := treeaddr.NewLeafInputs(b)
	min := propagate.NewLeafInputs(b, metaWidth)

	sin.BuildLeaf(b)
	ain.BuildLeaf(b)
	min.BuildLeaf(b)
	// One presence notion per node: a leaf holds a summary iff it holds
	// an address.
	b.AssertEqual(sin.Present, ain.Present)
	rin.BuildLeaf(b)

	c, err := b.Compile()
	if err != nil {
		return nil, err
	}
	rec, err := recurse.NewLeaf(c, rin)
	if err != nil {
		return nil, err
	}
	sum, err := summarize.NewLeaf(c, sin)
	if err != nil {
		return nil, err
	}
	addr, err := treeaddr.NewLeaf(c, ain)
	if err != nil {
		return nil, err
	}
	meta, err := propagate.NewLeaf(c, min)
	if err != nil {
		return nil, err
	}
	return &AccumulatorLeaf{Circuit: c, Rec: rec, Summary: sum, Addr: addr, Meta: meta}, nil
}

// Prove emits a leaf proof for item under the given branch identity and
// metadata vector. An absent item is a structural placeholder.
func (lc *AccumulatorLeaf) Prove(branchID plonkish.Identity, meta []fr.Element, item Item) (*plonkish.Proof, error) {
	w := plonkish.NewWitness()
	lc.Rec.SetWitness(w, branchID)
	if item.Addr.Present() {
		lc.Summary.SetWitness(w, true, item.Payload)
	} else {
		lc.Summary.SetAbsent(w)
	}
	lc.Addr.SetWitness(w, item.Addr)
	if err := lc.Meta.SetWitness(w, meta); err != nil {
		return nil, err
	}
	return lc.Circuit.Prove(w)
}

// AccumulatorBranch is the compiled branch of the accumulator family.
type AccumulatorBranch struct {
	Circuit *plonkish.Circuit
	Rec     *recurse.Branch
	Summary *summarize.Branch
	Addr    *treeaddr.Branch
	Meta    *propagate.Branch

	leaf *AccumulatorLeaf
}

// BuildAccumulatorBranch constructs and compiles the accumulator branch.
// requireFullyPopulated is the explicit population policy: when set,
// every instance of this branch rejects a one-sided node, so only a
// dedicated root circuit may be one-sided.
func BuildAccumulatorBranch(leaf *AccumulatorLeaf, requireFullyPopulated bool) (*AccumulatorBranch, error) {
	b := plonkish.NewBuilder()

	rin := recurse.NewBranchInputs(b, leaf.Rec)
	sin := summarize.NewBranchInputs(b)
	ain := treeaddr.NewBranchInputs(b)
	min := propagate.NewBranchInputs(b, len(leaf.Meta.Wires.Values))

	sin.BuildBranch(b, leaf.Summary.Idx, rin.Left.Publics, rin.Right.Publics)
	ain.BuildBranch(b, leaf.Addr.Idx, rin.Left.Publics, rin.Right.Publics, requireFullyPopulated)
	min.BuildBranch(b, leaf.Meta.Idx, rin.Left.Publics, rin.Right.Publics)
	rin.BuildBranch(b, leaf.Rec)

	c, err := b.Compile()
	if err != nil {
		return nil, err
	}
	rec, err := recurse.NewBranch(c, rin, leaf.Rec)
	if err != nil {
		return nil, err
	}
	sum, err := summarize.NewBranch(c, sin, leaf.Summary)
	if err != nil {
		return nil, err
	}
	addr, err := treeaddr.NewBranch(c, ain, leaf.Addr)
	if err != nil {
		return nil, err
	}
	meta, err := propagate.NewBranch(c, min, leaf.Meta)
	if err != nil {
		return nil, err
	}
	return &AccumulatorBranch{
		Circuit: c, Rec: rec, Summary: sum, Addr: addr, Meta: meta, leaf: leaf,
	}, nil
}

// Prove folds two finished sibling nodes into their parent proof.
func (bc *AccumulatorBranch) Prove(left, right recurse.Node) (*plonkish.Proof, error) {
	w := plonkish.NewWitness()
	if err := bc.Rec.SetWitness(w, left.Proof, right.Proof, left.IsLeaf, right.IsLeaf); err != nil {
		return nil, err
	}
	bc.Summary.SetWitnessFromChildren(w, left.Proof, right.Proof)
	if err := bc.Addr.SetWitnessFromChildren(w, left.Proof, right.Proof); err != nil {
		return nil, err
	}
	// The metadata vector is identical across the tree; forward the left
	// child's copy.
	if err := bc.Meta.SetWitness(w, bc.leaf.Meta.Idx.Get(left.Proof.Publics())); err != nil {
		return nil, err
	}
	return bc.Circuit.Prove(w)
}

// Combine adapts Prove to the parallel tree prover.
func (bc *AccumulatorBranch) Combine(left, right recurse.Node) (recurse.Node, error) {
	p, err := bc.Prove(left, right)
	if err != nil {
		return recurse.Node{}, err
	}
	return recurse.Node{Proof: p, IsLeaf: false}, nil
}

// VerifyRoot verifies an accumulator tree by its root node alone.
func (bc *AccumulatorBranch) VerifyRoot(root recurse.Node) error {
	if root.IsLeaf {
		return bc.Rec.VerifyLeafRoot(root.Proof)
	}
	return bc.Rec.VerifyRoot(root.Proof)
}

// RootSummary extracts the presence flag and summary hash of a root
// proof.
func (bc *AccumulatorBranch) RootSummary(p *plonkish.Proof) (bool, fr.Element) {
	vals := p.Publics()
	return bc.Summary.Idx.PresentOf(vals), bc.Summary.Idx.HashOf(vals)
}

// RootAddress extracts the root's derived address. It fails on a
// malformed proof whose address public exceeds the uint64 range.
func (bc *AccumulatorBranch) RootAddress(p *plonkish.Proof) (treeaddr.Address, error) {
	return bc.Addr.Idx.AddressOf(p.Publics())
}

// RootMeta extracts the propagated metadata vector of a root proof.
func (bc *AccumulatorBranch) RootMeta(p *plonkish.Proof) []fr.Element {
	return bc.Meta.Idx.Get(p.Publics())
}
