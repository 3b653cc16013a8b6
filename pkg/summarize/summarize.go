// Package summarize maintains a per-node summary hash folding present
// children, forwarding an absent side, with ZERO meaning absence.
//
// A leaf declares a presence flag and a hash and ties them together:
// the hash is zero iff the leaf is absent. That rule disallows a genuine
// zero-valued leaf, an accepted limitation. A branch hashes both
// children's summaries when both are present; otherwise the sum of the
// two hashes forwards the lone present side (or stays ZERO), valid
// because at most one side is non-zero.
package summarize

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/treezk/internal/hashutil"
	"github.com/yourorg/treezk/pkg/indices"
	"github.com/yourorg/treezk/pkg/plonkish"
)

// ErrShapeMismatch reports a branch whose re-derived indices disagree
// with its leaf's.
var ErrShapeMismatch = errors.New("summarize: branch indices disagree with leaf")

// HashOrForward emits the selection rule computing a parent summary from
// two possibly-absent children: H(lHash, rHash) when both present, the
// forwarding sum lHash + rHash otherwise. Selection is the field
// selector, not control flow. Returns the parent's presence and hash.
func HashOrForward(b *plonkish.Builder, lPresent, lHash, rPresent, rHash plonkish.Wire) (present, hash plonkish.Wire) {
	bothPresent := b.And(lPresent, rPresent)
	hashBoth := b.Hash2(lHash, rHash)
	hashAbsent := b.Add(lHash, rHash)
	hash = b.Select(bothPresent, hashBoth, hashAbsent)
	present = b.Or(lPresent, rPresent)
	return present, hash
}

// Indices locates the summary values in a family member's publics.
type Indices struct {
	Present indices.Bool
	Hash    indices.Hash
}

// Equal reports whether two index tables agree.
func (i Indices) Equal(other Indices) bool { return i == other }

// PresentOf extracts the presence flag from a public-input vector.
func (i Indices) PresentOf(values []fr.Element) bool { return i.Present.Get(values) }

// HashOf extracts the summary hash from a public-input vector.
func (i Indices) HashOf(values []fr.Element) fr.Element { return i.Hash.Get(values) }

// LeafInputs holds the leaf's summary wires under construction.
type LeafInputs struct {
	Present plonkish.Wire
	Hash    plonkish.Wire
}

// NewLeafInputs declares the presence flag and summary hash public
// inputs in a caller-owned builder.
func NewLeafInputs(b *plonkish.Builder) LeafInputs {
	return LeafInputs{Present: b.PublicInput(), Hash: b.PublicInput()}
}

// BuildLeaf constrains the flag boolean and the hash zero iff absent.
func (li LeafInputs) BuildLeaf(b *plonkish.Builder) {
	b.AssertBool(li.Present)
	hashIsZero := b.IsZero(li.Hash)
	b.AssertEqual(hashIsZero, b.Not(li.Present))
}

// Leaf is the compiled leaf half of the subcircuit.
type Leaf struct {
	Wires LeafInputs
	Idx   Indices
}

// NewLeaf resolves the leaf's indices after compilation.
func NewLeaf(c *plonkish.Circuit, in LeafInputs) (*Leaf, error) {
	idx, err := resolve(c, in.Present, in.Hash)
	if err != nil {
		return nil, err
	}
	return &Leaf{Wires: in, Idx: idx}, nil
}

func resolve(c *plonkish.Circuit, present, hash plonkish.Wire) (Indices, error) {
	p, err := indices.FindBool(c.PublicWires(), present)
	if err != nil {
		return Indices{}, err
	}
	h, err := indices.FindHash(c.PublicWires(), hash)
	if err != nil {
		return Indices{}, err
	}
	return Indices{Present: p, Hash: h}, nil
}

// SetWitness assigns the leaf's summary. An absent leaf must carry the
// zero hash and a present leaf a non-zero one.
func (l *Leaf) SetWitness(w *plonkish.Witness, present bool, hash fr.Element) {
	w.SetBool(l.Wires.Present, present)
	w.Set(l.Wires.Hash, hash)
}

// SetAbsent assigns the structural-placeholder summary.
func (l *Leaf) SetAbsent(w *plonkish.Witness) {
	var zero fr.Element
	l.SetWitness(w, false, zero)
}

// BranchInputs holds the branch's summary wires under construction.
type BranchInputs struct {
	Present plonkish.Wire
	Hash    plonkish.Wire
}

// NewBranchInputs declares the branch's summary publics.
func NewBranchInputs(b *plonkish.Builder) BranchInputs {
	return BranchInputs{Present: b.PublicInput(), Hash: b.PublicInput()}
}

// BuildBranch reads both children's summaries through the leaf's index
// table and pins the branch's declared summary to their hash-or-forward.
func (bi BranchInputs) BuildBranch(b *plonkish.Builder, leafIdx Indices, leftPub, rightPub []plonkish.Wire) {
	lPresent := leafIdx.Present.In(leftPub)
	lHash := leafIdx.Hash.In(leftPub)
	rPresent := leafIdx.Present.In(rightPub)
	rHash := leafIdx.Hash.In(rightPub)

	present, hash := HashOrForward(b, lPresent, lHash, rPresent, rHash)
	b.AssertEqual(bi.Present, present)
	b.AssertEqual(bi.Hash, hash)
}

// Branch is the compiled branch half of the subcircuit.
type Branch struct {
	Wires   BranchInputs
	Idx     Indices
	leafIdx Indices
}

// NewBranch resolves the branch's indices and checks them against the
// leaf's.
func NewBranch(c *plonkish.Circuit, in BranchInputs, leaf *Leaf) (*Branch, error) {
	idx, err := resolve(c, in.Present, in.Hash)
	if err != nil {
		return nil, err
	}
	if !idx.Equal(leaf.Idx) {
		return nil, fmt.Errorf("%w: leaf %+v, branch %+v", ErrShapeMismatch, leaf.Idx, idx)
	}
	return &Branch{Wires: in, Idx: idx, leafIdx: leaf.Idx}, nil
}

// SetWitness assigns the branch's own summary directly.
func (br *Branch) SetWitness(w *plonkish.Witness, present bool, hash fr.Element) {
	w.SetBool(br.Wires.Present, present)
	w.Set(br.Wires.Hash, hash)
}

// SetWitnessFromChildren derives the branch summary from the two child
// proofs with the out-of-circuit fold and assigns it.
func (br *Branch) SetWitnessFromChildren(w *plonkish.Witness, left, right *plonkish.Proof) {
	lv, rv := left.Publics(), right.Publics()
	present, hash := hashutil.Fold(
		br.leafIdx.PresentOf(lv), br.leafIdx.HashOf(lv),
		br.leafIdx.PresentOf(rv), br.leafIdx.HashOf(rv),
	)
	br.SetWitness(w, present, hash)
}
