// Package seedval seeds a summarized tree from one externally known
// value rather than from hashed children: a leaf equates its summary
// hash directly to the given value, or to ZERO when absent. Branches of
// a seeded tree are ordinary summarization branches, so the resolved
// index table is the summarize one and composes with it directly.
//
// A present zero value is unrepresentable, the same limitation the
// summarization rule carries.
package seedval

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/treezk/pkg/indices"
	"github.com/yourorg/treezk/pkg/plonkish"
	"github.com/yourorg/treezk/pkg/summarize"
)

// LeafInputs holds the leaf's wires under construction. Present and Hash
// are public; the seed value stays a private input equated to the hash.
type LeafInputs struct {
	Present plonkish.Wire
	Hash    plonkish.Wire
	Value   plonkish.Wire
}

// NewLeafInputs declares the summary publics and the private seed value
// in a caller-owned builder.
func NewLeafInputs(b *plonkish.Builder) LeafInputs {
	return LeafInputs{
		Present: b.PublicInput(),
		Hash:    b.PublicInput(),
		Value:   b.SecretInput(),
	}
}

// BuildLeaf constrains the summary hash to the seed value when present
// and to ZERO when absent, and ties zero-ness to the presence flag.
func (li LeafInputs) BuildLeaf(b *plonkish.Builder) {
	b.AssertBool(li.Present)
	b.AssertEqual(li.Hash, b.Select(li.Present, li.Value, b.Zero()))
	hashIsZero := b.IsZero(li.Hash)
	b.AssertEqual(hashIsZero, b.Not(li.Present))
}

// Leaf is the compiled leaf. Its index table is a summarize table, so a
// seeded tree folds upward with summarize branches unchanged.
type Leaf struct {
	Wires LeafInputs
	Idx   summarize.Indices
}

// NewLeaf resolves the leaf's indices after compilation.
func NewLeaf(c *plonkish.Circuit, in LeafInputs) (*Leaf, error) {
	p, err := indices.FindBool(c.PublicWires(), in.Present)
	if err != nil {
		return nil, err
	}
	h, err := indices.FindHash(c.PublicWires(), in.Hash)
	if err != nil {
		return nil, err
	}
	return &Leaf{Wires: in, Idx: summarize.Indices{Present: p, Hash: h}}, nil
}

// SetSeed assigns a present leaf carrying value as its summary hash.
func (l *Leaf) SetSeed(w *plonkish.Witness, value fr.Element) {
	w.SetBool(l.Wires.Present, true)
	w.Set(l.Wires.Value, value)
	w.Set(l.Wires.Hash, value)
}

// SetAbsent assigns the structural-placeholder leaf.
func (l *Leaf) SetAbsent(w *plonkish.Witness) {
	var zero fr.Element
	w.SetBool(l.Wires.Present, false)
	w.Set(l.Wires.Value, zero)
	w.Set(l.Wires.Hash, zero)
}
