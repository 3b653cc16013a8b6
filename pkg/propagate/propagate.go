// Package propagate proves that a fixed-width value vector is identical
// across every leaf of a tree. Leaves declare the vector public with no
// further constraint; branches pin both children's vectors to their own.
// There is no presence concept: the subcircuit assumes a fully populated
// tree, and any mismatch makes the containing branch unsatisfiable.
package propagate

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/treezk/pkg/indices"
	"github.com/yourorg/treezk/pkg/plonkish"
)

// Indices locates the propagated vector in a family member's publics.
type Indices struct {
	Values indices.Vector
}

// Equal reports whether two index tables agree.
func (i Indices) Equal(other Indices) bool {
	return i.Values.Equal(other.Values)
}

// Get extracts the propagated vector from a public-input vector.
func (i Indices) Get(values []fr.Element) []fr.Element {
	return i.Values.Get(values)
}

// LeafInputs holds the leaf's vector wires under construction.
type LeafInputs struct {
	Values []plonkish.Wire
}

// NewLeafInputs declares a width-wide public vector in a caller-owned
// builder.
func NewLeafInputs(b *plonkish.Builder, width int) LeafInputs {
	ws := make([]plonkish.Wire, width)
	for i := range ws {
		ws[i] = b.PublicInput()
	}
	return LeafInputs{Values: ws}
}

// BuildLeaf adds the leaf constraints. Declaration is the whole leaf
// statement, so there are none.
func (li LeafInputs) BuildLeaf(b *plonkish.Builder) {}

// Leaf is the compiled leaf half of the subcircuit.
type Leaf struct {
	Wires LeafInputs
	Idx   Indices
}

// NewLeaf resolves the leaf's indices after compilation.
func NewLeaf(c *plonkish.Circuit, in LeafInputs) (*Leaf, error) {
	vec, err := indices.FindVector(c.PublicWires(), in.Values)
	if err != nil {
		return nil, err
	}
	return &Leaf{Wires: in, Idx: Indices{Values: vec}}, nil
}

// SetWitness assigns the leaf's vector.
func (l *Leaf) SetWitness(w *plonkish.Witness, values []fr.Element) error {
	if len(values) != len(l.Wires.Values) {
		return fmt.Errorf("propagate: want %d values, got %d", len(l.Wires.Values), len(values))
	}
	for i, wire := range l.Wires.Values {
		w.Set(wire, values[i])
	}
	return nil
}

// BranchInputs holds the branch's vector wires under construction.
type BranchInputs struct {
	Values []plonkish.Wire
}

// NewBranchInputs declares the branch's public vector.
func NewBranchInputs(b *plonkish.Builder, width int) BranchInputs {
	ws := make([]plonkish.Wire, width)
	for i := range ws {
		ws[i] = b.PublicInput()
	}
	return BranchInputs{Values: ws}
}

// BuildBranch constrains left == self == right elementwise, reading each
// child's vector through the leaf's index table.
func (bi BranchInputs) BuildBranch(b *plonkish.Builder, leafIdx Indices, leftPub, rightPub []plonkish.Wire) {
	left := leafIdx.Values.In(leftPub)
	right := leafIdx.Values.In(rightPub)
	for i, own := range bi.Values {
		b.AssertEqual(left[i], own)
		b.AssertEqual(right[i], own)
	}
}

// Branch is the compiled branch half of the subcircuit.
type Branch struct {
	Wires BranchInputs
	Idx   Indices
}

// NewBranch resolves the branch's indices and checks them against the
// leaf's.
func NewBranch(c *plonkish.Circuit, in BranchInputs, leaf *Leaf) (*Branch, error) {
	vec, err := indices.FindVector(c.PublicWires(), in.Values)
	if err != nil {
		return nil, err
	}
	got := Indices{Values: vec}
	if !got.Equal(leaf.Idx) {
		return nil, fmt.Errorf("%w: leaf %v, branch %v",
			ErrShapeMismatch, leaf.Idx.Values, got.Values)
	}
	return &Branch{Wires: in, Idx: got}, nil
}

// ErrShapeMismatch reports a branch whose re-derived indices disagree
// with its leaf's.
var ErrShapeMismatch = errors.New("propagate: branch indices disagree with leaf")

// SetWitness assigns the branch's own vector, which must match both
// children for the branch to prove.
func (br *Branch) SetWitness(w *plonkish.Witness, values []fr.Element) error {
	if len(values) != len(br.Wires.Values) {
		return fmt.Errorf("propagate: want %d values, got %d", len(br.Wires.Values), len(values))
	}
	for i, wire := range br.Wires.Values {
		w.Set(wire, values[i])
	}
	return nil
}
