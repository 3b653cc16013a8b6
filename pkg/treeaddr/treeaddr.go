// Package treeaddr proves that each node of a tree corresponds to one
// leaf position of a complete binary tree, or is absent, and that
// siblings under one branch are address-consistent: the left child must
// be the even sibling and the right child the odd sibling of a shared
// parent position. Swapped or mismatched siblings make the exact
// halving constraints unsatisfiable.
//
// Absence is the -1 field sentinel inside constraints only; host code
// works with the explicit optional Address type.
package treeaddr

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/treezk/pkg/indices"
	"github.com/yourorg/treezk/pkg/plonkish"
)

var (
	// ErrShapeMismatch reports a branch whose re-derived indices disagree
	// with its leaf's.
	ErrShapeMismatch = errors.New("treeaddr: branch indices disagree with leaf")

	// ErrSiblingMismatch reports two child addresses that do not share a
	// parent position with left even and right odd.
	ErrSiblingMismatch = errors.New("treeaddr: children are not address-consistent siblings")

	// ErrAddressRange reports a present in-circuit address that does not
	// fit a uint64 position. The halving constraints never produce one;
	// seeing it means the proof's publics are malformed.
	ErrAddressRange = errors.New("treeaddr: address out of range")
)

// Address is an optional leaf position. The zero value is absent.
type Address struct {
	present bool
	value   uint64
}

// At returns the address of leaf position v.
func At(v uint64) Address { return Address{present: true, value: v} }

// Absent returns the placeholder address.
func Absent() Address { return Address{} }

// Present reports whether the address holds a position.
func (a Address) Present() bool { return a.present }

// Value returns the held position; ok is false for an absent address.
func (a Address) Value() (v uint64, ok bool) { return a.value, a.present }

// sentinel compiles the optional down to the in-circuit encoding: the
// additive inverse of one means absent.
func (a Address) sentinel() fr.Element {
	var e fr.Element
	if !a.present {
		e.SetOne()
		e.Neg(&e)
		return e
	}
	e.SetUint64(a.value)
	return e
}

// fromSentinel lifts an in-circuit address back into the optional type.
// Present addresses must fit a uint64 leaf position.
func fromSentinel(e fr.Element) (Address, error) {
	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)
	if e.Equal(&minusOne) {
		return Absent(), nil
	}
	var v big.Int
	e.BigInt(&v)
	if !v.IsUint64() {
		return Address{}, fmt.Errorf("%w: %s", ErrAddressRange, e.String())
	}
	return At(v.Uint64()), nil
}

// Parent is the out-of-circuit counterpart of the branch constraints:
// two present children must be the even/odd siblings of one parent, a
// lone present child forwards its halved position, two absent children
// stay absent.
func Parent(left, right Address) (Address, error) {
	switch {
	case left.present && right.present:
		if left.value%2 != 0 || right.value != left.value+1 {
			return Address{}, fmt.Errorf("%w: left %d, right %d", ErrSiblingMismatch, left.value, right.value)
		}
		return At(left.value / 2), nil
	case left.present:
		return At(left.value / 2), nil
	case right.present:
		return At(right.value / 2), nil
	default:
		return Absent(), nil
	}
}

// Indices locates the address values in a family member's publics.
type Indices struct {
	Present indices.Bool
	Addr    indices.Scalar
}

// Equal reports whether two index tables agree.
func (i Indices) Equal(other Indices) bool { return i == other }

// AddressOf extracts the optional address from a public-input vector.
// The vector may come from an untrusted proof, so a present address
// outside the uint64 range is an error, not a truncation.
func (i Indices) AddressOf(values []fr.Element) (Address, error) {
	if !i.Present.Get(values) {
		return Absent(), nil
	}
	return fromSentinel(i.Addr.Get(values))
}

// LeafInputs holds the leaf's address wires under construction.
type LeafInputs struct {
	Present plonkish.Wire
	Addr    plonkish.Wire
}

// NewLeafInputs declares the presence flag and address public inputs in
// a caller-owned builder.
func NewLeafInputs(b *plonkish.Builder) LeafInputs {
	return LeafInputs{Present: b.PublicInput(), Addr: b.PublicInput()}
}

// BuildLeaf constrains the flag boolean and ties it to the sentinel:
// present iff the address differs from -1.
func (li LeafInputs) BuildLeaf(b *plonkish.Builder) {
	b.AssertBool(li.Present)
	var one fr.Element
	one.SetOne()
	isSentinel := b.IsZero(b.AddConst(li.Addr, one))
	b.AssertEqual(isSentinel, b.Not(li.Present))
}

// Leaf is the compiled leaf half of the subcircuit.
type Leaf struct {
	Wires LeafInputs
	Idx   Indices
}

// NewLeaf resolves the leaf's indices after compilation.
func NewLeaf(c *plonkish.Circuit, in LeafInputs) (*Leaf, error) {
	idx, err := resolve(c, in.Present, in.Addr)
	if err != nil {
		return nil, err
	}
	return &Leaf{Wires: in, Idx: idx}, nil
}

func resolve(c *plonkish.Circuit, present, addr plonkish.Wire) (Indices, error) {
	p, err := indices.FindBool(c.PublicWires(), present)
	if err != nil {
		return Indices{}, err
	}
	a, err := indices.FindScalar(c.PublicWires(), addr)
	if err != nil {
		return Indices{}, err
	}
	return Indices{Present: p, Addr: a}, nil
}

// SetWitness assigns the leaf's address.
func (l *Leaf) SetWitness(w *plonkish.Witness, addr Address) {
	w.SetBool(l.Wires.Present, addr.present)
	w.Set(l.Wires.Addr, addr.sentinel())
}

// BranchInputs holds the branch's address wires under construction.
type BranchInputs struct {
	Present plonkish.Wire
	Addr    plonkish.Wire
}

// NewBranchInputs declares the branch's address publics.
func NewBranchInputs(b *plonkish.Builder) BranchInputs {
	return BranchInputs{Present: b.PublicInput(), Addr: b.PublicInput()}
}

// BuildBranch adds the sibling-consistency constraints. When both
// children are present the left address must halve exactly (even) and
// the right must be its odd successor under the same parent position.
// A lone present child forwards its floored half; two absent children
// keep the sentinel. requireFullyPopulated is the explicit per-host
// policy forcing both children present on non-root branches.
func (bi BranchInputs) BuildBranch(b *plonkish.Builder, leafIdx Indices, leftPub, rightPub []plonkish.Wire, requireFullyPopulated bool) {
	lPresent := leafIdx.Present.In(leftPub)
	lAddr := leafIdx.Addr.In(leftPub)
	rPresent := leafIdx.Present.In(rightPub)
	rAddr := leafIdx.Addr.In(rightPub)

	lHalf, lParity := b.Halve(lAddr)
	rHalf, rParity := b.Halve(rAddr)
	bothPresent := b.And(lPresent, rPresent)

	// Gated by both-present: left even, right odd, shared parent.
	b.AssertZero(b.Mul(bothPresent, lParity))
	b.AssertZero(b.Mul(bothPresent, b.Not(rParity)))
	b.AssertZero(b.Mul(bothPresent, b.Sub(lHalf, rHalf)))

	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)
	absent := b.Constant(minusOne)

	parent := b.Select(lPresent, lHalf, b.Select(rPresent, rHalf, absent))
	present := b.Or(lPresent, rPresent)

	b.AssertEqual(bi.Present, present)
	b.AssertEqual(bi.Addr, parent)

	if requireFullyPopulated {
		b.AssertEqual(bothPresent, b.One())
	}
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
	idx, err := resolve(c, in.Present, in.Addr)
	if err != nil {
		return nil, err
	}
	if !idx.Equal(leaf.Idx) {
		return nil, fmt.Errorf("%w: leaf %+v, branch %+v", ErrShapeMismatch, leaf.Idx, idx)
	}
	return &Branch{Wires: in, Idx: idx, leafIdx: leaf.Idx}, nil
}

// SetWitness assigns the branch's own address.
func (br *Branch) SetWitness(w *plonkish.Witness, addr Address) {
	w.SetBool(br.Wires.Present, addr.present)
	w.Set(br.Wires.Addr, addr.sentinel())
}

// SetWitnessFromChildren derives the parent address from the two child
// proofs and assigns it. Address-inconsistent children fail here, before
// the constraints would reject them anyway.
func (br *Branch) SetWitnessFromChildren(w *plonkish.Witness, left, right *plonkish.Proof) error {
	l, err := br.leafIdx.AddressOf(left.Publics())
	if err != nil {
		return err
	}
	r, err := br.leafIdx.AddressOf(right.Publics())
	if err != nil {
		return err
	}
	parent, err := Parent(l, r)
	if err != nil {
		return err
	}
	br.SetWitness(w, parent)
	return nil
}
