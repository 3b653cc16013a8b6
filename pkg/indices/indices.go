// Package indices records where each semantic value of a subcircuit
// lives inside a compiled circuit's flat public-input vector. Every other
// component is generic over these offsets and never hard-codes a
// position: a branch locates a child's values through the child's own
// index table.
//
// Index tables are resolved once per compiled circuit, by a linear scan
// of its public wires, and are immutable configuration afterwards.
package indices

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/treezk/pkg/plonkish"
)

// ErrNotPublic reports a handle that was never registered as a public
// input. This is a host-circuit wiring bug and fails circuit setup.
var ErrNotPublic = errors.New("indices: wire was never made public")

// Find returns the public-input offset of handle within the ordered
// public wire list.
func Find(publics []plonkish.Wire, handle plonkish.Wire) (int, error) {
	for i, w := range publics {
		if w == handle {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: wire %d", ErrNotPublic, handle)
}

// Scalar locates one field element.
type Scalar int

// FindScalar resolves the offset of handle.
func FindScalar(publics []plonkish.Wire, handle plonkish.Wire) (Scalar, error) {
	off, err := Find(publics, handle)
	return Scalar(off), err
}

// Get reads the located value from a public vector.
func (s Scalar) Get(values []fr.Element) fr.Element { return values[s] }

// Set writes the located value into a public vector.
func (s Scalar) Set(values []fr.Element, v fr.Element) { values[s] = v }

// In returns the located wire within a child's public wire vector.
func (s Scalar) In(wires []plonkish.Wire) plonkish.Wire { return wires[s] }

// Bool locates one boolean-constrained element.
type Bool int

// FindBool resolves the offset of handle.
func FindBool(publics []plonkish.Wire, handle plonkish.Wire) (Bool, error) {
	off, err := Find(publics, handle)
	return Bool(off), err
}

// Get reads the located flag; any value other than one reads as false.
func (b Bool) Get(values []fr.Element) bool { return values[b].IsOne() }

// Set writes the located flag.
func (b Bool) Set(values []fr.Element, v bool) {
	if v {
		values[b].SetOne()
	} else {
		values[b].SetZero()
	}
}

// In returns the located wire within a child's public wire vector.
func (b Bool) In(wires []plonkish.Wire) plonkish.Wire { return wires[b] }

// Hash locates one digest element.
type Hash int

// FindHash resolves the offset of handle.
func FindHash(publics []plonkish.Wire, handle plonkish.Wire) (Hash, error) {
	off, err := Find(publics, handle)
	return Hash(off), err
}

// Get reads the located digest.
func (h Hash) Get(values []fr.Element) fr.Element { return values[h] }

// Set writes the located digest.
func (h Hash) Set(values []fr.Element, v fr.Element) { values[h] = v }

// In returns the located wire within a child's public wire vector.
func (h Hash) In(wires []plonkish.Wire) plonkish.Wire { return wires[h] }

// Identity locates a two-element verifier identity.
type Identity struct {
	Digest     int
	Commitment int
}

// FindIdentity resolves the offsets of an identity's wires.
func FindIdentity(publics []plonkish.Wire, handle plonkish.IdentityWires) (Identity, error) {
	d, err := Find(publics, handle.Digest)
	if err != nil {
		return Identity{}, err
	}
	c, err := Find(publics, handle.Commitment)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Digest: d, Commitment: c}, nil
}

// Get reads the located identity.
func (i Identity) Get(values []fr.Element) plonkish.Identity {
	return plonkish.Identity{Digest: values[i.Digest], Commitment: values[i.Commitment]}
}

// Set writes the located identity.
func (i Identity) Set(values []fr.Element, id plonkish.Identity) {
	values[i.Digest] = id.Digest
	values[i.Commitment] = id.Commitment
}

// In returns the located identity wires within a child's public vector.
func (i Identity) In(wires []plonkish.Wire) plonkish.IdentityWires {
	return plonkish.IdentityWires{Digest: wires[i.Digest], Commitment: wires[i.Commitment]}
}

// Vector locates a fixed-width run of field elements.
type Vector []int

// FindVector resolves the offsets of each handle in order.
func FindVector(publics []plonkish.Wire, handles []plonkish.Wire) (Vector, error) {
	out := make(Vector, len(handles))
	for i, h := range handles {
		off, err := Find(publics, h)
		if err != nil {
			return nil, err
		}
		out[i] = off
	}
	return out, nil
}

// Get reads the located values.
func (v Vector) Get(values []fr.Element) []fr.Element {
	out := make([]fr.Element, len(v))
	for i, off := range v {
		out[i] = values[off]
	}
	return out
}

// Set writes the located values.
func (v Vector) Set(values []fr.Element, vals []fr.Element) error {
	if len(vals) != len(v) {
		return fmt.Errorf("indices: vector width %d, got %d values", len(v), len(vals))
	}
	for i, off := range v {
		values[off] = vals[i]
	}
	return nil
}

// In returns the located wires within a child's public wire vector.
func (v Vector) In(wires []plonkish.Wire) []plonkish.Wire {
	out := make([]plonkish.Wire, len(v))
	for i, off := range v {
		out[i] = wires[off]
	}
	return out
}

// Equal reports whether two vectors locate the same offsets.
func (v Vector) Equal(other Vector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}
