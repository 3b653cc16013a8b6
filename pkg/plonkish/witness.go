package plonkish

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Witness holds the input assignments and child-proof bindings for one
// prove call. A Witness is not reusable across circuits and must not be
// shared between goroutines.
type Witness struct {
	values map[Wire]fr.Element
	proofs map[int]*Proof
}

// NewWitness returns an empty witness.
func NewWitness() *Witness {
	return &Witness{
		values: make(map[Wire]fr.Element),
		proofs: make(map[int]*Proof),
	}
}

// Set assigns v to an input wire.
func (w *Witness) Set(wire Wire, v fr.Element) {
	w.values[wire] = v
}

// SetUint64 assigns v to an input wire.
func (w *Witness) SetUint64(wire Wire, v uint64) {
	var e fr.Element
	e.SetUint64(v)
	w.Set(wire, e)
}

// SetBool assigns 0 or 1 to an input wire.
func (w *Witness) SetBool(wire Wire, v bool) {
	if v {
		w.SetUint64(wire, 1)
	} else {
		w.SetUint64(wire, 0)
	}
}

// SetProof binds p to the given slot and assigns the child's public
// inputs onto the slot's wires.
func (w *Witness) SetProof(slot ProofSlot, p *Proof) error {
	if p == nil {
		return fmt.Errorf("%w: nil proof for slot %d", ErrMissingProof, slot.index)
	}
	if len(slot.Publics) != p.NumPublics() {
		return fmt.Errorf("%w: slot %d expects %d publics, proof carries %d",
			ErrShape, slot.index, len(slot.Publics), p.NumPublics())
	}
	for i, wire := range slot.Publics {
		w.Set(wire, p.Public(i))
	}
	w.proofs[slot.index] = p
	return nil
}
