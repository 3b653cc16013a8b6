package plonkish

import (
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/yourorg/treezk/internal/hashutil"
	"github.com/yourorg/treezk/internal/logger"
)

// Proof is an immutable succinct certificate: the circuit's ordered
// public inputs plus an attestation element binding them to the verifier
// identity of the circuit that produced them.
type Proof struct {
	publics []fr.Element
	attest  fr.Element
}

// NumPublics returns the number of public inputs the proof carries.
func (p *Proof) NumPublics() int { return len(p.publics) }

// Public returns the i-th public input.
func (p *Proof) Public(i int) fr.Element { return p.publics[i] }

// Publics returns a copy of the ordered public-input vector.
func (p *Proof) Publics() []fr.Element {
	out := make([]fr.Element, len(p.publics))
	copy(out, p.publics)
	return out
}

// Prove evaluates the circuit under w, checks every constraint, runs the
// embedded verification of all bound child proofs, and emits a proof of
// the public inputs. Any violated constraint surfaces as ErrUnsatisfied
// at the offending gate; nothing is retried or swallowed.
func (c *Circuit) Prove(w *Witness) (*Proof, error) {
	start := time.Now()

	vals := make([]fr.Element, len(c.kinds))
	for wire, k := range c.kinds {
		switch k {
		case wireConstant:
			vals[wire] = c.consts[Wire(wire)]
		case wireInput:
			v, ok := w.values[Wire(wire)]
			if !ok {
				return nil, fmt.Errorf("%w: wire %d", ErrMissingAssignment, wire)
			}
			vals[wire] = v
		}
	}

	var scratch big.Int
	for i, g := range c.gates {
		switch g.kind {
		case gateArith:
			var acc, t fr.Element
			acc.Mul(&g.qL, &vals[g.a])
			t.Mul(&g.qR, &vals[g.b])
			acc.Add(&acc, &t)
			t.Mul(&vals[g.a], &vals[g.b])
			t.Mul(&t, &g.qM)
			acc.Add(&acc, &t)
			acc.Add(&acc, &g.qC)
			if g.hasOut {
				vals[g.o] = acc
			} else if !acc.IsZero() {
				return nil, fmt.Errorf("%w: gate %d", ErrUnsatisfied, i)
			}
		case gateIsZero:
			if vals[g.a].IsZero() {
				vals[g.o].SetOne()
			} else {
				vals[g.o].SetZero()
			}
		case gateHalve:
			vals[g.a].BigInt(&scratch)
			if scratch.Bit(0) == 1 {
				vals[g.r].SetOne()
			} else {
				vals[g.r].SetZero()
			}
			scratch.Rsh(&scratch, 1)
			vals[g.o].SetBigInt(&scratch)
		case gateHash2:
			vals[g.o] = hashutil.Hash2(vals[g.a], vals[g.b])
		case gateNoop:
			// padding
		case gateVerify:
			expected := Identity{
				Digest:     vals[g.expect.Digest],
				Commitment: vals[g.expect.Commitment],
			}
			p, ok := w.proofs[g.slot]
			if !ok {
				return nil, fmt.Errorf("%w: slot %d", ErrMissingProof, g.slot)
			}
			for j, wire := range c.slots[g.slot] {
				pv := p.Public(j)
				if !pv.Equal(&vals[wire]) {
					return nil, fmt.Errorf("%w: slot %d public %d", ErrProofMismatch, g.slot, j)
				}
			}
			if err := VerifyWithIdentity(expected, p); err != nil {
				return nil, fmt.Errorf("embedded verification, slot %d: %w", g.slot, err)
			}
		}
	}

	publics := make([]fr.Element, len(c.public))
	for i, wire := range c.public {
		publics[i] = vals[wire]
	}

	proof := &Proof{publics: publics, attest: attest(c.id, publics)}
	log := logger.Logger()
	log.Debug().
		Int("gates", len(c.gates)).
		Dur("took", time.Since(start)).
		Msg("proved circuit")
	return proof, nil
}

// Verify checks p against the circuit's own identity. Verifying a tree
// needs only its root proof; children were checked when the root was
// proved.
func (c *Circuit) Verify(p *Proof) error {
	return VerifyWithIdentity(c.id, p)
}

// VerifyWithIdentity checks that p was produced by the circuit with the
// given identity over exactly its carried public inputs.
func VerifyWithIdentity(id Identity, p *Proof) error {
	if p == nil {
		return fmt.Errorf("%w: nil proof", ErrVerifyFailed)
	}
	want := attest(id, p.publics)
	if !want.Equal(&p.attest) {
		return ErrVerifyFailed
	}
	return nil
}

// attestDomain separates the attestation transcript from other MiMC uses.
const attestDomain = uint64(0x747a6b2d617474) // "tzk-att"

func attest(id Identity, publics []fr.Element) fr.Element {
	h := mimc.NewMiMC()
	write := func(e fr.Element) {
		b := e.Bytes()
		h.Write(b[:])
	}
	var tag fr.Element
	tag.SetUint64(attestDomain)
	write(tag)
	write(id.Digest)
	write(id.Commitment)
	tag.SetUint64(uint64(len(publics)))
	write(tag)
	for _, e := range publics {
		write(e)
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}
