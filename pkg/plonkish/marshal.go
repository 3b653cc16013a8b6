package plonkish

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"
)

// proofWire is the CBOR wire form of a Proof. Field elements travel as
// canonical 32-byte big-endian encodings.
type proofWire struct {
	Publics [][]byte `cbor:"1,keyasint"`
	Attest  []byte   `cbor:"2,keyasint"`
}

// MarshalBinary encodes the proof as CBOR.
func (p *Proof) MarshalBinary() ([]byte, error) {
	w := proofWire{Publics: make([][]byte, len(p.publics))}
	for i, e := range p.publics {
		b := e.Bytes()
		w.Publics[i] = b[:]
	}
	a := p.attest.Bytes()
	w.Attest = a[:]
	return cbor.Marshal(w)
}

// UnmarshalBinary decodes a CBOR proof, rejecting non-canonical field
// element encodings.
func (p *Proof) UnmarshalBinary(data []byte) error {
	var w proofWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode proof: %w", err)
	}
	publics := make([]fr.Element, len(w.Publics))
	for i, b := range w.Publics {
		if err := publics[i].SetBytesCanonical(b); err != nil {
			return fmt.Errorf("decode proof public %d: %w", i, err)
		}
	}
	var attest fr.Element
	if err := attest.SetBytesCanonical(w.Attest); err != nil {
		return fmt.Errorf("decode proof attestation: %w", err)
	}
	p.publics = publics
	p.attest = attest
	return nil
}
