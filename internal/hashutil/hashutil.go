// Package hashutil holds the out-of-circuit mirror of the in-circuit hash
// operations: the MiMC two-to-one compression used for summary hashes, the
// hash-or-forward fold, and the Keccak256 mapping of external payloads into
// the scalar field.
package hashutil

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/ethereum/go-ethereum/crypto"
)

// Hash2 returns MiMC(l, r). The same compression runs inside circuits via
// the hash gate, so summary hashes computed here match in-circuit values.
func Hash2(l, r fr.Element) fr.Element {
	h := mimc.NewMiMC()
	lb := l.Bytes()
	rb := r.Bytes()
	h.Write(lb[:])
	h.Write(rb[:])

	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

// Fold applies the hash-or-forward rule to two possibly-absent summary
// hashes: both present hashes to Hash2(l, r), a lone present side is
// forwarded unchanged, and two absent sides stay ZERO.
func Fold(lPresent bool, l fr.Element, rPresent bool, r fr.Element) (bool, fr.Element) {
	if lPresent && rPresent {
		return true, Hash2(l, r)
	}
	var out fr.Element
	out.Add(&l, &r)
	return lPresent || rPresent, out
}

// KeccakToField maps arbitrary bytes into the scalar field via Keccak256.
// Used to seed leaf summary hashes from external payloads.
func KeccakToField(data []byte) fr.Element {
	var out fr.Element
	out.SetBytes(crypto.Keccak256(data))
	return out
}
