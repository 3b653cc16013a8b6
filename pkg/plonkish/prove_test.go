package plonkish

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// innerCircuit compiles a one-public circuit whose public must be the
// double of a secret input.
func innerCircuit(t *testing.T, tweak bool) (*Circuit, Wire, Wire) {
	t.Helper()
	b := NewBuilder()
	x := b.SecretInput()
	out := b.PublicInput()
	double := b.Add(x, x)
	if tweak {
		double = b.Add(double, b.Zero())
	}
	b.AssertEqual(out, double)
	c, err := b.Compile()
	require.NoError(t, err)
	return c, x, out
}

func TestEmbeddedVerification(t *testing.T) {
	inner, x, out := innerCircuit(t, false)

	w := NewWitness()
	w.SetUint64(x, 21)
	w.SetUint64(out, 42)
	childProof, err := inner.Prove(w)
	require.NoError(t, err)

	b := NewBuilder()
	slot := b.AddProofSlot(inner.NumPublics())
	expect := IdentityWires{
		Digest:     b.Constant(inner.Identity().Digest),
		Commitment: b.Constant(inner.Identity().Commitment),
	}
	b.VerifyProof(slot, expect)
	outer, err := b.Compile()
	require.NoError(t, err)

	ow := NewWitness()
	require.NoError(t, ow.SetProof(slot, childProof))
	_, err = outer.Prove(ow)
	require.NoError(t, err)
}

func TestEmbeddedVerificationRejectsForeignProof(t *testing.T) {
	inner, _, _ := innerCircuit(t, false)
	foreign, fx, fout := innerCircuit(t, true)
	require.False(t, inner.Identity().Equal(foreign.Identity()))

	w := NewWitness()
	w.SetUint64(fx, 21)
	w.SetUint64(fout, 42)
	foreignProof, err := foreign.Prove(w)
	require.NoError(t, err)

	b := NewBuilder()
	slot := b.AddProofSlot(inner.NumPublics())
	expect := IdentityWires{
		Digest:     b.Constant(inner.Identity().Digest),
		Commitment: b.Constant(inner.Identity().Commitment),
	}
	b.VerifyProof(slot, expect)
	outer, err := b.Compile()
	require.NoError(t, err)

	ow := NewWitness()
	require.NoError(t, ow.SetProof(slot, foreignProof))
	_, err = outer.Prove(ow)
	require.ErrorIs(t, err, ErrVerifyFailed)
}

func TestEmbeddedVerificationRejectsDivergedSlot(t *testing.T) {
	inner, x, out := innerCircuit(t, false)

	w := NewWitness()
	w.SetUint64(x, 21)
	w.SetUint64(out, 42)
	childProof, err := inner.Prove(w)
	require.NoError(t, err)

	b := NewBuilder()
	slot := b.AddProofSlot(inner.NumPublics())
	expect := IdentityWires{
		Digest:     b.Constant(inner.Identity().Digest),
		Commitment: b.Constant(inner.Identity().Commitment),
	}
	b.VerifyProof(slot, expect)
	outer, err := b.Compile()
	require.NoError(t, err)

	// Bind the proof, then overwrite the slot wire with a diverging value.
	ow := NewWitness()
	require.NoError(t, ow.SetProof(slot, childProof))
	ow.SetUint64(slot.Publics[0], 43)
	_, err = outer.Prove(ow)
	require.ErrorIs(t, err, ErrProofMismatch)
}

func TestMissingProof(t *testing.T) {
	inner, _, _ := innerCircuit(t, false)

	b := NewBuilder()
	slot := b.AddProofSlot(inner.NumPublics())
	expect := IdentityWires{
		Digest:     b.Constant(inner.Identity().Digest),
		Commitment: b.Constant(inner.Identity().Commitment),
	}
	b.VerifyProof(slot, expect)
	outer, err := b.Compile()
	require.NoError(t, err)

	ow := NewWitness()
	for _, wire := range slot.Publics {
		ow.SetUint64(wire, 0)
	}
	_, err = outer.Prove(ow)
	require.ErrorIs(t, err, ErrMissingProof)
}

func TestSetProofShapeMismatch(t *testing.T) {
	inner, x, out := innerCircuit(t, false)

	w := NewWitness()
	w.SetUint64(x, 1)
	w.SetUint64(out, 2)
	p, err := inner.Prove(w)
	require.NoError(t, err)

	b := NewBuilder()
	slot := b.AddProofSlot(inner.NumPublics() + 1)
	require.Error(t, NewWitness().SetProof(slot, p))
	require.ErrorIs(t, NewWitness().SetProof(slot, p), ErrShape)
	require.ErrorIs(t, NewWitness().SetProof(slot, nil), ErrMissingProof)
}

func TestVerifyWithIdentity(t *testing.T) {
	c, x, out := innerCircuit(t, false)
	other, _, _ := innerCircuit(t, true)

	w := NewWitness()
	w.SetUint64(x, 5)
	w.SetUint64(out, 10)
	p, err := c.Prove(w)
	require.NoError(t, err)

	require.NoError(t, c.Verify(p))
	require.NoError(t, VerifyWithIdentity(c.Identity(), p))
	require.ErrorIs(t, VerifyWithIdentity(other.Identity(), p), ErrVerifyFailed)
	require.ErrorIs(t, VerifyWithIdentity(c.Identity(), nil), ErrVerifyFailed)
}

func TestProofMarshalRoundtrip(t *testing.T) {
	c, x, out := innerCircuit(t, false)

	w := NewWitness()
	w.SetUint64(x, 7)
	w.SetUint64(out, 14)
	p, err := c.Prove(w)
	require.NoError(t, err)

	data, err := p.MarshalBinary()
	require.NoError(t, err)

	var back Proof
	require.NoError(t, back.UnmarshalBinary(data))
	require.Equal(t, p.NumPublics(), back.NumPublics())
	require.NoError(t, c.Verify(&back))

	// A tampered public no longer matches the attestation.
	var tampered Proof
	require.NoError(t, tampered.UnmarshalBinary(data))
	tampered.publics[0] = frOf(15)
	require.ErrorIs(t, c.Verify(&tampered), ErrVerifyFailed)

	require.Error(t, new(Proof).UnmarshalBinary([]byte("not cbor")))
}
