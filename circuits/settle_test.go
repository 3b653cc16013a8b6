package circuits_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/test"

	"github.com/yourorg/treezk/circuits"
	"github.com/yourorg/treezk/internal/hashutil"
)

func frOf(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestSettleBothPresent(t *testing.T) {
	assert := test.NewAssert(t)

	l, r := frOf(7), frOf(8)
	root := hashutil.Hash2(l, r)

	w := circuits.SettleCircuit{
		Root:         root,
		LeftPresent:  1,
		LeftHash:     l,
		RightPresent: 1,
		RightHash:    r,
	}
	assert.ProverSucceeded(new(circuits.SettleCircuit), &w, test.WithCurves(circuits.Curve()))
}

func TestSettleForwardsLoneSide(t *testing.T) {
	assert := test.NewAssert(t)

	l := frOf(7)
	w := circuits.SettleCircuit{
		Root:         l,
		LeftPresent:  1,
		LeftHash:     l,
		RightPresent: 0,
		RightHash:    0,
	}
	assert.ProverSucceeded(new(circuits.SettleCircuit), &w, test.WithCurves(circuits.Curve()))

	r := frOf(9)
	w = circuits.SettleCircuit{
		Root:         r,
		LeftPresent:  0,
		LeftHash:     0,
		RightPresent: 1,
		RightHash:    r,
	}
	assert.ProverSucceeded(new(circuits.SettleCircuit), &w, test.WithCurves(circuits.Curve()))
}

func TestSettleRejectsWrongRoot(t *testing.T) {
	assert := test.NewAssert(t)

	l, r := frOf(7), frOf(8)
	w := circuits.SettleCircuit{
		Root:         frOf(1234),
		LeftPresent:  1,
		LeftHash:     l,
		RightPresent: 1,
		RightHash:    r,
	}
	assert.ProverFailed(new(circuits.SettleCircuit), &w, test.WithCurves(circuits.Curve()))
}

func TestSettleRejectsNonBooleanFlag(t *testing.T) {
	assert := test.NewAssert(t)

	l, r := frOf(7), frOf(8)
	w := circuits.SettleCircuit{
		Root:         hashutil.Hash2(l, r),
		LeftPresent:  2,
		LeftHash:     l,
		RightPresent: 1,
		RightHash:    r,
	}
	assert.ProverFailed(new(circuits.SettleCircuit), &w, test.WithCurves(circuits.Curve()))
}
