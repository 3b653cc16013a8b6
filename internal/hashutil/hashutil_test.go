package hashutil

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func frOf(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestHash2Deterministic(t *testing.T) {
	a := Hash2(frOf(1), frOf(2))
	b := Hash2(frOf(1), frOf(2))
	c := Hash2(frOf(2), frOf(1))

	require.True(t, a.Equal(&b))
	require.False(t, a.Equal(&c), "compression must be order sensitive")
	require.False(t, a.IsZero())
}

func TestFold(t *testing.T) {
	l, r := frOf(11), frOf(22)
	var zero fr.Element

	present, out := Fold(true, l, true, r)
	want := Hash2(l, r)
	require.True(t, present)
	require.True(t, want.Equal(&out))

	present, out = Fold(true, l, false, zero)
	require.True(t, present)
	require.True(t, l.Equal(&out))

	present, out = Fold(false, zero, true, r)
	require.True(t, present)
	require.True(t, r.Equal(&out))

	present, out = Fold(false, zero, false, zero)
	require.False(t, present)
	require.True(t, out.IsZero())
}

func TestKeccakToField(t *testing.T) {
	payload := []byte("hello")
	var want fr.Element
	want.SetBytes(crypto.Keccak256(payload))

	got := KeccakToField(payload)
	require.True(t, want.Equal(&got))
	require.False(t, got.IsZero())

	other := KeccakToField([]byte("world"))
	require.False(t, got.Equal(&other))
}
