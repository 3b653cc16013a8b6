package circuits

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// Curve returns the curve the settlement circuit is compiled over. Its
// scalar field is the field the whole composition layer works in.
func Curve() ecc.ID { return ecc.BN254 }

// SettleCircuit re-derives one hash-or-forward step inside an outer
// SNARK, binding a disclosed root summary to its two child summaries.
// The in-circuit MiMC matches the out-of-circuit compression used by the
// composition layer, so a root produced there settles here unchanged.
type SettleCircuit struct {
	Root frontend.Variable `gnark:",public"`

	LeftPresent  frontend.Variable
	LeftHash     frontend.Variable
	RightPresent frontend.Variable
	RightHash    frontend.Variable
}

// Define declares the settlement constraints.
func (c *SettleCircuit) Define(api frontend.API) error {
	api.AssertIsBoolean(c.LeftPresent)
	api.AssertIsBoolean(c.RightPresent)

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Write(c.LeftHash, c.RightHash)

	bothPresent := api.Mul(c.LeftPresent, c.RightPresent)
	folded := api.Select(bothPresent, h.Sum(), api.Add(c.LeftHash, c.RightHash))
	api.AssertIsEqual(c.Root, folded)
	return nil
}
