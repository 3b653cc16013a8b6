package plonkish

import (
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/yourorg/treezk/internal/logger"
)

// Identity is the fingerprint of one compiled circuit: a digest of its
// gate rows and a commitment to its wire layout, constants and public
// registrations. Two circuits verify each other's proofs only through
// matching identities.
type Identity struct {
	Digest     fr.Element
	Commitment fr.Element
}

// Equal reports whether two identities denote the same compiled circuit.
func (id Identity) Equal(other Identity) bool {
	return id.Digest.Equal(&other.Digest) && id.Commitment.Equal(&other.Commitment)
}

// Circuit is an immutable compiled constraint system. It is created once
// per shape and shared by every prove and verify call.
type Circuit struct {
	kinds  []wireKind
	consts map[Wire]fr.Element
	gates  []gate
	public []Wire
	slots  [][]Wire
	id     Identity
}

// Compile freezes the builder into a Circuit and derives its verifier
// identity. The builder must not be used afterwards.
func (b *Builder) Compile() (*Circuit, error) {
	if b.done {
		return nil, ErrCompiled
	}
	b.done = true

	c := &Circuit{
		kinds:  b.kinds,
		consts: b.consts,
		gates:  b.gates,
		public: b.public,
		slots:  b.slots,
	}
	c.id = c.computeIdentity()

	log := logger.Logger()
	log.Debug().
		Int("gates", len(c.gates)).
		Int("publics", len(c.public)).
		Int("slots", len(c.slots)).
		Str("digest", c.id.Digest.String()).
		Msg("compiled circuit")
	return c, nil
}

// Identity returns the circuit's verifier identity.
func (c *Circuit) Identity() Identity { return c.id }

// NumGates returns the compiled gate count.
func (c *Circuit) NumGates() int { return len(c.gates) }

// NumPublics returns the number of public inputs.
func (c *Circuit) NumPublics() int { return len(c.public) }

// PublicWires returns the ordered public wires. Every subcircuit resolves
// its Indices by scanning this list.
func (c *Circuit) PublicWires() []Wire {
	out := make([]Wire, len(c.public))
	copy(out, c.public)
	return out
}

type identityHasher struct {
	h hash.Hash
}

func newIdentityHasher() *identityHasher {
	return &identityHasher{h: mimc.NewMiMC()}
}

func (ih *identityHasher) elem(e fr.Element) {
	b := e.Bytes()
	ih.h.Write(b[:])
}

func (ih *identityHasher) u64(v uint64) {
	var e fr.Element
	e.SetUint64(v)
	ih.elem(e)
}

// wire encodes a wire handle shifted by one so noWire maps to zero.
func (ih *identityHasher) wire(w Wire) {
	ih.u64(uint64(int64(w) + 1))
}

func (ih *identityHasher) sum() fr.Element {
	var out fr.Element
	out.SetBytes(ih.h.Sum(nil))
	return out
}

func (c *Circuit) computeIdentity() Identity {
	// Digest binds the gate rows.
	dh := newIdentityHasher()
	dh.u64(uint64(len(c.gates)))
	for _, g := range c.gates {
		dh.u64(uint64(g.kind))
		dh.wire(g.a)
		dh.wire(g.b)
		dh.wire(g.o)
		dh.wire(g.r)
		if g.kind == gateArith {
			dh.elem(g.qL)
			dh.elem(g.qR)
			dh.elem(g.qM)
			dh.elem(g.qC)
		}
		if g.kind == gateVerify {
			dh.u64(uint64(g.slot))
			dh.wire(g.expect.Digest)
			dh.wire(g.expect.Commitment)
		}
	}

	// Commitment binds the wire layout, constants, publics and slots.
	ch := newIdentityHasher()
	ch.u64(uint64(len(c.kinds)))
	for w, k := range c.kinds {
		ch.u64(uint64(k))
		if k == wireConstant {
			ch.elem(c.consts[Wire(w)])
		}
	}
	ch.u64(uint64(len(c.public)))
	for _, w := range c.public {
		ch.wire(w)
	}
	ch.u64(uint64(len(c.slots)))
	for _, s := range c.slots {
		ch.u64(uint64(len(s)))
	}

	return Identity{Digest: dh.sum(), Commitment: ch.sum()}
}
