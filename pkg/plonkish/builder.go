package plonkish

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// RecursionGateFloor is the minimum gate count of any circuit taking part
// in unbounded recursion. Padding rounds every circuit in a recursive
// family up to the next power of two at or above this floor so leaves and
// branches share one size and stay mutually verifiable at any depth.
const RecursionGateFloor = 1024

// Wire is a handle to one value inside a circuit under construction.
type Wire int

// noWire marks an unused gate operand.
const noWire Wire = -1

type wireKind uint8

const (
	wireConstant wireKind = iota
	wireInput
	wireInternal
)

type gateKind uint8

const (
	gateArith gateKind = iota
	gateIsZero
	gateHalve
	gateHash2
	gateNoop
	gateVerify
)

// gate is one row of the constraint system. Arithmetic gates enforce
// qL*a + qR*b + qM*a*b + qC == o (or == 0 when there is no output wire).
type gate struct {
	kind           gateKind
	qL, qR, qM, qC fr.Element
	a, b, o        Wire
	r              Wire // halve: remainder output
	hasOut         bool
	slot           int // verify: proof slot index
	expect         IdentityWires
}

// ProofSlot holds the wires carrying one embedded child proof's public
// inputs inside a parent circuit.
type ProofSlot struct {
	index   int
	Publics []Wire
}

// IdentityWires is the in-circuit representation of a verifier identity.
type IdentityWires struct {
	Digest     Wire
	Commitment Wire
}

// Builder accumulates gates, inputs and public registrations for one
// circuit. It must not be shared between goroutines.
type Builder struct {
	kinds   []wireKind
	consts  map[Wire]fr.Element
	constOf map[fr.Element]Wire
	gates   []gate
	public  []Wire
	slots   [][]Wire
	done    bool
}

// NewBuilder returns an empty circuit builder.
func NewBuilder() *Builder {
	return &Builder{
		consts:  make(map[Wire]fr.Element),
		constOf: make(map[fr.Element]Wire),
	}
}

func (b *Builder) newWire(k wireKind) Wire {
	w := Wire(len(b.kinds))
	b.kinds = append(b.kinds, k)
	return w
}

// Constant returns a wire fixed to v. Constants are deduplicated.
func (b *Builder) Constant(v fr.Element) Wire {
	if w, ok := b.constOf[v]; ok {
		return w
	}
	w := b.newWire(wireConstant)
	b.consts[w] = v
	b.constOf[v] = w
	return w
}

// ConstantUint64 returns a wire fixed to v.
func (b *Builder) ConstantUint64(v uint64) Wire {
	var e fr.Element
	e.SetUint64(v)
	return b.Constant(e)
}

// Zero returns the constant 0 wire.
func (b *Builder) Zero() Wire { return b.ConstantUint64(0) }

// One returns the constant 1 wire.
func (b *Builder) One() Wire { return b.ConstantUint64(1) }

// PublicInput allocates an input wire and appends it to the circuit's
// ordered public-input list.
func (b *Builder) PublicInput() Wire {
	w := b.newWire(wireInput)
	b.public = append(b.public, w)
	return w
}

// SecretInput allocates a private input wire.
func (b *Builder) SecretInput() Wire {
	return b.newWire(wireInput)
}

// InputVector allocates n private input wires.
func (b *Builder) InputVector(n int) []Wire {
	ws := make([]Wire, n)
	for i := range ws {
		ws[i] = b.SecretInput()
	}
	return ws
}

func (b *Builder) arith(qL, qR, qM, qC fr.Element, a, bb Wire, out bool) Wire {
	g := gate{kind: gateArith, qL: qL, qR: qR, qM: qM, qC: qC, a: a, b: bb, o: noWire, r: noWire, hasOut: out}
	if out {
		g.o = b.newWire(wireInternal)
	}
	b.gates = append(b.gates, g)
	return g.o
}

var (
	frZero     fr.Element
	frOne      = newElementUint64(1)
	frTwo      = newElementUint64(2)
	frMinusOne = newElementNeg(1)
)

func newElementUint64(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func newElementNeg(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	e.Neg(&e)
	return e
}

// Add returns a wire constrained to x + y.
func (b *Builder) Add(x, y Wire) Wire {
	return b.arith(frOne, frOne, frZero, frZero, x, y, true)
}

// Sub returns a wire constrained to x - y.
func (b *Builder) Sub(x, y Wire) Wire {
	return b.arith(frOne, frMinusOne, frZero, frZero, x, y, true)
}

// Mul returns a wire constrained to x * y.
func (b *Builder) Mul(x, y Wire) Wire {
	return b.arith(frZero, frZero, frOne, frZero, x, y, true)
}

// AddConst returns a wire constrained to x + c.
func (b *Builder) AddConst(x Wire, c fr.Element) Wire {
	return b.arith(frOne, frZero, frZero, c, x, x, true)
}

// MulConst returns a wire constrained to c * x.
func (b *Builder) MulConst(x Wire, c fr.Element) Wire {
	return b.arith(c, frZero, frZero, frZero, x, x, true)
}

// Not returns 1 - x. The caller is responsible for x being boolean.
func (b *Builder) Not(x Wire) Wire {
	return b.arith(frMinusOne, frZero, frZero, frOne, x, x, true)
}

// And returns x AND y for boolean wires.
func (b *Builder) And(x, y Wire) Wire {
	return b.Mul(x, y)
}

// Or returns x OR y for boolean wires, as x + y - x*y.
func (b *Builder) Or(x, y Wire) Wire {
	return b.arith(frOne, frOne, frMinusOne, frZero, x, y, true)
}

// Select returns ifTrue when cond is 1 and ifFalse when cond is 0, via the
// field selector ifFalse + cond*(ifTrue - ifFalse). cond must be boolean.
func (b *Builder) Select(cond, ifTrue, ifFalse Wire) Wire {
	d := b.Sub(ifTrue, ifFalse)
	m := b.Mul(cond, d)
	return b.Add(ifFalse, m)
}

// IsZero returns a boolean wire that is 1 iff x evaluates to 0.
func (b *Builder) IsZero(x Wire) Wire {
	o := b.newWire(wireInternal)
	b.gates = append(b.gates, gate{kind: gateIsZero, a: x, b: noWire, o: o, r: noWire})
	return o
}

// Halve returns (q, r) with x == 2*q + r and r boolean, interpreting x as
// an integer in [0, p). q is the floored half of x.
func (b *Builder) Halve(x Wire) (q, r Wire) {
	q = b.newWire(wireInternal)
	r = b.newWire(wireInternal)
	b.gates = append(b.gates, gate{kind: gateHalve, a: x, b: noWire, o: q, r: r})
	return q, r
}

// Hash2 returns the two-to-one MiMC compression of (x, y), matching
// hashutil.Hash2 outside the circuit.
func (b *Builder) Hash2(x, y Wire) Wire {
	o := b.newWire(wireInternal)
	b.gates = append(b.gates, gate{kind: gateHash2, a: x, b: y, o: o, r: noWire})
	return o
}

// AssertZero constrains x == 0.
func (b *Builder) AssertZero(x Wire) {
	b.arith(frOne, frZero, frZero, frZero, x, x, false)
}

// AssertEqual constrains x == y.
func (b *Builder) AssertEqual(x, y Wire) {
	b.arith(frOne, frMinusOne, frZero, frZero, x, y, false)
}

// AssertBool constrains x to {0, 1} via x*x - x == 0.
func (b *Builder) AssertBool(x Wire) {
	b.arith(frMinusOne, frZero, frOne, frZero, x, x, false)
}

// AddNoop appends one inert padding gate.
func (b *Builder) AddNoop() {
	b.gates = append(b.gates, gate{kind: gateNoop, a: noWire, b: noWire, o: noWire, r: noWire})
}

// PadToRecursionThreshold pads the circuit with no-op gates to the next
// power of two at or above RecursionGateFloor. Every circuit of a
// recursive family must pad through this call, after all other
// constraints have been added, so the family shares one size.
func (b *Builder) PadToRecursionThreshold() {
	target := RecursionGateFloor
	for target < len(b.gates) {
		target <<= 1
	}
	for len(b.gates) < target {
		b.AddNoop()
	}
}

// AddProofSlot declares an embedded child proof carrying numPublics
// public inputs and returns the wires those publics are exposed on.
func (b *Builder) AddProofSlot(numPublics int) ProofSlot {
	s := ProofSlot{index: len(b.slots), Publics: b.InputVector(numPublics)}
	b.slots = append(b.slots, s.Publics)
	return s
}

// VerifyProof adds an embedded verification of the proof bound to slot
// against the verifier identity carried by expect. A bound proof whose
// identity differs from the evaluated expectation makes proving fail.
func (b *Builder) VerifyProof(slot ProofSlot, expect IdentityWires) {
	b.gates = append(b.gates, gate{
		kind:   gateVerify,
		a:      noWire,
		b:      noWire,
		o:      noWire,
		r:      noWire,
		slot:   slot.index,
		expect: expect,
	})
}

// NumGates returns the current gate count.
func (b *Builder) NumGates() int { return len(b.gates) }
