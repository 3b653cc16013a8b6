package plonkish

import "errors"

var (
	// ErrUnsatisfied reports a witness that violates a constraint. This is
	// the intended enforcement path of the invariant subcircuits, not a bug.
	ErrUnsatisfied = errors.New("plonkish: constraint system unsatisfied")

	// ErrMissingAssignment reports an input wire with no witness value.
	ErrMissingAssignment = errors.New("plonkish: input wire has no assignment")

	// ErrMissingProof reports a proof slot with no bound child proof.
	ErrMissingProof = errors.New("plonkish: proof slot has no bound proof")

	// ErrProofMismatch reports a bound child proof whose public inputs
	// disagree with the slot's assigned wires.
	ErrProofMismatch = errors.New("plonkish: bound proof does not match slot publics")

	// ErrVerifyFailed reports a proof that fails verification against the
	// expected circuit identity.
	ErrVerifyFailed = errors.New("plonkish: proof verification failed")

	// ErrCompiled reports use of a builder after Compile.
	ErrCompiled = errors.New("plonkish: builder already compiled")

	// ErrShape reports a structural mismatch, e.g. binding a proof with the
	// wrong number of public inputs to a slot.
	ErrShape = errors.New("plonkish: shape mismatch")
)
