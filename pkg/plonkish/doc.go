// Package plonkish is the succinct-proof backend seam of the
// proof-composition layer. It exposes the surface every circuit in the
// repository is written against: wire allocation, plonkish arithmetic
// gates, boolean and zero-test helpers, a two-to-one hash gate, public
// input registration, no-op padding up to the recursion threshold,
// compilation to an immutable circuit with a verifier identity, proving,
// verification, and embedded verification of child proofs.
//
// The engine evaluates and checks the constraint system directly and
// binds each proof to its circuit identity and public inputs through a
// MiMC transcript attestation. That attestation stands in for a full
// polynomial-commitment argument; a production prover replaces this
// package behind the same surface without touching host code.
//
// A Builder is exclusively owned by the building goroutine. Compiled
// circuits and their identities are immutable and safe for concurrent
// proving, each prove call owning its private Witness.
package plonkish
