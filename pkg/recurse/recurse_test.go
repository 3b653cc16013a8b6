package recurse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yourorg/treezk/pkg/plonkish"
)

// buildFamily compiles a minimal recursive family carrying nothing but
// the verifier identity. extraGate perturbs the leaf so two families end
// up with distinct identities while keeping the same public shape.
func buildFamily(t *testing.T, extraGate bool) (*Leaf, *Branch) {
	t.Helper()

	lb := plonkish.NewBuilder()
	lin := NewLeafInputs(lb)
	if extraGate {
		lb.AssertZero(lb.Zero())
	}
	lin.BuildLeaf(lb)
	lc, err := lb.Compile()
	require.NoError(t, err)
	leaf, err := NewLeaf(lc, lin)
	require.NoError(t, err)

	bb := plonkish.NewBuilder()
	bin := NewBranchInputs(bb, leaf)
	bin.BuildBranch(bb, leaf)
	bc, err := bb.Compile()
	require.NoError(t, err)
	branch, err := NewBranch(bc, bin, leaf)
	require.NoError(t, err)

	return leaf, branch
}

func proveLeaf(t *testing.T, leaf *Leaf, branchID plonkish.Identity) Node {
	t.Helper()
	w := plonkish.NewWitness()
	leaf.SetWitness(w, branchID)
	p, err := leaf.Circuit.Prove(w)
	require.NoError(t, err)
	return Node{Proof: p, IsLeaf: true}
}

func combiner(branch *Branch) CombineFunc {
	return func(left, right Node) (Node, error) {
		w := plonkish.NewWitness()
		if err := branch.SetWitness(w, left.Proof, right.Proof, left.IsLeaf, right.IsLeaf); err != nil {
			return Node{}, err
		}
		p, err := branch.Circuit.Prove(w)
		if err != nil {
			return Node{}, err
		}
		return Node{Proof: p, IsLeaf: false}, nil
	}
}

func TestLeafAndBranchShareOneSize(t *testing.T) {
	leaf, branch := buildFamily(t, false)
	require.Equal(t, leaf.Circuit.NumGates(), branch.Circuit.NumGates())
	require.Equal(t, leaf.Circuit.NumPublics(), branch.Circuit.NumPublics())
	require.False(t, leaf.Circuit.Identity().Equal(branch.Circuit.Identity()))
}

func TestSingleLeafRoot(t *testing.T) {
	leaf, branch := buildFamily(t, false)
	n := proveLeaf(t, leaf, branch.Circuit.Identity())
	require.NoError(t, branch.VerifyLeafRoot(n.Proof))

	// A leaf declaring a foreign verifier identity is no root of this
	// family.
	stray := proveLeaf(t, leaf, leaf.Circuit.Identity())
	require.ErrorIs(t, branch.VerifyLeafRoot(stray.Proof), plonkish.ErrVerifyFailed)
}

func TestBranchVerifiesAnyChildMix(t *testing.T) {
	leaf, branch := buildFamily(t, false)
	branchID := branch.Circuit.Identity()
	combine := combiner(branch)

	l1 := proveLeaf(t, leaf, branchID)
	l2 := proveLeaf(t, leaf, branchID)
	l3 := proveLeaf(t, leaf, branchID)
	l4 := proveLeaf(t, leaf, branchID)

	// leaf + leaf
	b12, err := combine(l1, l2)
	require.NoError(t, err)
	require.NoError(t, branch.VerifyRoot(b12.Proof))

	// branch + leaf and leaf + branch, same compiled branch circuit
	mixed, err := combine(b12, l3)
	require.NoError(t, err)
	require.NoError(t, branch.VerifyRoot(mixed.Proof))

	mixedFlipped, err := combine(l3, b12)
	require.NoError(t, err)
	require.NoError(t, branch.VerifyRoot(mixedFlipped.Proof))

	// branch + branch
	b34, err := combine(l3, l4)
	require.NoError(t, err)
	root, err := combine(b12, b34)
	require.NoError(t, err)
	require.NoError(t, branch.VerifyRoot(root.Proof))
}

func TestMisdeclaredChildKind(t *testing.T) {
	leaf, branch := buildFamily(t, false)
	branchID := branch.Circuit.Identity()
	combine := combiner(branch)

	l1 := proveLeaf(t, leaf, branchID)
	l2 := proveLeaf(t, leaf, branchID)
	b12, err := combine(l1, l2)
	require.NoError(t, err)

	// Flipping the is-leaf flag makes the embedded verification expect
	// the wrong one of the two identities.
	w := plonkish.NewWitness()
	require.NoError(t, branch.SetWitness(w, b12.Proof, l1.Proof, true, true))
	_, err = branch.Circuit.Prove(w)
	require.ErrorIs(t, err, plonkish.ErrVerifyFailed)

	w = plonkish.NewWitness()
	require.NoError(t, branch.SetWitness(w, l1.Proof, l2.Proof, true, false))
	_, err = branch.Circuit.Prove(w)
	require.ErrorIs(t, err, plonkish.ErrVerifyFailed)
}

func TestForeignFamilyRejected(t *testing.T) {
	leaf, branch := buildFamily(t, false)
	foreignLeaf, foreignBranch := buildFamily(t, true)
	require.False(t, leaf.Circuit.Identity().Equal(foreignLeaf.Circuit.Identity()))

	// A foreign leaf proof, even one declaring this family's branch
	// identity, fails the embedded verification.
	impostor := proveLeaf(t, foreignLeaf, branch.Circuit.Identity())
	local := proveLeaf(t, leaf, branch.Circuit.Identity())

	w := plonkish.NewWitness()
	require.NoError(t, branch.SetWitness(w, impostor.Proof, local.Proof, true, true))
	_, err := branch.Circuit.Prove(w)
	require.ErrorIs(t, err, plonkish.ErrVerifyFailed)

	// A foreign root does not verify against this family either.
	foreignRoot, err := combiner(foreignBranch)(
		proveLeaf(t, foreignLeaf, foreignBranch.Circuit.Identity()),
		proveLeaf(t, foreignLeaf, foreignBranch.Circuit.Identity()),
	)
	require.NoError(t, err)
	require.ErrorIs(t, branch.VerifyRoot(foreignRoot.Proof), plonkish.ErrVerifyFailed)
}

func TestLeafProofIsNoBranchRoot(t *testing.T) {
	leaf, branch := buildFamily(t, false)
	n := proveLeaf(t, leaf, branch.Circuit.Identity())
	// The declared identity matches, but the attestation is the leaf's.
	require.ErrorIs(t, branch.VerifyRoot(n.Proof), plonkish.ErrVerifyFailed)
}

func TestBranchShapeDriftDetected(t *testing.T) {
	lb := plonkish.NewBuilder()
	lin := NewLeafInputs(lb)
	lin.BuildLeaf(lb)
	lc, err := lb.Compile()
	require.NoError(t, err)
	leaf, err := NewLeaf(lc, lin)
	require.NoError(t, err)

	// A stray public input ahead of the recursion wires shifts every
	// offset; NewBranch must refuse the pair.
	bb := plonkish.NewBuilder()
	stray := bb.PublicInput()
	bin := NewBranchInputs(bb, leaf)
	bb.AssertBool(stray)
	bin.BuildBranch(bb, leaf)
	bc, err := bb.Compile()
	require.NoError(t, err)
	_, err = NewBranch(bc, bin, leaf)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestProveTree(t *testing.T) {
	leaf, branch := buildFamily(t, false)
	branchID := branch.Circuit.Identity()
	combine := combiner(branch)

	for _, n := range []int{1, 2, 3, 4, 8} {
		nodes := make([]Node, n)
		for i := range nodes {
			nodes[i] = proveLeaf(t, leaf, branchID)
		}
		root, err := ProveTree(context.Background(), nodes, combine)
		require.NoError(t, err, "n=%d", n)
		if root.IsLeaf {
			require.Equal(t, 1, n)
			require.NoError(t, branch.VerifyLeafRoot(root.Proof))
		} else {
			require.NoError(t, branch.VerifyRoot(root.Proof))
		}
	}

	_, err := ProveTree(context.Background(), nil, combine)
	require.ErrorIs(t, err, ErrNoLeaves)
}
