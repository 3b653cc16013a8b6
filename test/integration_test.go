package test

import (
	"context"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/treezk/circuits"
	"github.com/yourorg/treezk/internal/hashutil"
	"github.com/yourorg/treezk/pkg/merge"
	"github.com/yourorg/treezk/pkg/plonkish"
	"github.com/yourorg/treezk/pkg/recurse"
	"github.com/yourorg/treezk/pkg/treeaddr"
)

func frOf(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

// TestAccumulateAndShip walks the prover binary's whole path in process:
// accumulate payloads into a proof tree, serialize the root, then verify
// the deserialized proof the way the verifier binary does.
func TestAccumulateAndShip(t *testing.T) {
	leaf, err := circuits.BuildAccumulatorLeaf(1)
	require.NoError(t, err)
	branch, err := circuits.BuildAccumulatorBranch(leaf, false)
	require.NoError(t, err)
	branchID := branch.Circuit.Identity()
	meta := []fr.Element{frOf(7)}

	payloads := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}
	width := 4
	nodes := make([]recurse.Node, width)
	for i := 0; i < width; i++ {
		item := circuits.Item{Addr: treeaddr.Absent()}
		if i < len(payloads) {
			item = circuits.Item{
				Payload: hashutil.KeccakToField(payloads[i]),
				Addr:    treeaddr.At(uint64(i)),
			}
		}
		p, err := leaf.Prove(branchID, meta, item)
		require.NoError(t, err)
		nodes[i] = recurse.Node{Proof: p, IsLeaf: true}
	}

	root, err := recurse.ProveTree(context.Background(), nodes, branch.Combine)
	require.NoError(t, err)
	require.NoError(t, branch.VerifyRoot(root))

	data, err := root.Proof.MarshalBinary()
	require.NoError(t, err)

	// The verifier rebuilds the family from scratch and sees the same
	// identities.
	vLeaf, err := circuits.BuildAccumulatorLeaf(1)
	require.NoError(t, err)
	vBranch, err := circuits.BuildAccumulatorBranch(vLeaf, false)
	require.NoError(t, err)
	require.True(t, vBranch.Circuit.Identity().Equal(branchID))

	var shipped plonkish.Proof
	require.NoError(t, shipped.UnmarshalBinary(data))
	require.NoError(t, vBranch.VerifyRoot(recurse.Node{Proof: &shipped, IsLeaf: root.IsLeaf}))

	present, sum := vBranch.RootSummary(&shipped)
	require.True(t, present)
	want := hashutil.Hash2(
		hashutil.Hash2(hashutil.KeccakToField(payloads[0]), hashutil.KeccakToField(payloads[1])),
		hashutil.KeccakToField(payloads[2]),
	)
	require.True(t, want.Equal(&sum))
}

// TestThreePartyMerge merges three disjoint summarized trees. The third
// party may join on either side of the earlier merge and the final
// merged root is the same, since the per-node combinator is associative.
func TestThreePartyMerge(t *testing.T) {
	mLeaf, err := merge.BuildLeaf()
	require.NoError(t, err)
	mBranch, err := merge.BuildBranch(mLeaf)
	require.NoError(t, err)

	// Four leaf slots; each party populates its own positions.
	alpha := merge.JoinNodes(
		merge.JoinNodes(merge.LeafNode(frOf(11)), merge.EmptyNode()),
		merge.JoinNodes(merge.EmptyNode(), merge.EmptyNode()),
	)
	beta := merge.JoinNodes(
		merge.JoinNodes(merge.EmptyNode(), merge.LeafNode(frOf(22))),
		merge.JoinNodes(merge.EmptyNode(), merge.EmptyNode()),
	)
	gamma := merge.JoinNodes(
		merge.JoinNodes(merge.EmptyNode(), merge.EmptyNode()),
		merge.JoinNodes(merge.LeafNode(frOf(33)), merge.LeafNode(frOf(44))),
	)

	proveMerge := func(a, b *merge.TreeNode) (*merge.Step, merge.Side) {
		s := merge.Plan(a, b)
		root, err := merge.ProvePlan(mLeaf, mBranch, s)
		require.NoError(t, err)
		require.NoError(t, mBranch.VerifyRoot(root))
		return s, mBranch.RootSummary(root.Proof)
	}

	// (alpha + beta) + gamma
	ab, _ := proveMerge(alpha, beta)
	_, left := proveMerge(ab.MergedTree(), gamma)

	// alpha + (beta + gamma)
	bg, _ := proveMerge(beta, gamma)
	_, right := proveMerge(alpha, bg.MergedTree())

	require.True(t, left.Present)
	require.True(t, left.Hash.Equal(&right.Hash))

	want := hashutil.Hash2(
		hashutil.Hash2(frOf(11), frOf(22)),
		hashutil.Hash2(frOf(33), frOf(44)),
	)
	require.True(t, want.Equal(&left.Hash))
}

// TestMergedRootSettles feeds a proved merge root into the out-of-circuit
// mirror of the settlement fold, pinning the two layers to one algebra.
func TestMergedRootSettles(t *testing.T) {
	mLeaf, err := merge.BuildLeaf()
	require.NoError(t, err)
	mBranch, err := merge.BuildBranch(mLeaf)
	require.NoError(t, err)

	a := merge.JoinNodes(merge.LeafNode(frOf(1)), merge.EmptyNode())
	b := merge.JoinNodes(merge.EmptyNode(), merge.LeafNode(frOf(2)))

	s := merge.Plan(a, b)
	root, err := merge.ProvePlan(mLeaf, mBranch, s)
	require.NoError(t, err)

	got := mBranch.RootSummary(root.Proof)
	_, want := hashutil.Fold(true, frOf(1), true, frOf(2))
	require.True(t, want.Equal(&got.Hash))
}
