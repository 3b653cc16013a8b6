package merge

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/yourorg/treezk/internal/hashutil"
	"github.com/yourorg/treezk/pkg/recurse"
)

// TreeNode is an out-of-circuit summarized tree node, used to plan a
// merge. A nil node or one with Present false is a structural
// placeholder.
type TreeNode struct {
	Present     bool
	Hash        fr.Element
	Left, Right *TreeNode
}

// LeafNode returns a present leaf carrying h.
func LeafNode(h fr.Element) *TreeNode {
	return &TreeNode{Present: true, Hash: h}
}

// EmptyNode returns an absent placeholder node.
func EmptyNode() *TreeNode { return &TreeNode{} }

// JoinNodes folds two nodes into their parent with hash-or-forward.
func JoinNodes(left, right *TreeNode) *TreeNode {
	ls, rs := sideOf(left), sideOf(right)
	p, h := hashutil.Fold(ls.Present, ls.Hash, rs.Present, rs.Hash)
	return &TreeNode{Present: p, Hash: h, Left: left, Right: right}
}

func sideOf(n *TreeNode) Side {
	if n == nil || !n.Present {
		return AbsentSide()
	}
	return PresentSide(n.Hash)
}

func hasChildren(n *TreeNode) bool {
	return n != nil && (n.Left != nil || n.Right != nil)
}

// Step is one node of a merge plan: the A, B and merged summaries it
// certifies, and its two sub-steps when it pairs two interior ranges.
// A step with no sub-steps is a leaf merge, single-sided wherever only
// one input tree holds data at that range.
type Step struct {
	A, B, Merged Side
	Left, Right  *Step
}

// IsLeaf reports whether the step is a leaf merge.
func (s *Step) IsLeaf() bool { return s.Left == nil && s.Right == nil }

// Plan pairs two summarized trees into a binary merge shape: it walks
// both trees in lockstep, descending while both sides hold interior
// structure and emitting a leaf merge as soon as either side bottoms
// out. The circuits certify whatever pairing this produces; a different
// bracketing of the same leaf sets yields the same merged root hash.
func Plan(a, b *TreeNode) *Step {
	if !hasChildren(a) || !hasChildren(b) {
		as, bs := sideOf(a), sideOf(b)
		return &Step{A: as, B: bs, Merged: Fold(as, bs)}
	}
	left := Plan(a.Left, b.Left)
	right := Plan(a.Right, b.Right)
	return &Step{
		A:      Fold(left.A, right.A),
		B:      Fold(left.B, right.B),
		Merged: Fold(left.Merged, right.Merged),
		Left:   left,
		Right:  right,
	}
}

// MergedTree lifts the plan's merged column back into a summarized tree,
// so the output of one merge can feed the next.
func (s *Step) MergedTree() *TreeNode {
	n := &TreeNode{Present: s.Merged.Present, Hash: s.Merged.Hash}
	if !s.IsLeaf() {
		n.Left = s.Left.MergedTree()
		n.Right = s.Right.MergedTree()
	}
	return n
}

// ProvePlan walks a plan bottom-up and emits the proof tree certifying
// it, one proof per step.
func ProvePlan(leaf *LeafCircuit, branch *BranchCircuit, s *Step) (recurse.Node, error) {
	branchID := branch.Circuit.Identity()
	if s.IsLeaf() {
		p, err := leaf.Prove(branchID, s.A, s.B)
		if err != nil {
			return recurse.Node{}, err
		}
		return recurse.Node{Proof: p, IsLeaf: true}, nil
	}
	left, err := ProvePlan(leaf, branch, s.Left)
	if err != nil {
		return recurse.Node{}, err
	}
	right, err := ProvePlan(leaf, branch, s.Right)
	if err != nil {
		return recurse.Node{}, err
	}
	p, err := branch.Prove(left, right)
	if err != nil {
		return recurse.Node{}, err
	}
	return recurse.Node{Proof: p, IsLeaf: false}, nil
}
