package recurse

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/yourorg/treezk/pkg/plonkish"
)

// ErrNoLeaves reports an empty fold.
var ErrNoLeaves = errors.New("recurse: no leaves to fold")

// Node pairs a proof with its kind inside a recursive family.
type Node struct {
	Proof  *plonkish.Proof
	IsLeaf bool
}

// CombineFunc proves one parent from two finished sibling nodes. It must
// be safe for concurrent use: compiled circuits are immutable and each
// call owns its witness.
type CombineFunc func(left, right Node) (Node, error)

// ProveTree folds nodes into a single root bottom-up. Sibling pairs on
// one level have no data dependency and are proved in parallel; only the
// combine into a parent waits for both children. An odd tail node is
// carried up unchanged.
func ProveTree(ctx context.Context, nodes []Node, combine CombineFunc) (Node, error) {
	if len(nodes) == 0 {
		return Node{}, ErrNoLeaves
	}
	level := nodes
	for len(level) > 1 {
		next := make([]Node, (len(level)+1)/2)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < len(level)/2; i++ {
			left, right := level[2*i], level[2*i+1]
			out := &next[i]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				n, err := combine(left, right)
				if err != nil {
					return err
				}
				*out = n
				return nil
			})
		}
		if len(level)%2 == 1 {
			next[len(next)-1] = level[len(level)-1]
		}
		if err := g.Wait(); err != nil {
			return Node{}, err
		}
		level = next
	}
	return level[0], nil
}
