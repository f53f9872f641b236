package match

import (
	"sort"

	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/samber/lo"
)

// Similarity greedily pairs unmatched nodes with the same label by
// descending comparator score, as long as the score reaches the
// threshold. Leaves are matched before inner nodes. The fast variant
// only considers old nodes whose parent is the partner of the new
// node's parent.
type Similarity struct {
	Fast bool
}

func (s Similarity) Name() string {
	if s.Fast {
		return "fast-similarity"
	}
	return "similarity"
}

type candidate struct {
	old, new *tree.Node
	score    float64
	oldRank  int
	newRank  int
}

func (s Similarity) Match(oldRoot, newRoot *tree.Node, m *Matching, c *Comparator) error {
	oldNodes := unmatchedNonRoot(oldRoot, m)
	oldRank := rank(oldNodes)
	byLabel := lo.GroupBy(oldNodes, (*tree.Node).Label)
	newNodes := unmatchedNonRoot(newRoot, m)
	newRank := rank(newNodes)
	leaves, inner := lo.FilterReject(newNodes, func(n *tree.Node, _ int) bool {
		return !n.IsInnerNode()
	})
	for _, group := range [][]*tree.Node{leaves, inner} {
		var candidates []candidate
		for _, n := range group {
			if m.IsMatched(n) {
				continue
			}
			var pool []*tree.Node
			if s.Fast {
				op := m.Old(n.Parent())
				if op == nil {
					continue
				}
				pool = lo.Filter(op.Children(), func(o *tree.Node, _ int) bool {
					return o.Label() == n.Label() && !o.IsPropertyNode()
				})
			} else {
				pool = byLabel[n.Label()]
			}
			for _, o := range pool {
				if m.IsMatched(o) {
					continue
				}
				score, ok := c.Similar(o, n)
				if !ok {
					continue
				}
				candidates = append(candidates, candidate{
					old:     o,
					new:     n,
					score:   score,
					oldRank: oldRank[o],
					newRank: newRank[n],
				})
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			if a.score != b.score {
				return a.score > b.score
			}
			if a.newRank != b.newRank {
				return a.newRank < b.newRank
			}
			return a.oldRank < b.oldRank
		})
		for _, cand := range candidates {
			if m.IsMatched(cand.old) || m.IsMatched(cand.new) {
				continue
			}
			if err := m.MatchNew(cand.new, cand.old); err != nil {
				return err
			}
		}
	}
	return nil
}

// unmatchedNonRoot returns the unmatched non-property nodes in preorder,
// without the root.
func unmatchedNonRoot(root *tree.Node, m *Matching) []*tree.Node {
	return lo.Filter(root.NonPropertyNodes(), func(n *tree.Node, _ int) bool {
		return !n.IsRoot() && !m.IsMatched(n)
	})
}

func rank(nodes []*tree.Node) map[*tree.Node]int {
	r := make(map[*tree.Node]int, len(nodes))
	for i, n := range nodes {
		r[n] = i
	}
	return r
}
