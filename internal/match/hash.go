package match

import (
	"sort"

	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/samber/lo"
)

// Hash matches identical subtrees, largest first. When several old
// subtrees are candidates, one under the partner of the new subtree's
// parent is preferred, then one at the same index.
type Hash struct{}

func (Hash) Name() string { return "hash" }

func (Hash) Match(oldRoot, newRoot *tree.Node, m *Matching, _ *Comparator) error {
	oldHashes := tree.HashSubtrees(oldRoot)
	newHashes := tree.HashSubtrees(newRoot)
	oldSubs := newSubtrees(oldRoot, m)
	newSubs := newSubtrees(newRoot, m)
	byHash := lo.GroupBy(oldRoot.NonPropertyNodes(), func(o *tree.Node) uint64 {
		return oldHashes[o]
	})
	newNodes := lo.Filter(newRoot.NonPropertyNodes(), func(n *tree.Node, _ int) bool {
		return !n.IsRoot()
	})
	sort.SliceStable(newNodes, func(i, j int) bool {
		return newSubs.size[newNodes[i]] > newSubs.size[newNodes[j]]
	})
	for _, n := range newNodes {
		if newSubs.touched[n] {
			continue
		}
		candidates := lo.Filter(byHash[newHashes[n]], func(o *tree.Node, _ int) bool {
			return !o.IsRoot() && !oldSubs.touched[o]
		})
		if len(candidates) == 0 {
			continue
		}
		o := pickCandidate(candidates, n, m)
		if err := matchIdentical(o, n, oldHashes, newHashes, m); err != nil {
			return err
		}
		for _, d := range o.PreOrder() {
			oldSubs.mark(d)
		}
		for _, d := range n.PreOrder() {
			newSubs.mark(d)
		}
	}
	return nil
}

// subtrees carries the size of each subtree and whether any of its nodes
// is matched, computed in a single bottom-up pass.
type subtrees struct {
	size    map[*tree.Node]int
	touched map[*tree.Node]bool
}

func newSubtrees(root *tree.Node, m *Matching) *subtrees {
	nodes := root.PostOrder()
	s := &subtrees{
		size:    make(map[*tree.Node]int, len(nodes)),
		touched: make(map[*tree.Node]bool, len(nodes)),
	}
	for _, n := range nodes {
		size, touched := 1, m.IsMatched(n)
		for _, c := range n.Children() {
			size += s.size[c]
			touched = touched || s.touched[c]
		}
		s.size[n] = size
		if touched {
			s.touched[n] = true
		}
	}
	return s
}

// mark records that n is matched. The walk up stops at the first
// ancestor already marked, since all of its ancestors are too.
func (s *subtrees) mark(n *tree.Node) {
	for ; n != nil && !s.touched[n]; n = n.Parent() {
		s.touched[n] = true
	}
}

func pickCandidate(candidates []*tree.Node, n *tree.Node, m *Matching) *tree.Node {
	op := m.Old(n.Parent())
	if o, ok := lo.Find(candidates, func(o *tree.Node) bool {
		return o.Parent() == op && o.Index() == n.Index()
	}); ok {
		return o
	}
	if o, ok := lo.Find(candidates, func(o *tree.Node) bool {
		return o.Parent() == op
	}); ok {
		return o
	}
	return candidates[0]
}

// matchIdentical pairs up the nodes of two subtrees with equal hashes.
// Children of unordered nodes are paired by hash rather than position.
func matchIdentical(o, n *tree.Node, oldHashes, newHashes map[*tree.Node]uint64, m *Matching) error {
	if err := m.MatchNew(n, o); err != nil {
		return err
	}
	oc, nc := o.Children(), n.Children()
	if len(oc) != len(nc) {
		return nil
	}
	if o.HasInternalOrdering() {
		for i := range nc {
			if err := matchIdentical(oc[i], nc[i], oldHashes, newHashes, m); err != nil {
				return err
			}
		}
		return nil
	}
	used := make([]bool, len(oc))
	for _, c := range nc {
		for j, d := range oc {
			if !used[j] && oldHashes[d] == newHashes[c] {
				used[j] = true
				if err := matchIdentical(d, c, oldHashes, newHashes, m); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}
