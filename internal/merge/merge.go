// Package merge implements the three-way merge of process trees.
//
// Both branches are diffed against the base, and the resulting delta trees
// are aligned: nodes stemming from the same base node are paired up front,
// and a matcher pipeline pairs what both branches inserted independently.
// The changes of each branch are then replayed onto the other delta tree.
// Conflicting changes never make the merge fail. They are resolved
// heuristically, and the nodes involved lose some of their confidence
// (see tree.Confidence).
package merge

import (
	"github.com/nicolagi/procdiff/internal/delta"
	"github.com/nicolagi/procdiff/internal/editscript"
	"github.com/nicolagi/procdiff/internal/match"
	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Options configure a Merger.
type Options struct {
	// Mode and Threshold configure the pipelines matching the base with
	// the branches and the two delta trees with each other. The zero
	// values mean match.Quality and match.DefaultThreshold.
	Mode      match.Mode
	Threshold float64

	// KeepAnnotations leaves change types, updates and origins on the
	// merged tree. Confidence flags are kept in any case.
	KeepAnnotations bool
}

// Result reports how many conflicts were resolved.
type Result struct {
	MoveConflicts   int
	UpdateConflicts int
	OrderConflicts  int
}

func (r Result) Conflicts() int {
	return r.MoveConflicts + r.UpdateConflicts + r.OrderConflicts
}

type Merger struct {
	opts Options
}

func New(opts Options) *Merger {
	if opts.Mode == "" {
		opts.Mode = match.Quality
	}
	if opts.Threshold == 0 {
		opts.Threshold = match.DefaultThreshold
	}
	return &Merger{opts: opts}
}

// Merge combines the changes that lead from base to branch1 and from base
// to branch2. None of the arguments is modified. Where the branches
// disagree, branch1 wins positions, and the longer value wins updates.
func (mg *Merger) Merge(base, branch1, branch2 *tree.Node) (*tree.Node, Result, error) {
	p, err := match.ForMode(match.Options{Mode: mg.opts.Mode, Threshold: mg.opts.Threshold})
	if err != nil {
		return nil, Result{}, err
	}
	var deltas [2]*tree.Node
	for i, branch := range []*tree.Node{branch1, branch2} {
		es, _, err := editscript.Diff(base, branch, p)
		if err != nil {
			return nil, Result{}, errors.Wrapf(err, "diffing branch %d", i+1)
		}
		if deltas[i], err = delta.Tree(base, es); err != nil {
			return nil, Result{}, errors.Wrapf(err, "delta tree of branch %d", i+1)
		}
	}
	s := &state{t1: deltas[0], t2: deltas[1]}
	if err := s.align(mg.opts.Threshold); err != nil {
		return nil, Result{}, err
	}
	for _, n := range s.t1.PreOrder() {
		n.SetOrigin(1)
	}
	for _, n := range s.t2.PreOrder() {
		n.SetOrigin(2)
	}
	s.prune(s.t1)
	s.prune(s.t2)
	s.findConflicts()
	if err := s.applyMovesAndInsertions(s.t1, s.t2, 1); err != nil {
		return nil, Result{}, err
	}
	if err := s.applyMovesAndInsertions(s.t2, s.t1, 2); err != nil {
		return nil, Result{}, err
	}
	s.resolveMoveConflicts()
	s.resolveUpdates()
	s.findOrderConflicts()
	log.WithFields(log.Fields{
		"moveConflicts":   s.result.MoveConflicts,
		"updateConflicts": s.result.UpdateConflicts,
		"orderConflicts":  s.result.OrderConflicts,
	}).Info("Merged")
	if !mg.opts.KeepAnnotations {
		s.t1.StripAnnotations()
	}
	return s.t1, s.result, nil
}

type pair struct {
	n1, n2 *tree.Node
}

// state holds the two delta trees being merged. In the matching, nodes
// of the first tree are on the old side.
type state struct {
	t1, t2 *tree.Node
	m      *match.Matching

	moveConflicts []pair
	result        Result
}

// align pairs nodes with the same base node, then runs the merge
// pipeline. Of the pairs it adds, only those joining two insertions are
// kept: distinct base nodes must stay distinct.
func (s *state) align(threshold float64) error {
	byBase := make(map[int]*tree.Node)
	for _, n := range s.t1.PreOrder() {
		if id, ok := n.Base(); ok {
			byBase[id] = n
		}
	}
	s.m = match.NewMatching()
	for _, n2 := range s.t2.PreOrder() {
		id, ok := n2.Base()
		if !ok {
			continue
		}
		if n1 := byBase[id]; n1 != nil {
			if err := s.m.MatchNew(n2, n1); err != nil {
				return err
			}
		}
	}
	if _, err := match.ForMerge(threshold).Execute(s.t1, s.t2, s.m); err != nil {
		return errors.Wrap(err, "aligning delta trees")
	}
	for _, p := range s.m.Pairs(s.t2) {
		id1, ok1 := p.Old.Base()
		id2, ok2 := p.New.Base()
		if ok1 && ok2 && id1 == id2 {
			continue
		}
		if p.Old.IsInsertion() && p.New.IsInsertion() {
			continue
		}
		s.m.Unmatch(p.New)
	}
	return nil
}

// prune removes from a delta tree what the other branch deleted, that is,
// the nodes without a partner that weren't inserted. Nodes inside removed
// subtrees are visited too: a matched one may be placed again later, and
// it must not bring back children the other branch deleted.
func (s *state) prune(root *tree.Node) {
	for _, n := range append([]*tree.Node(nil), root.PreOrder()...) {
		if n.IsRoot() || s.m.IsMatched(n) || n.IsInsertion() {
			continue
		}
		log.WithField("node", n.String()).Debug("merge: deleted by the other branch")
		n.RemoveFromParent()
	}
}

// other returns the partner of n, nil if none.
func (s *state) other(n *tree.Node) *tree.Node {
	if n == nil {
		return nil
	}
	return s.m.Other(n)
}

// link pairs n with its copy in the other tree.
func (s *state) link(n, c *tree.Node, origin int) error {
	if origin == 1 {
		return s.m.MatchNew(c, n)
	}
	return s.m.MatchNew(n, c)
}

// place moves c, the partner of n or a copy of it, to the position
// corresponding to that of n: right after the partner of the closest
// left sibling of n whose partner is under the partner of n's parent,
// else first. It reports false if there is no such parent.
func (s *state) place(n, c *tree.Node) bool {
	parent := s.other(n.Parent())
	if parent == nil || parent == c || parent.IsDescendantOf(c) {
		log.WithField("node", n.String()).Debug("merge: no place for counterpart")
		return false
	}
	c.RemoveFromParent()
	i := 0
	for j := n.Index() - 1; j >= 0; j-- {
		if o := s.other(n.Parent().Child(j)); o != nil && o.Parent() == parent {
			i = o.Index() + 1
			break
		}
	}
	parent.InsertChild(i, c)
	return true
}

func changed(n *tree.Node) bool {
	return n.IsMove() || n.IsInsertion()
}
