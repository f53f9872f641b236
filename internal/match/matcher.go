package match

import (
	"github.com/nicolagi/procdiff/internal/tree"
)

// A Matcher extends a matching between an old and a new tree. Matchers
// only ever add pairs of nodes that are both unmatched.
type Matcher interface {
	Name() string
	Match(oldRoot, newRoot *tree.Node, m *Matching, c *Comparator) error
}

// Pin forces two nodes to be matched.
type Pin struct {
	Old *tree.Node
	New *tree.Node
}

// Anchor matches the roots, then any pinned pairs.
type Anchor struct {
	Pins []Pin
}

func (Anchor) Name() string { return "anchor" }

func (a Anchor) Match(oldRoot, newRoot *tree.Node, m *Matching, _ *Comparator) error {
	if !m.IsMatched(oldRoot) && !m.IsMatched(newRoot) {
		if err := m.MatchNew(newRoot, oldRoot); err != nil {
			return err
		}
	}
	for _, p := range a.Pins {
		if err := m.MatchNew(p.New, p.Old); err != nil {
			return err
		}
	}
	return nil
}

// Property matches the property nodes below matched pairs by label.
// Among siblings with the same label, the k-th new one goes with the
// k-th unmatched old one.
type Property struct{}

func (Property) Name() string { return "property" }

func (Property) Match(_, newRoot *tree.Node, m *Matching, _ *Comparator) error {
	for _, n := range newRoot.PreOrder() {
		o := m.Old(n)
		if o == nil {
			continue
		}
		for _, nc := range n.Children() {
			if !nc.IsPropertyNode() || m.IsMatched(nc) {
				continue
			}
			for _, oc := range o.Children() {
				if oc.IsPropertyNode() && oc.Label() == nc.Label() && !m.IsMatched(oc) {
					if err := m.MatchNew(nc, oc); err != nil {
						return err
					}
					break
				}
			}
		}
	}
	return nil
}

// Fallback pairs unmatched nodes with unmatched old children of the
// parent's partner that have the same label, most similar first.
type Fallback struct{}

func (Fallback) Name() string { return "fallback" }

func (Fallback) Match(_, newRoot *tree.Node, m *Matching, c *Comparator) error {
	for _, n := range newRoot.NonPropertyNodes() {
		if n.IsRoot() || m.IsMatched(n) {
			continue
		}
		op := m.Old(n.Parent())
		if op == nil {
			continue
		}
		var best *tree.Node
		bestScore := -1.0
		for _, oc := range op.Children() {
			if oc.IsPropertyNode() || oc.Label() != n.Label() || m.IsMatched(oc) {
				continue
			}
			score, err := c.Compare(oc, n)
			if err != nil {
				return err
			}
			if score > bestScore {
				best, bestScore = oc, score
			}
		}
		if best != nil {
			if err := m.MatchNew(n, best); err != nil {
				return err
			}
		}
	}
	return nil
}
