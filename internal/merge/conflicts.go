package merge

import (
	"sort"

	"github.com/nicolagi/procdiff/internal/tree"
	log "github.com/sirupsen/logrus"
)

// findConflicts collects the pairs of nodes both branches moved (or
// inserted) to positions that don't correspond. Pairs of insertions with
// different content get updates covering their whole content, so that
// resolveUpdates reconciles them.
func (s *state) findConflicts() {
	for _, p := range s.m.Pairs(s.t2) {
		n1, n2 := p.Old, p.New
		switch {
		case n1.IsInsertion() && n2.IsInsertion():
			if !n1.ContentEquals(n2) {
				wholeContentUpdates(n1)
				wholeContentUpdates(n2)
			}
		case n1.IsMove() && n2.IsMove():
		default:
			continue
		}
		if !s.consistent(n1, n2) {
			s.moveConflicts = append(s.moveConflicts, pair{n1, n2})
		}
	}
}

// consistent tells whether the two nodes have corresponding parents and
// corresponding left anchors.
func (s *state) consistent(n1, n2 *tree.Node) bool {
	if n1.Parent() == nil || n2.Parent() == nil || s.other(n1.Parent()) != n2.Parent() {
		return false
	}
	return s.other(s.leftAnchor(n1, n2.Parent())) == s.leftAnchor(n2, n1.Parent())
}

// leftAnchor returns the closest left sibling of n whose partner is a
// child of parent.
func (s *state) leftAnchor(n, parent *tree.Node) *tree.Node {
	for j := n.Index() - 1; j >= 0; j-- {
		sib := n.Parent().Child(j)
		if o := s.other(sib); o != nil && o.Parent() == parent {
			return sib
		}
	}
	return nil
}

func wholeContentUpdates(n *tree.Node) {
	n.ClearUpdates()
	for k, v := range n.Attrs() {
		n.SetUpdate(k, tree.Update{New: &v})
	}
	if text := n.Text(); text != "" {
		n.SetUpdate(tree.TextKey, tree.Update{New: &text})
	}
}

// applyMovesAndInsertions replays the moves and insertions of one branch
// onto the delta tree of the other. Nodes both branches moved or inserted
// are left to resolveMoveConflicts.
func (s *state) applyMovesAndInsertions(src, dst *tree.Node, origin int) error {
	for _, n := range src.PreOrder() {
		if n.IsRoot() || n.Origin() != origin || !changed(n) {
			continue
		}
		c := s.other(n)
		switch {
		case c == nil && n.IsInsertion():
			cp := n.ShallowCopy()
			if !s.place(n, cp) {
				continue
			}
			if err := s.link(n, cp, origin); err != nil {
				return err
			}
		case c != nil && !changed(c):
			if s.place(n, c) {
				c.SetChange(n.Change())
				c.SetOrigin(n.Origin())
			}
		}
	}
	return nil
}

// resolveMoveConflicts puts the nodes of the second branch where the
// first branch has them.
func (s *state) resolveMoveConflicts() {
	for _, p := range s.moveConflicts {
		sameParent := s.other(p.n1.Parent()) == p.n2.Parent()
		s.place(p.n1, p.n2)
		for _, n := range []*tree.Node{p.n1, p.n2} {
			if sameParent {
				n.DoubtPosition()
			} else {
				n.DoubtParent()
			}
		}
		log.WithFields(log.Fields{
			"node":       p.n1.String(),
			"sameParent": sameParent,
		}).Info("Resolved move conflict")
	}
	s.result.MoveConflicts = len(s.moveConflicts)
}

// resolveUpdates brings the updates of either branch to both trees, key
// by key. Where both branches set a key to different values, the longer
// value wins, and an absent value always loses.
func (s *state) resolveUpdates() {
	for _, p := range s.m.Pairs(s.t2) {
		n1, n2 := p.Old, p.New
		if !n1.IsUpdate() && !n2.IsUpdate() {
			continue
		}
		u1, u2 := n1.Updates(), n2.Updates()
		conflict := false
		for _, k := range updateKeys(u1, u2) {
			a, inA := u1[k]
			b, inB := u2[k]
			switch {
			case inA && !inB:
				set(n2, k, a.New)
				n2.SetUpdate(k, a)
			case inB && !inA:
				set(n1, k, b.New)
				n1.SetUpdate(k, b)
			case sameValue(a.New, b.New):
			default:
				winner := a
				if longer(b.New, a.New) {
					winner = b
				}
				for _, n := range []*tree.Node{n1, n2} {
					set(n, k, winner.New)
					n.SetUpdate(k, winner)
				}
				conflict = true
			}
		}
		if !conflict {
			continue
		}
		for _, n := range []*tree.Node{n1, n2} {
			n.DoubtContent()
			n.SetOrigin(3)
		}
		s.result.UpdateConflicts++
		log.WithField("node", n1.String()).Info("Resolved update conflict")
	}
}

// findOrderConflicts flags adjacent siblings under ordered parents that
// the two branches moved or inserted independently.
func (s *state) findOrderConflicts() {
	for _, n := range s.t1.PreOrder() {
		if n.IsRoot() || !n.Parent().HasInternalOrdering() || !changed(n) || !fromBranch(n) {
			continue
		}
		i := n.Index() + 1
		if i >= n.Parent().Degree() {
			continue
		}
		sib := n.Parent().Child(i)
		if !changed(sib) || !fromBranch(sib) || sib.Origin() == n.Origin() {
			continue
		}
		for _, d := range []*tree.Node{n, sib, s.other(n), s.other(sib)} {
			if d != nil {
				d.DoubtPosition()
			}
		}
		s.result.OrderConflicts++
		log.WithFields(log.Fields{
			"left":  n.String(),
			"right": sib.String(),
		}).Info("Order conflict")
	}
}

func fromBranch(n *tree.Node) bool {
	return n.Origin() == 1 || n.Origin() == 2
}

func updateKeys(maps ...map[string]tree.Update) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range maps {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func set(n *tree.Node, key string, value *string) {
	switch {
	case key == tree.TextKey && value == nil:
		n.SetText("")
	case key == tree.TextKey:
		n.SetText(*value)
	case value == nil:
		n.DeleteAttr(key)
	default:
		n.SetAttr(key, *value)
	}
}

func sameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// longer tells whether a should win over b.
func longer(a, b *string) bool {
	if a == nil {
		return false
	}
	return b == nil || len(*a) > len(*b)
}
