package match

import (
	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
)

// Matching is a partial one-to-one correspondence between the nodes of
// an old and a new tree.
type Matching struct {
	newToOld map[*tree.Node]*tree.Node
	oldToNew map[*tree.Node]*tree.Node
}

func NewMatching() *Matching {
	return &Matching{
		newToOld: make(map[*tree.Node]*tree.Node),
		oldToNew: make(map[*tree.Node]*tree.Node),
	}
}

// MatchNew pairs newNode with oldNode. It fails with ErrAlreadyMatched
// if either is already paired with another node; re-adding an existing
// pair is a no-op.
func (m *Matching) MatchNew(newNode, oldNode *tree.Node) error {
	if o, ok := m.newToOld[newNode]; ok {
		if o == oldNode {
			return nil
		}
		return errors.Wrapf(ErrAlreadyMatched, "new node %v is matched to %v, cannot match it to %v", newNode, o, oldNode)
	}
	if n, ok := m.oldToNew[oldNode]; ok {
		return errors.Wrapf(ErrAlreadyMatched, "old node %v is matched to %v, cannot match it to %v", oldNode, n, newNode)
	}
	m.newToOld[newNode] = oldNode
	m.oldToNew[oldNode] = newNode
	return nil
}

// Unmatch removes the pair containing n, if any.
func (m *Matching) Unmatch(n *tree.Node) {
	if o, ok := m.newToOld[n]; ok {
		delete(m.newToOld, n)
		delete(m.oldToNew, o)
	}
	if nn, ok := m.oldToNew[n]; ok {
		delete(m.oldToNew, n)
		delete(m.newToOld, nn)
	}
}

// Old returns the old partner of a new node, or nil.
func (m *Matching) Old(newNode *tree.Node) *tree.Node {
	return m.newToOld[newNode]
}

// New returns the new partner of an old node, or nil.
func (m *Matching) New(oldNode *tree.Node) *tree.Node {
	return m.oldToNew[oldNode]
}

// Other returns the partner of n, whichever side n belongs to.
func (m *Matching) Other(n *tree.Node) *tree.Node {
	if o, ok := m.newToOld[n]; ok {
		return o
	}
	return m.oldToNew[n]
}

// IsMatched tells whether n has a partner.
func (m *Matching) IsMatched(n *tree.Node) bool {
	if _, ok := m.newToOld[n]; ok {
		return true
	}
	_, ok := m.oldToNew[n]
	return ok
}

// AreMatched tells whether a and b are partners.
func (m *Matching) AreMatched(a, b *tree.Node) bool {
	return a != nil && b != nil && m.Other(a) == b
}

// Len returns the number of pairs.
func (m *Matching) Len() int {
	return len(m.newToOld)
}

// Clone returns an independent copy.
func (m *Matching) Clone() *Matching {
	c := NewMatching()
	for n, o := range m.newToOld {
		c.newToOld[n] = o
		c.oldToNew[o] = n
	}
	return c
}

// Translate returns a matching where old nodes are replaced through
// the given correspondence, e.g., one returned by tree.CopyWithMapping.
func (m *Matching) Translate(oldMapping map[*tree.Node]*tree.Node) *Matching {
	c := NewMatching()
	for n, o := range m.newToOld {
		if oc, ok := oldMapping[o]; ok {
			c.newToOld[n] = oc
			c.oldToNew[oc] = n
		}
	}
	return c
}

// Pair is a matched couple of nodes.
type Pair struct {
	Old *tree.Node
	New *tree.Node
}

// Pairs lists the pairs in preorder of the new tree rooted at newRoot.
func (m *Matching) Pairs(newRoot *tree.Node) []Pair {
	var pairs []Pair
	for _, n := range newRoot.PreOrder() {
		if o := m.newToOld[n]; o != nil {
			pairs = append(pairs, Pair{Old: o, New: n})
		}
	}
	return pairs
}
