package editscript

import (
	"sort"

	"github.com/nicolagi/procdiff/internal/lis"
	"github.com/nicolagi/procdiff/internal/match"
	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type generateOptions struct {
	copyOld bool
}

// GenerateOption follows the functional options pattern to pass options to Generate.
type GenerateOption func(*generateOptions)

// WithCopy makes Generate work on a copy of the old tree. Without it,
// the old tree is transformed into the new one in place.
func WithCopy() GenerateOption {
	return func(opts *generateOptions) {
		opts.copyOld = true
	}
}

type generator struct {
	script *EditScript
	m      *match.Matching

	// New node inserted by each change, for coalescing.
	insertedBy map[int]*tree.Node
}

// Generate computes an edit script that transforms oldRoot into newRoot
// given a matching between the two trees, which must pair the roots.
// The matching itself is left untouched.
//
// The script consists of moves, updates and insertions found in a
// preorder pass over the new tree, then deletions in postorder, then
// reshuffles restoring the order of children below ordered nodes.
// Unless WithCopy is passed, oldRoot ends up equal to newRoot.
func Generate(oldRoot, newRoot *tree.Node, m *match.Matching, options ...GenerateOption) (*EditScript, error) {
	var opts generateOptions
	for _, opt := range options {
		opt(&opts)
	}
	if m.Old(newRoot) != oldRoot {
		return nil, errors.Wrapf(ErrPhase, "roots %v and %v are not matched", oldRoot, newRoot)
	}
	if opts.copyOld {
		var mapping map[*tree.Node]*tree.Node
		oldRoot, mapping = oldRoot.CopyWithMapping()
		m = m.Translate(mapping)
	} else {
		m = m.Clone()
	}
	g := &generator{
		script:     new(EditScript),
		m:          m,
		insertedBy: make(map[int]*tree.Node),
	}
	if err := g.alignAndInsert(newRoot); err != nil {
		return nil, err
	}
	g.coalesceInsertions()
	g.delete(oldRoot)
	if err := g.reorder(oldRoot); err != nil {
		return nil, err
	}
	s := g.script.Stats()
	log.WithFields(log.Fields{
		"insertions": s.Insertions,
		"deletions":  s.Deletions,
		"moves":      s.Moves,
		"updates":    s.Updates,
		"reshuffles": s.Reshuffles,
	}).Debug("Generated edit script")
	return g.script, nil
}

func (g *generator) alignAndInsert(newRoot *tree.Node) error {
	if oldRoot := g.m.Old(newRoot); !oldRoot.ContentEquals(newRoot) {
		oldRoot.SetContentFrom(newRoot)
		g.script.Append(Change{
			Type:       Update,
			OldPath:    tree.Path{},
			NewContent: newRoot.ShallowCopy(),
		})
	}
	for _, n := range newRoot.PreOrder()[1:] {
		parent := g.m.Old(n.Parent())
		if parent == nil {
			return errors.Wrapf(ErrPhase, "parent of %v has no partner", n)
		}
		o := g.m.Old(n)
		if o == nil {
			c := n.ShallowCopy()
			parent.InsertChild(n.Index(), c)
			if err := g.m.MatchNew(n, c); err != nil {
				return err
			}
			g.insertedBy[g.script.Len()] = n
			g.script.Append(Change{
				Type:       Insertion,
				NewPath:    c.Path(),
				NewContent: n.ShallowCopy(),
			})
			continue
		}
		if o.Parent() != parent {
			oldPath := o.Path()
			o.MoveTo(parent, n.Index())
			g.script.Append(Change{
				Type:    Move,
				OldPath: oldPath,
				NewPath: o.Path(),
			})
		}
		if !o.ContentEquals(n) {
			o.SetContentFrom(n)
			g.script.Append(Change{
				Type:       Update,
				OldPath:    o.Path(),
				NewContent: n.ShallowCopy(),
			})
		}
	}
	return nil
}

// coalesceInsertions replaces each run of insertions that builds a
// whole new subtree, in preorder, with one subtree insertion.
func (g *generator) coalesceInsertions() {
	var out []Change
	changes := g.script.Changes
	for i := 0; i < len(changes); i++ {
		n, ok := g.insertedBy[i]
		if !ok {
			out = append(out, changes[i])
			continue
		}
		nodes := n.PreOrder()
		whole := len(nodes) > 1 && i+len(nodes) <= len(changes)
		for k := 1; whole && k < len(nodes); k++ {
			whole = g.insertedBy[i+k] == nodes[k]
		}
		if !whole {
			out = append(out, changes[i])
			continue
		}
		out = append(out, Change{
			Type:       SubtreeInsertion,
			NewPath:    changes[i].NewPath,
			NewContent: n.Copy(),
		})
		i += len(nodes) - 1
	}
	g.script.Changes = out
}

// delete detaches the maximal unmatched subtrees of the old tree. By
// now, every node below an unmatched node is unmatched too.
func (g *generator) delete(oldRoot *tree.Node) {
	for _, o := range oldRoot.PostOrder() {
		if o.IsRoot() || g.m.New(o) != nil || g.m.New(o.Parent()) == nil {
			continue
		}
		t := Deletion
		if o.Size() > 1 {
			t = SubtreeDeletion
		}
		g.script.Append(Change{
			Type:    t,
			OldPath: o.Path(),
		})
		o.RemoveFromParent()
	}
}

// reorder emits reshuffles so that the children of ordered nodes follow
// the order of their partners. Children on a longest increasing
// subsequence of target positions stay put.
func (g *generator) reorder(oldRoot *tree.Node) error {
	for _, o := range oldRoot.PreOrder() {
		if !o.HasInternalOrdering() || o.Degree() < 2 {
			continue
		}
		children := append([]*tree.Node(nil), o.Children()...)
		target := make(map[*tree.Node]int, len(children))
		positions := make([]int, len(children))
		for i, c := range children {
			n := g.m.New(c)
			if n == nil {
				return errors.Wrapf(ErrPhase, "child %v has no partner after deletions", c)
			}
			target[c] = n.Index()
			positions[i] = n.Index()
		}
		settled := make(map[*tree.Node]bool, len(children))
		for _, i := range lis.Indices(positions) {
			settled[children[i]] = true
		}
		var misplaced []*tree.Node
		for _, c := range children {
			if !settled[c] {
				misplaced = append(misplaced, c)
			}
		}
		sort.Slice(misplaced, func(i, j int) bool {
			return target[misplaced[i]] < target[misplaced[j]]
		})
		for _, c := range misplaced {
			oldPath := c.Path()
			c.RemoveFromParent()
			pos := 0
			for _, s := range o.Children() {
				if settled[s] && target[s] < target[c] {
					pos = s.Index() + 1
				}
			}
			o.InsertChild(pos, c)
			settled[c] = true
			g.script.Append(Change{
				Type:    Reshuffle,
				OldPath: oldPath,
				NewPath: c.Path(),
			})
		}
	}
	return nil
}
