// Package delta replays edit scripts over a copy of the old tree,
// annotating nodes with the changes they undergo instead of losing
// them. The result serves to render diffs and as the input of the
// three-way merge.
package delta

import (
	"github.com/nicolagi/procdiff/internal/editscript"
	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Tree copies base, numbers its nodes in preorder (see tree.Node.Base)
// and replays the edit script on the copy. The live children of the
// result form the new tree. Deleted nodes and copies of moved nodes
// taken before the move hang off their former parents as placeholders.
func Tree(base *tree.Node, es *editscript.EditScript) (*tree.Node, error) {
	root := base.Copy()
	for i, n := range root.PreOrder() {
		n.SetBase(i)
	}
	b := &builder{
		root:    root,
		shadows: make(map[*tree.Node]*tree.Node),
	}
	for i, c := range es.Changes {
		if err := b.apply(c); err != nil {
			return nil, errors.Wrapf(err, "change %d (%v)", i, c)
		}
	}
	return root, nil
}

// ExtendedTree is like Tree, but placeholders are put back in the
// positions they had, so that every node of either tree shows up as a
// child exactly once, tagged with what happened to it.
func ExtendedTree(base *tree.Node, es *editscript.EditScript) (*tree.Node, error) {
	root, err := Tree(base, es)
	if err != nil {
		return nil, err
	}
	resolvePlaceholders(root)
	trim(root)
	return root, nil
}

type builder struct {
	root *tree.Node

	// Moved nodes and the placeholders marking where they came from.
	// Changes below a moved node are mirrored in its placeholder.
	shadows map[*tree.Node]*tree.Node
}

func (b *builder) apply(c editscript.Change) error {
	switch c.Type {
	case editscript.Insertion, editscript.SubtreeInsertion:
		return b.insert(c)
	case editscript.Deletion, editscript.SubtreeDeletion:
		return b.delete(c)
	case editscript.Move:
		return b.move(c, tree.MoveTo)
	case editscript.Reshuffle:
		return b.move(c, tree.Reshuffle)
	case editscript.Update:
		return b.update(c)
	default:
		return errors.Errorf("unknown change type %v", c.Type)
	}
}

// find resolves p in the live tree. The mirror is the node standing for
// the same position inside the placeholder of a moved ancestor, if any.
func (b *builder) find(p tree.Path) (node, mirror *tree.Node, err error) {
	node = b.root
	for depth, i := range p {
		if i < 0 || i >= node.Degree() {
			return nil, nil, errors.Wrapf(tree.ErrInvalidTree, "no node at %v", p[:depth+1])
		}
		node = node.Child(i)
		if mirror != nil {
			if i < mirror.Degree() {
				mirror = mirror.Child(i)
			} else {
				log.WithField("path", p[:depth+1].String()).Debug("delta: placeholder out of sync, dropping mirror")
				mirror = nil
			}
		}
		if s, ok := b.shadows[node]; ok {
			mirror = s
		}
	}
	return node, mirror, nil
}

// slot resolves the parent of p and checks the position is valid for
// an insertion.
func (b *builder) slot(p tree.Path) (parent, mirror *tree.Node, i int, err error) {
	pp, i := p.Parent()
	if i < 0 {
		return nil, nil, 0, errors.Wrapf(tree.ErrInvalidTree, "no parent for the root path")
	}
	parent, mirror, err = b.find(pp)
	if err != nil {
		return nil, nil, 0, err
	}
	if i > parent.Degree() {
		return nil, nil, 0, errors.Wrapf(tree.ErrInvalidTree, "index %d beyond %d children at %v", i, parent.Degree(), pp)
	}
	if mirror != nil && i > mirror.Degree() {
		log.WithField("path", p.String()).Debug("delta: placeholder out of sync, dropping mirror")
		mirror = nil
	}
	return parent, mirror, i, nil
}

func (b *builder) nonRoot(p tree.Path) (node, mirror *tree.Node, err error) {
	if len(p) == 0 {
		return nil, nil, errors.Wrapf(tree.ErrInvalidTree, "the root cannot be moved or deleted")
	}
	return b.find(p)
}

func (b *builder) insert(c editscript.Change) error {
	if c.NewContent == nil {
		return errors.Wrapf(tree.ErrInvalidTree, "insertion without content")
	}
	parent, mirror, i, err := b.slot(c.NewPath)
	if err != nil {
		return err
	}
	content, tag := c.NewContent.ShallowCopy(), tree.Insertion
	if c.Type == editscript.SubtreeInsertion {
		content, tag = c.NewContent.Copy(), tree.SubtreeInsertion
	}
	mark(content, tag)
	if mirror != nil {
		mirror.InsertChild(i, content.Copy())
	}
	parent.InsertChild(i, content)
	return nil
}

func (b *builder) delete(c editscript.Change) error {
	n, mirror, err := b.nonRoot(c.OldPath)
	if err != nil {
		return err
	}
	tag := tree.Deletion
	if c.Type == editscript.SubtreeDeletion {
		tag = tree.SubtreeDeletion
	}
	for _, d := range []*tree.Node{n, mirror} {
		if d == nil || d.Parent() == nil {
			continue
		}
		mark(d, tag)
		d.Parent().AddPlaceholder(d)
	}
	return nil
}

func (b *builder) move(c editscript.Change, tag tree.ChangeType) error {
	n, mirror, err := b.nonRoot(c.OldPath)
	if err != nil {
		return err
	}
	if _, ok := b.shadows[n]; !ok {
		switch {
		case n.IsInsertion():
			// Nothing was there in the old tree.
			if mirror != nil {
				mirror.RemoveFromParent()
			}
		case mirror != nil:
			mirror.SetChange(tree.MoveFrom)
			mirror.Parent().AddPlaceholder(mirror)
			b.shadows[n] = mirror
		default:
			shadow := snapshot(n)
			shadow.SetChange(tree.MoveFrom)
			n.Parent().AddPlaceholder(shadow)
			b.shadows[n] = shadow
		}
	}
	n.RemoveFromParent()
	parent, pmirror, i, err := b.slot(c.NewPath)
	if err != nil {
		return err
	}
	if pmirror != nil {
		pmirror.InsertChild(i, tree.NewTransient())
	}
	parent.InsertChild(i, n)
	switch {
	case n.IsInsertion():
	case tag == tree.Reshuffle && n.Change() == tree.MoveTo:
	default:
		n.SetChange(tag)
	}
	return nil
}

func (b *builder) update(c editscript.Change) error {
	if c.NewContent == nil {
		return errors.Wrapf(tree.ErrInvalidTree, "update without content")
	}
	n, mirror, err := b.find(c.OldPath)
	if err != nil {
		return err
	}
	record(n, c.NewContent)
	// The placeholder of the node itself keeps the old content.
	if mirror != nil && mirror != b.shadows[n] {
		record(mirror, c.NewContent)
	}
	return nil
}

// record notes the differences between the content of n and content,
// then overwrites the former.
func record(n, content *tree.Node) {
	if n.Text() != content.Text() {
		n.SetUpdate(tree.TextKey, tree.Update{Old: optional(n.Text()), New: optional(content.Text())})
	}
	for k, v := range n.Attrs() {
		if w, ok := content.Attr(k); !ok {
			n.SetUpdate(k, tree.Update{Old: &v})
		} else if v != w {
			n.SetUpdate(k, tree.Update{Old: &v, New: &w})
		}
	}
	for k, w := range content.Attrs() {
		if _, ok := n.Attr(k); !ok {
			n.SetUpdate(k, tree.Update{New: &w})
		}
	}
	n.SetContentFrom(content)
	if n.Change() == tree.Nil {
		n.SetChange(tree.Updated)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// snapshot copies the subtree including placeholders.
func snapshot(n *tree.Node) *tree.Node {
	c := n.ShallowCopy()
	for _, child := range n.Children() {
		c.AppendChild(snapshot(child))
	}
	for _, p := range n.Placeholders() {
		c.AddPlaceholder(snapshot(p))
	}
	return c
}

func mark(n *tree.Node, tag tree.ChangeType) {
	for _, d := range n.PreOrder() {
		d.SetChange(tag)
	}
}

// resolvePlaceholders puts every placeholder back at its recorded
// index, most recent first, after resolving the live children.
func resolvePlaceholders(n *tree.Node) {
	children := append([]*tree.Node(nil), n.Children()...)
	for _, c := range children {
		resolvePlaceholders(c)
	}
	for p := n.PopPlaceholder(); p != nil; p = n.PopPlaceholder() {
		resolvePlaceholders(p)
		n.InsertChild(p.Index(), p)
	}
}

// trim removes transient nodes, and the parts of moved subtrees that
// stand for their own move source. Conversely, what was moved or
// inserted into a node before it moved is only kept at its destination.
func trim(root *tree.Node) {
	for _, n := range root.PostOrder() {
		switch {
		case n.IsTransient():
			n.RemoveFromParent()
		case n.IsMove():
			for _, d := range n.PreOrder()[1:] {
				if d.IsMovedFrom() {
					d.RemoveFromParent()
				}
			}
		case n.IsMovedFrom():
			for _, d := range n.PreOrder()[1:] {
				if d.IsMove() || d.IsInsertion() {
					d.RemoveFromParent()
				}
			}
		}
	}
}
