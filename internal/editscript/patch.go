package editscript

import (
	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
)

// Patch applies the edit script to the tree rooted at root, in place,
// and returns the root. Copy the tree first to keep the original.
func Patch(root *tree.Node, es *EditScript) (*tree.Node, error) {
	for i, c := range es.Changes {
		if err := apply(root, c); err != nil {
			return nil, errors.Wrapf(err, "change %d (%v)", i, c)
		}
	}
	return root, nil
}

func apply(root *tree.Node, c Change) error {
	switch c.Type {
	case Insertion, SubtreeInsertion:
		if c.NewContent == nil {
			return errors.Wrapf(tree.ErrInvalidTree, "insertion without content")
		}
		parent, i, err := slot(root, c.NewPath)
		if err != nil {
			return err
		}
		content := c.NewContent.Copy()
		if c.Type == Insertion {
			content = c.NewContent.ShallowCopy()
		}
		parent.InsertChild(i, content)
	case Deletion, SubtreeDeletion:
		n, err := nonRoot(root, c.OldPath)
		if err != nil {
			return err
		}
		n.RemoveFromParent()
	case Move, Reshuffle:
		n, err := nonRoot(root, c.OldPath)
		if err != nil {
			return err
		}
		n.RemoveFromParent()
		parent, i, err := slot(root, c.NewPath)
		if err != nil {
			return err
		}
		parent.InsertChild(i, n)
	case Update:
		if c.NewContent == nil {
			return errors.Wrapf(tree.ErrInvalidTree, "update without content")
		}
		n, err := root.NodeAt(c.OldPath)
		if err != nil {
			return err
		}
		n.SetContentFrom(c.NewContent)
	default:
		return errors.Errorf("unknown change type %v", c.Type)
	}
	return nil
}

func nonRoot(root *tree.Node, p tree.Path) (*tree.Node, error) {
	if len(p) == 0 {
		return nil, errors.Wrapf(tree.ErrInvalidTree, "the root cannot be moved or deleted")
	}
	return root.NodeAt(p)
}

// slot resolves the parent of p and checks the last index is within
// bounds for an insertion.
func slot(root *tree.Node, p tree.Path) (*tree.Node, int, error) {
	pp, i := p.Parent()
	if i < 0 {
		return nil, 0, errors.Wrapf(tree.ErrInvalidTree, "no parent for the root path")
	}
	parent, err := root.NodeAt(pp)
	if err != nil {
		return nil, 0, err
	}
	if i > parent.Degree() {
		return nil, 0, errors.Wrapf(tree.ErrInvalidTree, "path %v: index %d beyond %d children", p, i, parent.Degree())
	}
	return parent, i, nil
}
