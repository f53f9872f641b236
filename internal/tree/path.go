package tree

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Path is the sequence of child indices leading from the root to a
// node. The root has the empty path.
type Path []int

// String renders the path as slash-separated indices, e.g., "0/3/1".
func (p Path) String() string {
	var b strings.Builder
	for i, x := range p {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Itoa(x))
	}
	return b.String()
}

// Parent returns the path of the parent and the last index.
func (p Path) Parent() (Path, int) {
	if len(p) == 0 {
		return nil, -1
	}
	return p[:len(p)-1], p[len(p)-1]
}

// ParsePath is the inverse of Path.String.
func ParsePath(s string) (Path, error) {
	s = strings.Trim(s, "/")
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, "/")
	p := make(Path, len(parts))
	for i, part := range parts {
		x, err := strconv.Atoi(part)
		if err != nil || x < 0 {
			return nil, errorf("ParsePath", "%q: bad element %q", s, part)
		}
		p[i] = x
	}
	return p, nil
}

// Path returns the index path from the root to the node.
func (node *Node) Path() Path {
	var rev Path
	for n := node; n.parent != nil; n = n.parent {
		rev = append(rev, n.index)
	}
	p := make(Path, len(rev))
	for i, x := range rev {
		p[len(rev)-1-i] = x
	}
	return p
}

// NodeAt follows the path from node, which is usually a root.
func (node *Node) NodeAt(p Path) (*Node, error) {
	n := node
	for depth, i := range p {
		if i < 0 || i >= len(n.children) {
			return nil, errors.Wrapf(ErrInvalidTree, "path %v: no child %d at depth %d of %v", p, i, depth, n)
		}
		n = n.children[i]
	}
	return n, nil
}
