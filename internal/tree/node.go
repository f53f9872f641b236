package tree

import (
	"bytes"
	"fmt"
	"sort"
)

type nodeFlags uint8

const (
	// The three doubt flags are set by the merger when it had to pick
	// one side of a conflict. A node without them is fully confident.
	positionDoubt nodeFlags = 1 << 0
	parentDoubt   nodeFlags = 1 << 1
	contentDoubt  nodeFlags = 1 << 2
	// A transient node only keeps sibling indices aligned while a delta
	// tree is built; it never survives into a finished tree.
	transient nodeFlags = 1 << 3
	// If you add flags here, add them to nodeFlags.String as well.
)

// String implements fmt.Stringer for debugging purposes.
func (ff nodeFlags) String() string {
	if ff == 0 {
		return "none"
	}
	var buf bytes.Buffer
	if ff&positionDoubt != 0 {
		buf.WriteString("position-doubt,")
	}
	if ff&parentDoubt != 0 {
		buf.WriteString("parent-doubt,")
	}
	if ff&contentDoubt != 0 {
		buf.WriteString("content-doubt,")
	}
	if ff&transient != 0 {
		buf.WriteString("transient,")
	}
	if ff & ^(positionDoubt|parentDoubt|contentDoubt|transient) != 0 {
		buf.WriteString("extraneous,")
	}
	buf.Truncate(buf.Len() - 1)
	return buf.String()
}

// Node is a node in a process tree: a label, unordered attributes, an
// optional text payload and ordered children. Nodes of a delta tree
// additionally carry change annotations, see delta.go.
type Node struct {
	schema *Schema

	label string
	attrs map[string]string
	text  string

	// Pointer to the parent node. For the root node (and only for the root
	// node) this will be nil. A placeholder points to the node holding it.
	parent   *Node
	children []*Node

	// Position within the parent's children. For a placeholder, the
	// position it will be restored to.
	index int

	flags nodeFlags

	change       ChangeType
	updates      map[string]Update
	placeholders []*Node
	base         int // Preorder index in the base tree, plus one.
	origin       int
}

// New returns a detached node with the given label. The schema decides
// how the diff algorithms treat the label; nil means every node has
// ordered children and none is a property node.
func New(schema *Schema, label string) *Node {
	return &Node{
		schema: schema,
		label:  label,
		attrs:  make(map[string]string),
	}
}

// NewTransient returns a node that only keeps indices aligned.
func NewTransient() *Node {
	n := New(nil, "")
	n.flags |= transient
	return n
}

func (node *Node) Schema() *Schema {
	return node.schema
}

func (node *Node) Label() string {
	return node.label
}

func (node *Node) Text() string {
	return node.text
}

func (node *Node) SetText(text string) {
	node.text = text
}

// Attr returns the value of the named attribute and whether it is set.
func (node *Node) Attr(key string) (string, bool) {
	v, ok := node.attrs[key]
	return v, ok
}

func (node *Node) SetAttr(key, value string) {
	if node.attrs == nil {
		node.attrs = make(map[string]string)
	}
	node.attrs[key] = value
}

func (node *Node) DeleteAttr(key string) {
	delete(node.attrs, key)
}

// AttrKeys returns the attribute names in lexicographic order.
func (node *Node) AttrKeys() []string {
	keys := make([]string, 0, len(node.attrs))
	for k := range node.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Attrs returns a copy of the attributes.
func (node *Node) Attrs() map[string]string {
	m := make(map[string]string, len(node.attrs))
	for k, v := range node.attrs {
		m[k] = v
	}
	return m
}

func (node *Node) Parent() *Node {
	return node.parent
}

// Children returns the node's children. The caller must not modify
// the returned slice.
func (node *Node) Children() []*Node {
	return node.children
}

func (node *Node) Child(i int) *Node {
	return node.children[i]
}

func (node *Node) Degree() int {
	return len(node.children)
}

// Index returns the position of the node among its siblings.
func (node *Node) Index() int {
	return node.index
}

func (node *Node) IsRoot() bool {
	return node.parent == nil
}

func (node *Node) IsLeaf() bool {
	return len(node.children) == 0
}

func (node *Node) IsTransient() bool {
	return node.flags&transient != 0
}

func (node *Node) HasInternalOrdering() bool {
	return node.schema.Caps(node.label).Ordered
}

func (node *Node) IsPropertyNode() bool {
	return node.schema.Caps(node.label).Property
}

func (node *Node) ContainsCode() bool {
	return node.schema.Caps(node.label).Code
}

// IsInnerNode tells whether the node is a non-property node that may
// hold activities, e.g., a loop.
func (node *Node) IsInnerNode() bool {
	c := node.schema.Caps(node.label)
	return !c.Property && !c.Leaf
}

// String returns the label and the index path of the node.
func (node *Node) String() string {
	if node == nil {
		return "nil"
	}
	return fmt.Sprintf("%s@%s", node.label, node.Path())
}
