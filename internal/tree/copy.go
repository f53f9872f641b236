package tree

// ShallowCopy returns a detached copy of the node without children or
// placeholders. Annotations and confidence flags are copied.
func (node *Node) ShallowCopy() *Node {
	c := &Node{
		schema: node.schema,
		label:  node.label,
		attrs:  node.Attrs(),
		text:   node.text,
		index:  node.index,
		flags:  node.flags,
		change: node.change,
		base:   node.base,
		origin: node.origin,
	}
	for k, u := range node.updates {
		c.SetUpdate(k, u)
	}
	return c
}

// Copy returns a detached deep copy of the subtree, placeholders
// excluded.
func (node *Node) Copy() *Node {
	c := node.ShallowCopy()
	for _, child := range node.children {
		c.AppendChild(child.Copy())
	}
	return c
}

// CopyWithMapping is like Copy but also returns the correspondence
// from original nodes to their copies.
func (node *Node) CopyWithMapping() (*Node, map[*Node]*Node) {
	m := make(map[*Node]*Node)
	var cp func(*Node) *Node
	cp = func(n *Node) *Node {
		c := n.ShallowCopy()
		m[n] = c
		for _, child := range n.children {
			c.AppendChild(cp(child))
		}
		return c
	}
	return cp(node), m
}

// SetContentFrom overwrites label, attributes and text with those of
// other.
func (node *Node) SetContentFrom(other *Node) {
	node.label = other.label
	node.attrs = other.Attrs()
	node.text = other.text
}
