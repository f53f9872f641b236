package tree

// PreOrder returns the nodes of the subtree rooted at node, parents
// before children. Placeholders are not included.
func (node *Node) PreOrder() []*Node {
	var nodes []*Node
	var visit func(*Node)
	visit = func(n *Node) {
		nodes = append(nodes, n)
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(node)
	return nodes
}

// PostOrder returns the nodes of the subtree rooted at node, children
// before parents. Placeholders are not included.
func (node *Node) PostOrder() []*Node {
	var nodes []*Node
	var visit func(*Node)
	visit = func(n *Node) {
		for _, c := range n.children {
			visit(c)
		}
		nodes = append(nodes, n)
	}
	visit(node)
	return nodes
}

// Size returns the number of nodes in the subtree.
func (node *Node) Size() int {
	size := 1
	for _, c := range node.children {
		size += c.Size()
	}
	return size
}

// IsDescendantOf tells whether the node lies in the subtree rooted at
// ancestor, the ancestor itself excluded.
func (node *Node) IsDescendantOf(ancestor *Node) bool {
	for n := node.parent; n != nil; n = n.parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// NonPropertyNodes returns the subtree's nodes in preorder, skipping
// property nodes and the subtrees below them.
func (node *Node) NonPropertyNodes() []*Node {
	var nodes []*Node
	var visit func(*Node)
	visit = func(n *Node) {
		if n.IsPropertyNode() {
			return
		}
		nodes = append(nodes, n)
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(node)
	return nodes
}
