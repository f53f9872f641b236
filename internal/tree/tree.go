package tree

// InsertChild makes c the i-th child of node, shifting later children
// and placeholders to the right. An index beyond the last child
// appends. If c is attached elsewhere, it's detached first.
func (node *Node) InsertChild(i int, c *Node) {
	if c.parent != nil {
		c.RemoveFromParent()
	}
	if i < 0 {
		i = 0
	}
	if i > len(node.children) {
		i = len(node.children)
	}
	for _, p := range node.placeholders {
		if p.index >= i {
			p.index++
		}
	}
	node.children = append(node.children, nil)
	copy(node.children[i+1:], node.children[i:])
	node.children[i] = c
	c.parent = node
	node.reindex(i)
}

func (node *Node) AppendChild(c *Node) {
	node.InsertChild(len(node.children), c)
}

// RemoveFromParent detaches the node (a child or a placeholder) from
// its parent. Placeholders after the removed child shift left.
func (node *Node) RemoveFromParent() {
	p := node.parent
	if p == nil {
		return
	}
	node.parent = nil
	i := node.index
	if i < len(p.children) && p.children[i] == node {
		p.children = append(p.children[:i], p.children[i+1:]...)
		p.reindex(i)
		for _, ph := range p.placeholders {
			if ph.index > i {
				ph.index--
			}
		}
		return
	}
	for j, ph := range p.placeholders {
		if ph == node {
			p.placeholders = append(p.placeholders[:j], p.placeholders[j+1:]...)
			return
		}
	}
}

// MoveTo relocates the node so that it becomes the i-th child of parent.
func (node *Node) MoveTo(parent *Node, i int) {
	node.RemoveFromParent()
	parent.InsertChild(i, node)
}

func (node *Node) reindex(from int) {
	for j := from; j < len(node.children); j++ {
		node.children[j].index = j
	}
}
