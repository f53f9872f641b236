package tree

import (
	"encoding/binary"
	"hash/maphash"
	"sort"
	"strconv"
	"strings"
)

// ContentEquals compares label, attributes and text.
func (node *Node) ContentEquals(other *Node) bool {
	if node.label != other.label || node.text != other.text || len(node.attrs) != len(other.attrs) {
		return false
	}
	for k, v := range node.attrs {
		if w, ok := other.attrs[k]; !ok || v != w {
			return false
		}
	}
	return true
}

// Identical compares two subtrees including the order of all children.
func Identical(a, b *Node) bool {
	if !a.ContentEquals(b) || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !Identical(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

// Equivalent compares two subtrees, except that the children of nodes
// without internal ordering are compared as multisets.
func Equivalent(a, b *Node) bool {
	return ContentHash(a) == ContentHash(b) && equivalent(a, b)
}

func equivalent(a, b *Node) bool {
	if !a.ContentEquals(b) || len(a.children) != len(b.children) {
		return false
	}
	if a.HasInternalOrdering() {
		for i := range a.children {
			if !equivalent(a.children[i], b.children[i]) {
				return false
			}
		}
		return true
	}
	used := make([]bool, len(b.children))
outer:
	for _, ac := range a.children {
		for j, bc := range b.children {
			if !used[j] && equivalent(ac, bc) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

var seed = maphash.MakeSeed()

// ContentHash hashes the subtree. Children of nodes without internal
// ordering contribute independently of their order.
func ContentHash(node *Node) uint64 {
	return HashSubtrees(node)[node]
}

// HashSubtrees returns the content hash of every node in the subtree.
func HashSubtrees(root *Node) map[*Node]uint64 {
	hashes := make(map[*Node]uint64)
	for _, n := range root.PostOrder() {
		var h maphash.Hash
		h.SetSeed(seed)
		h.WriteString(n.label)
		h.WriteByte(0)
		for _, k := range n.AttrKeys() {
			h.WriteString(k)
			h.WriteByte('=')
			h.WriteString(n.attrs[k])
			h.WriteByte(0)
		}
		h.WriteString(n.text)
		h.WriteByte(0)
		childHashes := make([]uint64, len(n.children))
		for i, c := range n.children {
			childHashes[i] = hashes[c]
		}
		if !n.HasInternalOrdering() {
			sort.Slice(childHashes, func(i, j int) bool { return childHashes[i] < childHashes[j] })
		}
		var buf [8]byte
		for _, ch := range childHashes {
			binary.LittleEndian.PutUint64(buf[:], ch)
			h.Write(buf[:])
		}
		hashes[n] = h.Sum64()
	}
	return hashes
}

// PropertyMap flattens the property nodes below node into a map from
// slash-separated label paths to values. Attributes of property nodes
// appear as "path@name". Repeated labels get an index suffix.
func (node *Node) PropertyMap() map[string]string {
	m := make(map[string]string)
	var visit func(n *Node, prefix string)
	visit = func(n *Node, prefix string) {
		seen := make(map[string]int)
		for _, c := range n.children {
			if !c.IsPropertyNode() {
				continue
			}
			key := c.label
			if k := seen[c.label]; k > 0 {
				key = c.label + "[" + strconv.Itoa(k) + "]"
			}
			seen[c.label]++
			if prefix != "" {
				key = prefix + "/" + key
			}
			if t := strings.TrimSpace(c.text); t != "" {
				m[key] = t
			}
			for _, a := range c.AttrKeys() {
				m[key+"@"+a] = c.attrs[a]
			}
			visit(c, key)
		}
	}
	visit(node, "")
	return m
}
