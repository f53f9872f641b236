package tree

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes one line per node of the subtree, indented by depth,
// with change annotations and doubts when present. Placeholders are
// listed below their holder with a "~" marker.
func (node *Node) Dump(w io.Writer) error {
	return node.dumpFrom(w, 0, "")
}

func (node *Node) dumpFrom(w io.Writer, depth int, marker string) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(marker)
	b.WriteString(node.label)
	for _, k := range node.AttrKeys() {
		fmt.Fprintf(&b, " %s=%q", k, node.attrs[k])
	}
	if node.text != "" {
		fmt.Fprintf(&b, " text=%q", node.text)
	}
	if node.change != Nil {
		fmt.Fprintf(&b, " [%v]", node.change)
	}
	if ff := node.flags &^ transient; ff != 0 {
		fmt.Fprintf(&b, " {%v}", ff)
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	for _, c := range node.children {
		if err := c.dumpFrom(w, depth+1, ""); err != nil {
			return err
		}
	}
	for _, p := range node.placeholders {
		if err := p.dumpFrom(w, depth+1, fmt.Sprintf("~%d ", p.index)); err != nil {
			return err
		}
	}
	return nil
}
