package delta

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/nicolagi/procdiff/internal/diff"
	"github.com/nicolagi/procdiff/internal/procxml"
	"github.com/nicolagi/procdiff/internal/tree"
)

// Namespaces of the prefixes used when writing delta trees as XML.
// Element prefixes tell the change a node underwent, attribute prefixes
// tell how an attribute (or the text, as "text") was updated.
var Namespaces = map[string]string{
	"ins":  "urn:procdiff:delta:insertion",
	"del":  "urn:procdiff:delta:deletion",
	"mvt":  "urn:procdiff:delta:move-to",
	"mvf":  "urn:procdiff:delta:move-from",
	"upd":  "urn:procdiff:delta:update",
	"rsh":  "urn:procdiff:delta:reshuffle",
	"conf": "urn:procdiff:delta:confidence",
}

var elementPrefixes = map[tree.ChangeType]string{
	tree.Insertion:        "ins",
	tree.SubtreeInsertion: "ins",
	tree.Deletion:         "del",
	tree.SubtreeDeletion:  "del",
	tree.MoveTo:           "mvt",
	tree.MoveFrom:         "mvf",
	tree.Updated:          "upd",
	tree.Reshuffle:        "rsh",
}

// WriteXML writes the delta tree rooted at root as a process description
// whose elements and attributes are prefixed according to the changes.
// Attributes written "ins:k" hold the inserted value, "del:k" and "upd:k"
// hold the old value (the plain attribute holds the new one for
// updates). Nodes of a merge result additionally get "conf:position",
// "conf:parent" and "conf:content" set to false where in doubt.
func WriteXML(w io.Writer, root *tree.Node, pretty bool) error {
	return procxml.Write(w, root,
		procxml.Pretty(pretty),
		procxml.Namespace(procxml.DescriptionNamespace),
		procxml.Decorate(decorate),
	)
}

func decorate(n *tree.Node, start *xml.StartElement) {
	if prefix, ok := elementPrefixes[n.Change()]; ok {
		start.Name.Local = prefix + ":" + start.Name.Local
	}
	if n.IsRoot() {
		prefixes := make([]string, 0, len(Namespaces))
		for p := range Namespaces {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)
		for _, p := range prefixes {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "xmlns:" + p}, Value: Namespaces[p]})
		}
	}
	updates := n.Updates()
	for _, k := range updateKeys(n) {
		u := updates[k]
		name := k
		if k == tree.TextKey {
			name = "text"
		}
		switch {
		case u.Old == nil:
			// The plain attribute becomes the prefixed one.
			start.Attr = removeAttr(start.Attr, name)
			value := ""
			if u.New != nil && k != tree.TextKey {
				value = *u.New
			}
			start.Attr = append(start.Attr, prefixed("ins", name, value))
		case u.New == nil:
			start.Attr = append(start.Attr, prefixed("del", name, *u.Old))
		default:
			start.Attr = append(start.Attr, prefixed("upd", name, *u.Old))
		}
	}
	c := n.Confidence()
	for _, f := range []struct {
		name string
		ok   bool
	}{{"position", c.Position}, {"parent", c.Parent}, {"content", c.Content}} {
		if !f.ok {
			start.Attr = append(start.Attr, prefixed("conf", f.name, "false"))
		}
	}
}

func prefixed(prefix, name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: prefix + ":" + name}, Value: value}
}

func removeAttr(attrs []xml.Attr, name string) []xml.Attr {
	out := attrs[:0]
	for _, a := range attrs {
		if a.Name.Space != "" || a.Name.Local != name {
			out = append(out, a)
		}
	}
	return out
}

func updateKeys(n *tree.Node) []string {
	keys := make([]string, 0, len(n.Updates()))
	for k := range n.Updates() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Colors maps change types to the functions decorating the lines of the
// text rendering.
type Colors struct {
	Default func(string, ...any) string
	Map     map[tree.ChangeType]func(string, ...any) string
}

func NewColors() *Colors {
	moved := color.New(color.FgBlue).SprintfFunc()
	return &Colors{
		Default: colorDefault,
		Map: map[tree.ChangeType]func(string, ...any) string{
			tree.Insertion:        color.GreenString,
			tree.SubtreeInsertion: color.GreenString,
			tree.Deletion:         color.RedString,
			tree.SubtreeDeletion:  color.RedString,
			tree.MoveTo:           moved,
			tree.MoveFrom:         color.New(color.FgHiBlack).SprintfFunc(),
			tree.Updated:          color.YellowString,
			tree.Reshuffle:        color.CyanString,
		},
	}
}

func colorDefault(format string, a ...any) string {
	return fmt.Sprintf(format, a...)
}

func (c *Colors) get(t tree.ChangeType) func(string, ...any) string {
	if c == nil {
		return colorDefault
	}
	if f := c.Map[t]; f != nil {
		return f
	}
	return c.Default
}

// TextOptions tunes WriteText.
type TextOptions struct {
	// Colors decorates lines, or nil for plain text.
	Colors *Colors

	// ContextLines is the number of context lines of the unified diffs
	// shown for updated code.
	ContextLines int
}

// WriteText draws the delta tree as an indented outline, one node per
// line, with the updates of each node listed below it.
func WriteText(w io.Writer, root *tree.Node, opts TextOptions) error {
	tw := &textWriter{w: w, opts: opts}
	tw.node(root, "", "")
	return tw.err
}

type textWriter struct {
	w    io.Writer
	opts TextOptions
	err  error
}

func (tw *textWriter) printf(format string, a ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, a...)
}

func (tw *textWriter) node(n *tree.Node, lead, indent string) {
	paint := tw.opts.Colors.get(n.Change())
	tw.printf("%s%s\n", lead, paint("%s", describe(n)))
	children := n.Children()
	detail := indent + "│   "
	if len(children) == 0 {
		detail = indent + "    "
	}
	updates := n.Updates()
	for _, k := range updateKeys(n) {
		tw.update(n, k, updates[k], detail)
	}
	for i, c := range children {
		if i == len(children)-1 {
			tw.node(c, indent+"└── ", indent+"    ")
		} else {
			tw.node(c, indent+"├── ", indent+"│   ")
		}
	}
}

func (tw *textWriter) update(n *tree.Node, key string, u tree.Update, indent string) {
	paint := tw.opts.Colors.get(tree.Updated)
	if key == tree.TextKey && n.ContainsCode() && u.Old != nil && u.New != nil {
		tw.printf("%s%s\n", indent, paint("~ code"))
		d, err := diff.Unified(*u.Old, *u.New, tw.opts.ContextLines)
		if err != nil {
			tw.err = err
			return
		}
		for _, line := range strings.Split(strings.TrimSuffix(d, "\n"), "\n") {
			tw.printf("%s  %s\n", indent, tw.diffLine(line))
		}
		return
	}
	name := key
	if key == tree.TextKey {
		name = "text"
	}
	tw.printf("%s%s\n", indent, paint("~ %s: %s -> %s", name, quote(u.Old), quote(u.New)))
}

func (tw *textWriter) diffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+"):
		return tw.opts.Colors.get(tree.Insertion)("%s", line)
	case strings.HasPrefix(line, "-"):
		return tw.opts.Colors.get(tree.Deletion)("%s", line)
	default:
		return line
	}
}

func quote(s *string) string {
	if s == nil {
		return "(none)"
	}
	return fmt.Sprintf("%q", *s)
}

// describe returns the label, the id if any, and the change.
func describe(n *tree.Node) string {
	var b strings.Builder
	b.WriteString(n.Label())
	if id, ok := n.Attr("id"); ok {
		fmt.Fprintf(&b, " %s", id)
	}
	if n.Change() != tree.Nil {
		fmt.Fprintf(&b, " [%s]", n.Change())
	}
	if n.IsLeaf() && n.Text() != "" && !n.ContainsCode() {
		fmt.Fprintf(&b, " %q", n.Text())
	}
	c := n.Confidence()
	var doubts []string
	if !c.Position {
		doubts = append(doubts, "position")
	}
	if !c.Parent {
		doubts = append(doubts, "parent")
	}
	if !c.Content {
		doubts = append(doubts, "content")
	}
	if len(doubts) > 0 {
		fmt.Fprintf(&b, " (doubtful %s)", strings.Join(doubts, ", "))
	}
	return b.String()
}
