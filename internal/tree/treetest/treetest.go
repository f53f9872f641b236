// Package treetest builds trees from a compact notation for tests.
//
// A node is written as its label, optionally followed by attributes in
// braces, a quoted text and children in brackets:
//
//	description[call{id=a,endpoint="http://x"}, manipulate{id=m}"x = 1", loop{id=l}[call{id=b}]]
package treetest

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"unicode"

	"github.com/nicolagi/procdiff/internal/tree"
)

// Parse builds a tree from the notation described in the package
// documentation.
func Parse(schema *tree.Schema, s string) (*tree.Node, error) {
	p := &parser{schema: schema, s: s}
	n, err := p.node()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, p.errorf("trailing input")
	}
	return n, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(schema *tree.Schema, s string) *tree.Node {
	n, err := Parse(schema, s)
	if err != nil {
		panic(err)
	}
	return n
}

// CPEE parses with the CPEE schema.
func CPEE(s string) *tree.Node {
	return MustParse(tree.CPEE, s)
}

type parser struct {
	schema *tree.Schema
	s      string
	pos    int
}

func (p *parser) errorf(format string, a ...interface{}) error {
	return fmt.Errorf("treetest: offset %d in %q: %s", p.pos, p.s, fmt.Sprintf(format, a...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && unicode.IsSpace(rune(p.s[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

func (p *parser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) {
		c := rune(p.s[p.pos])
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && !strings.ContainsRune("_-.:#", c) {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.s) && p.s[p.pos] != '"' {
		if p.s[p.pos] == '\\' {
			p.pos++
		}
		p.pos++
	}
	if p.pos >= len(p.s) {
		return "", p.errorf("unterminated string")
	}
	p.pos++
	return strconv.Unquote(p.s[start:p.pos])
}

func (p *parser) value() (string, error) {
	if p.peek() == '"' {
		return p.quoted()
	}
	return p.ident(), nil
}

func (p *parser) node() (*tree.Node, error) {
	label := p.ident()
	if label == "" {
		return nil, p.errorf("expected label")
	}
	n := tree.New(p.schema, label)
	if p.peek() == '{' {
		p.pos++
		for p.peek() != '}' {
			key := p.ident()
			if key == "" || p.peek() != '=' {
				return nil, p.errorf("expected key=value")
			}
			p.pos++
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			n.SetAttr(key, v)
			if p.peek() == ',' {
				p.pos++
			}
		}
		p.pos++
	}
	if p.peek() == '"' {
		text, err := p.quoted()
		if err != nil {
			return nil, err
		}
		n.SetText(text)
	}
	if p.peek() == '[' {
		p.pos++
		for p.peek() != ']' {
			if p.peek() == 0 {
				return nil, p.errorf("unterminated children")
			}
			c, err := p.node()
			if err != nil {
				return nil, err
			}
			n.AppendChild(c)
			if p.peek() == ',' {
				p.pos++
			}
		}
		p.pos++
	}
	return n, nil
}

// Random returns a random process tree of about size activities. The
// same seed always yields the same tree.
func Random(seed int64, size int) *tree.Node {
	r := rand.New(rand.NewSource(seed))
	root := tree.New(tree.CPEE, "description")
	containers := []*tree.Node{root}
	for i := 0; i < size; i++ {
		parent := containers[r.Intn(len(containers))]
		var n *tree.Node
		switch r.Intn(6) {
		case 0:
			n = tree.New(tree.CPEE, "loop")
			n.SetAttr("condition", fmt.Sprintf("i < %d", r.Intn(10)))
			containers = append(containers, n)
		case 1:
			n = tree.New(tree.CPEE, "manipulate")
			n.SetText(fmt.Sprintf("data.v%d = %d", r.Intn(5), r.Intn(100)))
		default:
			n = tree.New(tree.CPEE, "call")
			n.SetAttr("endpoint", fmt.Sprintf("ep%d", r.Intn(8)))
			params := tree.New(tree.CPEE, "parameters")
			label := tree.New(tree.CPEE, "label")
			label.SetText(fmt.Sprintf("task %d", r.Intn(20)))
			params.AppendChild(label)
			n.AppendChild(params)
		}
		n.SetAttr("id", fmt.Sprintf("a%d", i))
		parent.InsertChild(r.Intn(parent.Degree()+1), n)
	}
	return root
}

// Mutate applies count random edits to a copy of t and returns it:
// insertions, deletions, moves, text and attribute updates.
func Mutate(seed int64, t *tree.Node, count int) *tree.Node {
	r := rand.New(rand.NewSource(seed))
	t = t.Copy()
	for i := 0; i < count; i++ {
		nodes := t.NonPropertyNodes()
		var containers []*tree.Node
		for _, n := range nodes {
			if n.IsInnerNode() {
				containers = append(containers, n)
			}
		}
		if len(nodes) < 2 {
			break
		}
		target := nodes[1+r.Intn(len(nodes)-1)]
		switch r.Intn(5) {
		case 0:
			n := tree.New(tree.CPEE, "call")
			n.SetAttr("id", fmt.Sprintf("m%d_%d", seed, i))
			n.SetAttr("endpoint", fmt.Sprintf("ep%d", r.Intn(8)))
			parent := containers[r.Intn(len(containers))]
			parent.InsertChild(r.Intn(parent.Degree()+1), n)
		case 1:
			target.RemoveFromParent()
		case 2:
			parent := containers[r.Intn(len(containers))]
			if parent == target || parent.IsDescendantOf(target) {
				continue
			}
			target.MoveTo(parent, r.Intn(parent.Degree()+1))
		case 3:
			if target.Label() == "manipulate" {
				target.SetText(target.Text() + fmt.Sprintf("; data.w = %d", r.Intn(100)))
			} else {
				target.SetAttr("note", fmt.Sprintf("n%d", r.Intn(100)))
			}
		default:
			target.SetAttr("id", target.Label()+strconv.Itoa(r.Intn(1000)))
		}
	}
	return t
}
