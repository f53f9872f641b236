package procxml

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
)

// Parse reads the first element of the document and everything below.
func Parse(r io.Reader, schema *tree.Schema) (*tree.Node, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New("procxml.Parse: no element found")
		}
		if err != nil {
			return nil, errors.Wrap(err, "procxml.Parse")
		}
		if start, ok := tok.(xml.StartElement); ok {
			return DecodeElement(dec, start, schema)
		}
	}
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string, schema *tree.Schema) (*tree.Node, error) {
	return Parse(strings.NewReader(s), schema)
}

// DecodeElement builds the subtree of an element whose start tag was
// just read from dec, consuming tokens up to its end tag.
func DecodeElement(dec *xml.Decoder, start xml.StartElement, schema *tree.Schema) (*tree.Node, error) {
	n := tree.New(schema, start.Name.Local)
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		n.SetAttr(a.Name.Local, a.Value)
	}
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrapf(err, "procxml.DecodeElement: inside %q", start.Name.Local)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			c, err := DecodeElement(dec, t, schema)
			if err != nil {
				return nil, err
			}
			n.AppendChild(c)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if n.IsLeaf() {
				n.SetText(text.String())
			}
			return n, nil
		}
	}
}

type writeOptions struct {
	pretty    bool
	namespace string
	decorate  func(*tree.Node, *xml.StartElement)
}

// WriteOption follows the functional options pattern to pass options to Write.
type WriteOption func(*writeOptions)

// Pretty indents the output.
func Pretty(value bool) WriteOption {
	return func(opts *writeOptions) {
		opts.pretty = value
	}
}

// Namespace sets the default namespace on the root element.
func Namespace(ns string) WriteOption {
	return func(opts *writeOptions) {
		opts.namespace = ns
	}
}

// Decorate lets the caller alter each start element before it's written.
func Decorate(fn func(*tree.Node, *xml.StartElement)) WriteOption {
	return func(opts *writeOptions) {
		opts.decorate = fn
	}
}

// Write serializes the subtree rooted at n. Attributes are sorted by
// name.
func Write(w io.Writer, n *tree.Node, options ...WriteOption) error {
	var opts writeOptions
	for _, opt := range options {
		opt(&opts)
	}
	enc := xml.NewEncoder(w)
	if opts.pretty {
		enc.Indent("", "  ")
	}
	if err := encode(enc, n, &opts, true); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	if opts.pretty {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

// String serializes the subtree rooted at n compactly.
func String(n *tree.Node) string {
	var b strings.Builder
	_ = Write(&b, n)
	return b.String()
}

// EncodeElement writes the subtree rooted at n to an existing encoder.
func EncodeElement(enc *xml.Encoder, n *tree.Node) error {
	return encode(enc, n, &writeOptions{}, false)
}

func encode(enc *xml.Encoder, n *tree.Node, opts *writeOptions, root bool) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Label()}}
	if root && opts.namespace != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: opts.namespace})
	}
	for _, k := range n.AttrKeys() {
		v, _ := n.Attr(k)
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: k}, Value: v})
	}
	if opts.decorate != nil {
		opts.decorate(n, &start)
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.Text() != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text())); err != nil {
			return err
		}
	}
	for _, c := range n.Children() {
		if err := encode(enc, c, opts, false); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
