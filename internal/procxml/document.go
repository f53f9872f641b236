package procxml

import (
	"io"
	"strings"

	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
)

// DescriptionNamespace is the namespace of CPEE process models.
const DescriptionNamespace = "http://cpee.org/ns/description/1.0"

// Variable is a data element and its initial value.
type Variable struct {
	Name  string
	Value string
}

// Document is a parsed process document.
type Document struct {
	Process *tree.Node

	// Endpoint identifiers and the URLs they stand for.
	Endpoints map[string]string

	// Data elements in document order.
	DataElements []Variable
}

// ParseDocument reads either a CPEE properties document or any XML
// document whose root is the process model itself.
func ParseDocument(r io.Reader, schema *tree.Schema) (*Document, error) {
	root, err := Parse(r, schema)
	if err != nil {
		return nil, err
	}
	doc := &Document{Endpoints: make(map[string]string)}
	if root.Label() != "properties" {
		doc.Process = root
		return doc, nil
	}
	for _, c := range root.Children() {
		switch c.Label() {
		case "dslx":
			for _, d := range c.Children() {
				if d.Label() == "description" {
					d.RemoveFromParent()
					doc.Process = d
					break
				}
			}
		case "endpoints":
			for _, e := range c.Children() {
				doc.Endpoints[e.Label()] = strings.TrimSpace(e.Text())
			}
		case "dataelements":
			for _, e := range c.Children() {
				doc.DataElements = append(doc.DataElements, Variable{
					Name:  e.Label(),
					Value: strings.TrimSpace(e.Text()),
				})
			}
		}
	}
	if doc.Process == nil {
		return nil, errors.New("procxml.ParseDocument: properties without dslx/description")
	}
	return doc, nil
}

// WriteProcess writes a process tree as a CPEE description.
func WriteProcess(w io.Writer, process *tree.Node, pretty bool) error {
	return Write(w, process, Pretty(pretty), Namespace(DescriptionNamespace))
}

