package editscript

import (
	"encoding/json"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/nicolagi/procdiff/internal/tree"
)

type nodeRecord struct {
	Label      string            `json:"label" yaml:"label"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Text       string            `json:"text,omitempty" yaml:"text,omitempty"`
	Children   []*nodeRecord     `json:"children,omitempty" yaml:"children,omitempty"`
}

type changeRecord struct {
	Type       string      `json:"type" yaml:"type"`
	OldPath    *string     `json:"oldPath,omitempty" yaml:"oldPath,omitempty"`
	NewPath    *string     `json:"newPath,omitempty" yaml:"newPath,omitempty"`
	NewContent *nodeRecord `json:"newContent,omitempty" yaml:"newContent,omitempty"`
}

type scriptRecord struct {
	Changes []changeRecord `json:"changes" yaml:"changes"`
}

func toNodeRecord(n *tree.Node) *nodeRecord {
	if n == nil {
		return nil
	}
	rec := &nodeRecord{
		Label: n.Label(),
		Text:  n.Text(),
	}
	if len(n.AttrKeys()) > 0 {
		rec.Attributes = n.Attrs()
	}
	for _, c := range n.Children() {
		rec.Children = append(rec.Children, toNodeRecord(c))
	}
	return rec
}

func (rec *nodeRecord) node(schema *tree.Schema) *tree.Node {
	if rec == nil {
		return nil
	}
	n := tree.New(schema, rec.Label)
	for k, v := range rec.Attributes {
		n.SetAttr(k, v)
	}
	n.SetText(rec.Text)
	for _, c := range rec.Children {
		n.AppendChild(c.node(schema))
	}
	return n
}

func toScriptRecord(es *EditScript) scriptRecord {
	rec := scriptRecord{Changes: make([]changeRecord, 0, es.Len())}
	for _, c := range es.Changes {
		rec.Changes = append(rec.Changes, changeRecord{
			Type:       c.Type.String(),
			OldPath:    pathString(c.OldPath),
			NewPath:    pathString(c.NewPath),
			NewContent: toNodeRecord(c.NewContent),
		})
	}
	return rec
}

func (rec scriptRecord) raw(schema *tree.Schema) []rawChange {
	raws := make([]rawChange, len(rec.Changes))
	for i, c := range rec.Changes {
		raws[i] = rawChange{
			typeName: c.Type,
			oldPath:  c.OldPath,
			newPath:  c.NewPath,
			content:  c.NewContent.node(schema),
		}
	}
	return raws
}

type jsonCodec struct{}

func (jsonCodec) encode(w io.Writer, es *EditScript) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toScriptRecord(es))
}

func (jsonCodec) decode(data []byte, schema *tree.Schema) ([]rawChange, error) {
	var rec scriptRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec.raw(schema), nil
}

type yamlCodec struct{}

func (yamlCodec) encode(w io.Writer, es *EditScript) error {
	data, err := yaml.Marshal(toScriptRecord(es))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (yamlCodec) decode(data []byte, schema *tree.Schema) ([]rawChange, error) {
	var rec scriptRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec.raw(schema), nil
}
