package editscript

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"

	"github.com/nicolagi/procdiff/internal/procxml"
	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
)

// xmlCodec writes a <delta> element with one child per change, named
// after the change type, with oldPath and newPath attributes and the
// new content wrapped in <newData>.
type xmlCodec struct{}

func (xmlCodec) encode(w io.Writer, es *EditScript) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	root := xml.StartElement{
		Name: xml.Name{Local: "delta"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "cost"}, Value: strconv.Itoa(es.Len())}},
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	for _, c := range es.Changes {
		start := xml.StartElement{Name: xml.Name{Local: c.Type.String()}}
		if c.OldPath != nil {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "oldPath"}, Value: c.OldPath.String()})
		}
		if c.NewPath != nil {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "newPath"}, Value: c.NewPath.String()})
		}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if c.NewContent != nil {
			data := xml.StartElement{Name: xml.Name{Local: "newData"}}
			if err := enc.EncodeToken(data); err != nil {
				return err
			}
			if err := procxml.EncodeElement(enc, c.NewContent); err != nil {
				return err
			}
			if err := enc.EncodeToken(data.End()); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (xmlCodec) decode(data []byte, schema *tree.Schema) ([]rawChange, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	var raws []rawChange
	var current *rawChange
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return raws, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch depth {
			case 1:
				if t.Name.Local != "delta" {
					return nil, errors.Errorf("root element is %q, want delta", t.Name.Local)
				}
			case 2:
				raws = append(raws, rawChange{typeName: t.Name.Local})
				current = &raws[len(raws)-1]
				for _, a := range t.Attr {
					v := a.Value
					switch a.Name.Local {
					case "oldPath":
						current.oldPath = &v
					case "newPath":
						current.newPath = &v
					}
				}
			case 3:
				if t.Name.Local != "newData" {
					if err := dec.Skip(); err != nil {
						return nil, err
					}
					depth--
				}
			case 4:
				n, err := procxml.DecodeElement(dec, t, schema)
				if err != nil {
					return nil, err
				}
				current.content = n
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
}
