package editscript

import (
	"bytes"
	"io"
	"sync"

	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
)

// Format names an edit script encoding.
type Format string

const (
	XML  Format = "xml"
	JSON Format = "json"
	YAML Format = "yaml"
)

// Codec defines how we serialize and deserialize edit scripts.
type Codec interface {
	encode(w io.Writer, es *EditScript) error
	decode(data []byte, schema *tree.Schema) ([]rawChange, error)
}

type multiCodec struct {
	mu     sync.Mutex
	codecs map[Format]Codec
}

var (
	errNoCodec = errors.New("no codec found")

	codecs = newMultiCodec()
)

func init() {
	codecs.register(XML, xmlCodec{})
	codecs.register(JSON, jsonCodec{})
	codecs.register(YAML, yamlCodec{})
}

func newMultiCodec() *multiCodec {
	return &multiCodec{
		codecs: make(map[Format]Codec),
	}
}

func (mc *multiCodec) register(f Format, c Codec) {
	mc.mu.Lock()
	mc.codecs[f] = c
	mc.mu.Unlock()
}

func (mc *multiCodec) codecFor(f Format) Codec {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.codecs[f]
}

// sniff guesses the format from the first significant byte.
func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return YAML
	case trimmed[0] == '<':
		return XML
	case trimmed[0] == '{' || trimmed[0] == '[':
		return JSON
	default:
		return YAML
	}
}

// Encode writes the script in the given format.
func Encode(w io.Writer, es *EditScript, f Format) error {
	c := codecs.codecFor(f)
	if c == nil {
		return errors.Wrapf(errNoCodec, "format %q", f)
	}
	return c.encode(w, es)
}

// Decode reads a script in any supported format. Decoded content nodes
// use the given schema.
func Decode(data []byte, schema *tree.Schema) (*EditScript, error) {
	f := sniff(data)
	c := codecs.codecFor(f)
	if c == nil {
		return nil, errors.Wrapf(errNoCodec, "format %q", f)
	}
	raws, err := c.decode(data, schema)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s edit script", f)
	}
	es := new(EditScript)
	for i, raw := range raws {
		change, err := raw.change()
		if err != nil {
			return nil, errors.Wrapf(err, "change %d", i)
		}
		es.Append(change)
	}
	return es, nil
}

// rawChange is a change as found in an encoded script, before the
// fields required by its type were checked.
type rawChange struct {
	typeName string
	oldPath  *string
	newPath  *string
	content  *tree.Node
}

var changeDecoders = map[Type]func(raw rawChange) (Change, error){
	Insertion:        decodeInsertion,
	SubtreeInsertion: decodeInsertion,
	Deletion:         decodeDeletion,
	SubtreeDeletion:  decodeDeletion,
	Move:             decodeMove,
	Reshuffle:        decodeMove,
	Update:           decodeUpdate,
}

func (raw rawChange) change() (Change, error) {
	t, err := ParseType(raw.typeName)
	if err != nil {
		return Change{}, err
	}
	return changeDecoders[t](raw)
}

func (raw rawChange) path(p *string, name string) (tree.Path, error) {
	if p == nil {
		return nil, errors.Errorf("%s: missing %s", raw.typeName, name)
	}
	return tree.ParsePath(*p)
}

func (raw rawChange) requireContent() error {
	if raw.content == nil {
		return errors.Errorf("%s: missing new content", raw.typeName)
	}
	return nil
}

func decodeInsertion(raw rawChange) (Change, error) {
	t, _ := ParseType(raw.typeName)
	newPath, err := raw.path(raw.newPath, "newPath")
	if err != nil {
		return Change{}, err
	}
	if len(newPath) == 0 {
		return Change{}, errors.Errorf("%s: cannot insert a root", raw.typeName)
	}
	if err := raw.requireContent(); err != nil {
		return Change{}, err
	}
	return Change{Type: t, NewPath: newPath, NewContent: raw.content}, nil
}

func decodeDeletion(raw rawChange) (Change, error) {
	t, _ := ParseType(raw.typeName)
	oldPath, err := raw.path(raw.oldPath, "oldPath")
	if err != nil {
		return Change{}, err
	}
	return Change{Type: t, OldPath: oldPath}, nil
}

func decodeMove(raw rawChange) (Change, error) {
	t, _ := ParseType(raw.typeName)
	oldPath, err := raw.path(raw.oldPath, "oldPath")
	if err != nil {
		return Change{}, err
	}
	newPath, err := raw.path(raw.newPath, "newPath")
	if err != nil {
		return Change{}, err
	}
	return Change{Type: t, OldPath: oldPath, NewPath: newPath}, nil
}

func decodeUpdate(raw rawChange) (Change, error) {
	oldPath, err := raw.path(raw.oldPath, "oldPath")
	if err != nil {
		return Change{}, err
	}
	if err := raw.requireContent(); err != nil {
		return Change{}, err
	}
	return Change{Type: Update, OldPath: oldPath, NewContent: raw.content}, nil
}

func pathString(p tree.Path) *string {
	if p == nil {
		return nil
	}
	s := p.String()
	return &s
}
