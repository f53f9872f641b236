package editscript

import (
	"fmt"
	"strings"

	"github.com/nicolagi/procdiff/internal/tree"
)

// Type is the kind of an edit operation.
type Type uint8

const (
	Insertion Type = iota + 1
	SubtreeInsertion
	Deletion
	SubtreeDeletion
	Move
	Update
	Reshuffle
)

var typeNames = map[Type]string{
	Insertion:        "insertion",
	SubtreeInsertion: "subtreeInsertion",
	Deletion:         "deletion",
	SubtreeDeletion:  "subtreeDeletion",
	Move:             "move",
	Update:           "update",
	Reshuffle:        "reshuffle",
}

// String returns the name used in encoded edit scripts.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType is the inverse of Type.String. Case is ignored, and so are
// underscores, so that "SUBTREE_INSERTION" is accepted as well.
func ParseType(s string) (Type, error) {
	norm := strings.ToLower(strings.ReplaceAll(s, "_", ""))
	for t, name := range typeNames {
		if strings.ToLower(name) == norm {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown change type %q", s)
}

// Change is one edit operation. Paths are valid in the tree as it is
// right before the change is applied.
type Change struct {
	Type Type

	// OldPath locates the affected node, for all types but insertions.
	OldPath tree.Path

	// NewPath is where the node ends up, for insertions, moves and
	// reshuffles.
	NewPath tree.Path

	// NewContent is a detached node: the inserted node (with its
	// subtree for subtree insertions) or the updated content.
	NewContent *tree.Node
}

func (c Change) String() string {
	var b strings.Builder
	b.WriteString(c.Type.String())
	if len(c.OldPath) > 0 {
		fmt.Fprintf(&b, " %s", c.OldPath)
	} else if c.OldPath != nil {
		b.WriteString(" /")
	}
	if c.NewPath != nil {
		fmt.Fprintf(&b, " -> %s", c.NewPath)
	}
	if c.NewContent != nil {
		fmt.Fprintf(&b, " %s", c.NewContent.Label())
	}
	return b.String()
}

func (c Change) IsInsertion() bool {
	return c.Type == Insertion || c.Type == SubtreeInsertion
}

func (c Change) IsDeletion() bool {
	return c.Type == Deletion || c.Type == SubtreeDeletion
}

// EditScript is an ordered list of changes transforming one tree into
// another.
type EditScript struct {
	Changes []Change
}

func (es *EditScript) Append(c Change) {
	es.Changes = append(es.Changes, c)
}

func (es *EditScript) Len() int {
	return len(es.Changes)
}

// Stats counts changes by kind.
type Stats struct {
	Insertions int
	Deletions  int
	Moves      int
	Updates    int
	Reshuffles int
}

func (es *EditScript) Stats() Stats {
	var s Stats
	for _, c := range es.Changes {
		switch {
		case c.IsInsertion():
			s.Insertions++
		case c.IsDeletion():
			s.Deletions++
		case c.Type == Move:
			s.Moves++
		case c.Type == Update:
			s.Updates++
		case c.Type == Reshuffle:
			s.Reshuffles++
		}
	}
	return s
}

// String lists one change per line.
func (es *EditScript) String() string {
	lines := make([]string, len(es.Changes))
	for i, c := range es.Changes {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}
