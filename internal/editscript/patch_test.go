package editscript

import (
	"errors"
	"strings"
	"testing"

	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/nicolagi/procdiff/internal/tree/treetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchRejectsInapplicableScripts(t *testing.T) {
	content := treetest.CPEE(`stop`)
	testCases := []struct {
		name   string
		change Change
	}{
		{"deletion beyond children", Change{Type: Deletion, OldPath: tree.Path{5}}},
		{"deletion of the root", Change{Type: Deletion, OldPath: tree.Path{}}},
		{"insertion index too large", Change{Type: Insertion, NewPath: tree.Path{3}, NewContent: content}},
		{"insertion below missing parent", Change{Type: Insertion, NewPath: tree.Path{0, 0, 0}, NewContent: content}},
		{"move from nowhere", Change{Type: Move, OldPath: tree.Path{0, 1}, NewPath: tree.Path{0}}},
		{"update of missing node", Change{Type: Update, OldPath: tree.Path{2}, NewContent: content}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := treetest.CPEE(`description[call{id=a}]`)
			_, err := Patch(root, &EditScript{Changes: []Change{tc.change}})
			if got, want := err, tree.ErrInvalidTree; !errors.Is(got, want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestPatchAppliesEveryKind(t *testing.T) {
	root := treetest.CPEE(`description[call{id=a}, call{id=b}, loop{id=l}]`)
	es := &EditScript{Changes: []Change{
		{Type: Insertion, NewPath: tree.Path{0}, NewContent: treetest.CPEE(`stop{id=s}`)},
		{Type: Move, OldPath: tree.Path{1}, NewPath: tree.Path{2, 0}},
		{Type: Update, OldPath: tree.Path{1}, NewContent: treetest.CPEE(`call{id=b,endpoint=z}`)},
		{Type: SubtreeInsertion, NewPath: tree.Path{2, 1}, NewContent: treetest.CPEE(`loop{id=m}[stop]`)},
		{Type: Reshuffle, OldPath: tree.Path{2}, NewPath: tree.Path{0}},
		{Type: Deletion, OldPath: tree.Path{1}},
	}}
	got, err := Patch(root, es)
	require.NoError(t, err)
	want := treetest.CPEE(`description[loop{id=l}[call{id=a}, loop{id=m}[stop]], call{id=b,endpoint=z}]`)
	assert.True(t, tree.Identical(want, got), "got %s", dump(got))
}

func dump(n *tree.Node) string {
	var b strings.Builder
	_ = n.Dump(&b)
	return b.String()
}
