package delta_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nicolagi/procdiff/internal/delta"
	"github.com/nicolagi/procdiff/internal/editscript"
	"github.com/nicolagi/procdiff/internal/match"
	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/nicolagi/procdiff/internal/tree/treetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func path(s string) tree.Path {
	p, err := tree.ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// outline lists the nodes in preorder as label, id and change.
func outline(root *tree.Node) string {
	var parts []string
	for _, n := range root.PreOrder() {
		s := n.Label()
		if id, ok := n.Attr("id"); ok {
			s += " " + id
		}
		if n.Change() != tree.Nil {
			s += ":" + n.Change().String()
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func TestTreeNumbersBaseNodes(t *testing.T) {
	old := treetest.CPEE(`description[call{id=a}, loop{id=l}[stop{id=s}]]`)
	root, err := delta.Tree(old, &editscript.EditScript{})
	require.NoError(t, err)
	for i, n := range root.PreOrder() {
		id, ok := n.Base()
		assert.True(t, ok)
		assert.Equal(t, i, id)
	}
	_, ok := old.Base()
	assert.False(t, ok, "input must not be annotated")
}

func TestExtendedTreeMoveAndInsertion(t *testing.T) {
	old := treetest.CPEE(`description[call{id=a}, call{id=b}, loop{id=l}[call{id=c}]]`)
	es := &editscript.EditScript{}
	es.Append(editscript.Change{Type: editscript.Move, OldPath: path("0"), NewPath: path("1/1")})
	es.Append(editscript.Change{Type: editscript.Insertion, NewPath: path("2"), NewContent: treetest.CPEE(`stop{id=s}`)})

	live, err := delta.Tree(old, es)
	require.NoError(t, err)
	assert.Equal(t, "description, call b, loop l, call c, call a:MOVE_TO, stop s:INSERTION", outline(live))
	require.Len(t, live.Placeholders(), 1)
	assert.Equal(t, tree.MoveFrom, live.Placeholders()[0].Change())

	extended, err := delta.ExtendedTree(old, es)
	require.NoError(t, err)
	assert.Equal(t, "description, call a:MOVE_FROM, call b, loop l, call c, call a:MOVE_TO, stop s:INSERTION", outline(extended))
}

func TestExtendedTreeNestedMoves(t *testing.T) {
	old := treetest.CPEE(`description[loop{id=l}[call{id=a}], call{id=b}]`)
	es := &editscript.EditScript{}
	es.Append(editscript.Change{Type: editscript.Move, OldPath: path("0/0"), NewPath: path("1")})
	es.Append(editscript.Change{Type: editscript.Move, OldPath: path("0"), NewPath: path("2")})

	extended, err := delta.ExtendedTree(old, es)
	require.NoError(t, err)
	assert.Equal(t, "description, loop l:MOVE_FROM, call a:MOVE_FROM, call a:MOVE_TO, call b, loop l:MOVE_TO", outline(extended))
}

func TestExtendedTreeDropsAlignmentNodes(t *testing.T) {
	old := treetest.CPEE(`description[loop{id=l}[call{id=a}], call{id=b}]`)
	es := &editscript.EditScript{}
	es.Append(editscript.Change{Type: editscript.Move, OldPath: path("0"), NewPath: path("1")})
	es.Append(editscript.Change{Type: editscript.Move, OldPath: path("0"), NewPath: path("0/1")})

	extended, err := delta.ExtendedTree(old, es)
	require.NoError(t, err)
	for _, n := range extended.PreOrder() {
		assert.False(t, n.IsTransient(), outline(extended))
	}
	assert.Equal(t, "description, call b:MOVE_FROM, loop l:MOVE_FROM, call a, loop l:MOVE_TO, call a, call b:MOVE_TO", outline(extended))
}

func TestUpdatesAndDeletions(t *testing.T) {
	old := treetest.CPEE(`description[call{id=a,endpoint=x,label=gone}, stop{id=s}, manipulate{id=m}"x = 1"]`)
	es := &editscript.EditScript{}
	es.Append(editscript.Change{Type: editscript.Update, OldPath: path("0"), NewContent: treetest.CPEE(`call{id=a,endpoint=y,method=post}`)})
	es.Append(editscript.Change{Type: editscript.Update, OldPath: path("2"), NewContent: treetest.CPEE(`manipulate{id=m}"x = 2"`)})
	es.Append(editscript.Change{Type: editscript.Deletion, OldPath: path("1")})

	live, err := delta.Tree(old, es)
	require.NoError(t, err)
	assert.Equal(t, "description, call a:UPDATE, manipulate m:UPDATE", outline(live))

	call := live.Child(0)
	str := func(s string) *string { return &s }
	assert.Equal(t, map[string]tree.Update{
		"endpoint": {Old: str("x"), New: str("y")},
		"label":    {Old: str("gone")},
		"method":   {New: str("post")},
	}, call.Updates())
	_, ok := call.Attr("label")
	assert.False(t, ok)
	assert.Equal(t, map[string]tree.Update{tree.TextKey: {Old: str("x = 1"), New: str("x = 2")}}, live.Child(1).Updates())

	extended, err := delta.ExtendedTree(old, es)
	require.NoError(t, err)
	assert.Equal(t, "description, call a:UPDATE, stop s:DELETION, manipulate m:UPDATE", outline(extended))
}

func TestInvalidScripts(t *testing.T) {
	old := treetest.CPEE(`description[call{id=a}]`)
	testCases := []editscript.Change{
		{Type: editscript.Deletion, OldPath: tree.Path{}},
		{Type: editscript.Move, OldPath: path("0"), NewPath: path("3")},
		{Type: editscript.Move, OldPath: path("5"), NewPath: path("0")},
		{Type: editscript.Insertion, NewPath: path("0/0/0"), NewContent: treetest.CPEE(`stop`)},
		{Type: editscript.Insertion, NewPath: path("0")},
		{Type: editscript.Update, OldPath: path("1"), NewContent: treetest.CPEE(`call`)},
	}
	for _, c := range testCases {
		t.Run(c.String(), func(t *testing.T) {
			_, err := delta.Tree(old, &editscript.EditScript{Changes: []editscript.Change{c}})
			assert.ErrorIs(t, err, tree.ErrInvalidTree)
		})
	}
}

// Removing the placeholders from a delta tree leaves the new tree.
func TestTreeYieldsNewTree(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprint(seed), func(t *testing.T) {
			old := treetest.Random(seed, 25)
			new := treetest.Mutate(seed, old, 8)
			p, err := match.ForMode(match.Options{Mode: match.Quality, Threshold: match.DefaultThreshold})
			require.NoError(t, err)
			es, _, err := editscript.Diff(old, new, p)
			require.NoError(t, err)
			live, err := delta.Tree(old, es)
			require.NoError(t, err)
			assert.True(t, tree.Equivalent(new, live))
			extended, err := delta.ExtendedTree(old, es)
			require.NoError(t, err)
			for _, n := range extended.PreOrder() {
				assert.False(t, n.IsTransient())
				assert.Empty(t, n.Placeholders())
			}
		})
	}
}
