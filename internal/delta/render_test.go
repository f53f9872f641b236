package delta_test

import (
	"strings"
	"testing"

	"github.com/nicolagi/procdiff/internal/delta"
	"github.com/nicolagi/procdiff/internal/editscript"
	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/nicolagi/procdiff/internal/tree/treetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movedAndInserted(t *testing.T) *tree.Node {
	t.Helper()
	old := treetest.CPEE(`description[call{id=a}, call{id=b}, loop{id=l}[call{id=c}]]`)
	es := &editscript.EditScript{}
	es.Append(editscript.Change{Type: editscript.Move, OldPath: path("0"), NewPath: path("1/1")})
	es.Append(editscript.Change{Type: editscript.Insertion, NewPath: path("2"), NewContent: treetest.CPEE(`stop{id=s}`)})
	root, err := delta.ExtendedTree(old, es)
	require.NoError(t, err)
	return root
}

func updated(t *testing.T) *tree.Node {
	t.Helper()
	old := treetest.CPEE(`description[call{id=a,endpoint=x}, manipulate{id=m}"x = 1"]`)
	es := &editscript.EditScript{}
	es.Append(editscript.Change{Type: editscript.Update, OldPath: path("0"), NewContent: treetest.CPEE(`call{id=a,endpoint=y}`)})
	es.Append(editscript.Change{Type: editscript.Update, OldPath: path("1"), NewContent: treetest.CPEE(`manipulate{id=m}"x = 2"`)})
	root, err := delta.ExtendedTree(old, es)
	require.NoError(t, err)
	return root
}

func TestWriteText(t *testing.T) {
	testCases := []struct {
		name string
		root func(*testing.T) *tree.Node
		want string
	}{
		{
			name: "moves and insertions",
			root: movedAndInserted,
			want: `description
├── call a [MOVE_FROM]
├── call b
├── loop l
│   ├── call c
│   └── call a [MOVE_TO]
└── stop s [INSERTION]
`,
		},
		{
			name: "updates",
			root: updated,
			want: `description
├── call a [UPDATE]
│       ~ endpoint: "x" -> "y"
└── manipulate m [UPDATE]
        ~ code
          @@ -1 +1 @@
          -x = 1
          +x = 2
`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var b strings.Builder
			require.NoError(t, delta.WriteText(&b, tc.root(t), delta.TextOptions{ContextLines: 3}))
			assert.Equal(t, tc.want, b.String())
		})
	}
}

func TestWriteTextShowsDoubts(t *testing.T) {
	root := treetest.CPEE(`description[stop{id=s}]`)
	root.Child(0).DoubtParent()
	root.Child(0).DoubtContent()
	var b strings.Builder
	require.NoError(t, delta.WriteText(&b, root, delta.TextOptions{}))
	assert.Equal(t, "description\n└── stop s (doubtful parent, content)\n", b.String())
}

func TestWriteTextColors(t *testing.T) {
	colors := &delta.Colors{
		Default: func(format string, a ...any) string { return "<" + strings.TrimSpace(format) + ">" },
		Map: map[tree.ChangeType]func(string, ...any) string{
			tree.Insertion: func(format string, a ...any) string { return "INS" },
		},
	}
	var b strings.Builder
	require.NoError(t, delta.WriteText(&b, movedAndInserted(t), delta.TextOptions{Colors: colors}))
	assert.True(t, strings.HasSuffix(b.String(), "└── INS\n"), b.String())
	assert.True(t, strings.HasPrefix(b.String(), "<%s>\n"), b.String())
}

func TestWriteXML(t *testing.T) {
	var b strings.Builder
	require.NoError(t, delta.WriteXML(&b, movedAndInserted(t), false))
	out := b.String()
	for prefix, ns := range delta.Namespaces {
		assert.Contains(t, out, `xmlns:`+prefix+`="`+ns+`"`)
	}
	assert.Contains(t, out, `<mvf:call id="a">`)
	assert.Contains(t, out, `<mvt:call id="a">`)
	assert.Contains(t, out, `<ins:stop id="s">`)
	assert.Contains(t, out, `<call id="b">`)

	b.Reset()
	require.NoError(t, delta.WriteXML(&b, updated(t), false))
	out = b.String()
	assert.Contains(t, out, `<upd:call endpoint="y" id="a" upd:endpoint="x">`)
	assert.Contains(t, out, `<upd:manipulate id="m" upd:text="x = 1">x = 2</upd:manipulate>`)
}

func TestWriteXMLAttributeInsertionsAndDeletions(t *testing.T) {
	old := treetest.CPEE(`description[call{id=a,label=gone}]`)
	es := &editscript.EditScript{}
	es.Append(editscript.Change{Type: editscript.Update, OldPath: path("0"), NewContent: treetest.CPEE(`call{id=a,method=post}`)})
	root, err := delta.ExtendedTree(old, es)
	require.NoError(t, err)
	var b strings.Builder
	require.NoError(t, delta.WriteXML(&b, root, false))
	assert.Contains(t, b.String(), `<upd:call id="a" del:label="gone" ins:method="post">`)
}
