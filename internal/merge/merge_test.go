package merge_test

import (
	"fmt"
	"testing"

	"github.com/nicolagi/procdiff/internal/merge"
	"github.com/nicolagi/procdiff/internal/procxml"
	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/nicolagi/procdiff/internal/tree/treetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergeTrees(t *testing.T, base, b1, b2 *tree.Node) (*tree.Node, merge.Result) {
	t.Helper()
	inputs := []*tree.Node{base.Copy(), b1.Copy(), b2.Copy()}
	merged, result, err := merge.New(merge.Options{}).Merge(base, b1, b2)
	require.NoError(t, err)
	for i, n := range []*tree.Node{base, b1, b2} {
		require.True(t, tree.Identical(inputs[i], n), "input %d modified", i)
	}
	return merged, result
}

func allConfident(t *testing.T, root *tree.Node) {
	t.Helper()
	for _, n := range root.PreOrder() {
		assert.Equal(t, tree.Confidence{Position: true, Parent: true, Content: true}, n.Confidence(), n.String())
	}
}

func TestDeleteAndUpdateDifferentNodes(t *testing.T) {
	base := treetest.CPEE(`description[call{id=a,endpoint=booking}, manipulate{id=b}"data.x = 1"]`)
	b1 := treetest.CPEE(`description[manipulate{id=b}"data.x = 1"]`)
	b2 := treetest.CPEE(`description[call{id=a,endpoint=booking}, manipulate{id=b}"x"]`)
	merged, result := mergeTrees(t, base, b1, b2)
	want := treetest.CPEE(`description[manipulate{id=b}"x"]`)
	assert.True(t, tree.Identical(want, merged), procxml.String(merged))
	assert.Zero(t, result.Conflicts())
	allConfident(t, merged)
	for _, n := range merged.PreOrder() {
		assert.Equal(t, tree.Nil, n.Change())
		assert.Empty(t, n.Updates())
	}
}

func TestBothMoveSameNodeToDifferentParents(t *testing.T) {
	base := treetest.CPEE(`description[loop{id=x}[call{id=leaf,endpoint=e}], loop{id=y}[stop{id=s1}], loop{id=z}[stop{id=s2}]]`)
	b1 := treetest.CPEE(`description[loop{id=x}, loop{id=y}[stop{id=s1}, call{id=leaf,endpoint=e}], loop{id=z}[stop{id=s2}]]`)
	b2 := treetest.CPEE(`description[loop{id=x}, loop{id=y}[stop{id=s1}], loop{id=z}[stop{id=s2}, call{id=leaf,endpoint=e}]]`)
	merged, result := mergeTrees(t, base, b1, b2)
	assert.True(t, tree.Identical(b1, merged), procxml.String(merged))
	assert.Equal(t, merge.Result{MoveConflicts: 1}, result)
	leaf, err := merged.NodeAt(tree.Path{1, 1})
	require.NoError(t, err)
	assert.Equal(t, tree.Confidence{Position: true, Parent: false, Content: true}, leaf.Confidence())
}

func TestBothUpdateSameAttribute(t *testing.T) {
	base := treetest.CPEE(`description[call{id=a,endpoint=e}]`)
	b1 := treetest.CPEE(`description[call{id=a,endpoint=short}]`)
	b2 := treetest.CPEE(`description[call{id=a,endpoint=much-longer}]`)
	for _, branches := range [][2]*tree.Node{{b1, b2}, {b2, b1}} {
		merged, result := mergeTrees(t, base, branches[0], branches[1])
		assert.Equal(t, merge.Result{UpdateConflicts: 1}, result)
		call := merged.Child(0)
		v, _ := call.Attr("endpoint")
		assert.Equal(t, "much-longer", v)
		assert.False(t, call.Confidence().Content)
	}
}

func TestUpdatesOfDifferentAttributesCombine(t *testing.T) {
	base := treetest.CPEE(`description[call{id=a,endpoint=e,method=get}]`)
	b1 := treetest.CPEE(`description[call{id=a,endpoint=f,method=get}]`)
	b2 := treetest.CPEE(`description[call{id=a,endpoint=e,method=post}]`)
	merged, result := mergeTrees(t, base, b1, b2)
	assert.Zero(t, result.Conflicts())
	want := treetest.CPEE(`description[call{id=a,endpoint=f,method=post}]`)
	assert.True(t, tree.Identical(want, merged), procxml.String(merged))
	allConfident(t, merged)
}

func TestAdjacentInsertionsConflictInOrder(t *testing.T) {
	base := treetest.CPEE(`description[call{id=a,endpoint=e1}, call{id=b,endpoint=e2}]`)
	b1 := treetest.CPEE(`description[call{id=a,endpoint=e1}, stop{id=s}, call{id=b,endpoint=e2}]`)
	b2 := treetest.CPEE(`description[call{id=a,endpoint=e1}, escape{id=e}, call{id=b,endpoint=e2}]`)
	merged, result := mergeTrees(t, base, b1, b2)
	want := treetest.CPEE(`description[call{id=a,endpoint=e1}, stop{id=s}, escape{id=e}, call{id=b,endpoint=e2}]`)
	assert.True(t, tree.Identical(want, merged), procxml.String(merged))
	assert.Equal(t, merge.Result{OrderConflicts: 1}, result)
	assert.False(t, merged.Child(1).Confidence().Position)
	assert.False(t, merged.Child(2).Confidence().Position)
	assert.True(t, merged.Child(0).Confidence().Position)
}

func TestDisjointEditsCommute(t *testing.T) {
	base := treetest.CPEE(`description[call{id=a,endpoint=e1}, loop{id=l}[call{id=b,endpoint=e2}], call{id=c,endpoint=e3}]`)
	b1 := treetest.CPEE(`description[loop{id=l}[call{id=b,endpoint=e2}], call{id=c,endpoint=e3}]`)
	b2 := treetest.CPEE(`description[call{id=a,endpoint=e1}, loop{id=l}[call{id=b,endpoint=e2}, stop{id=s}], call{id=c,endpoint=e3}]`)
	m12, r12 := mergeTrees(t, base, b1, b2)
	m21, r21 := mergeTrees(t, base, b2, b1)
	want := treetest.CPEE(`description[loop{id=l}[call{id=b,endpoint=e2}, stop{id=s}], call{id=c,endpoint=e3}]`)
	assert.True(t, tree.Identical(want, m12), procxml.String(m12))
	assert.True(t, tree.Equivalent(m12, m21), procxml.String(m21))
	assert.Zero(t, r12.Conflicts())
	assert.Zero(t, r21.Conflicts())
}

func TestKeepAnnotations(t *testing.T) {
	base := treetest.CPEE(`description[call{id=a,endpoint=e1}]`)
	b1 := treetest.CPEE(`description[call{id=a,endpoint=e1}, stop{id=s}]`)
	merged, _, err := merge.New(merge.Options{KeepAnnotations: true}).Merge(base, b1, base)
	require.NoError(t, err)
	assert.Equal(t, tree.Insertion, merged.Child(1).Change())
	assert.Equal(t, 1, merged.Child(1).Origin())
}

func TestDeletedAncestorOfMovedNode(t *testing.T) {
	base := treetest.CPEE(`description[loop{id=l}[call{id=c}[parameters[label"x"]], stop{id=t}], stop{id=s}]`)
	b2 := treetest.CPEE(`description[call{id=c}, stop{id=s}]`)
	m12, r12 := mergeTrees(t, base, b2, base)
	m21, r21 := mergeTrees(t, base, base, b2)
	assert.True(t, tree.Equivalent(b2, m12), procxml.String(m12))
	assert.True(t, tree.Equivalent(b2, m21), procxml.String(m21))
	assert.Zero(t, r12.Conflicts())
	assert.Zero(t, r21.Conflicts())
}

func TestMergeWithUnchangedBranchYieldsOtherBranch(t *testing.T) {
	seeds := []int64{24, 70, 156, 166, 171, 286}
	for seed := int64(1); seed <= 15; seed++ {
		seeds = append(seeds, seed)
	}
	for _, seed := range seeds {
		base := treetest.Random(seed, 20)
		changed := treetest.Mutate(seed, base, 6)
		t.Run(fmt.Sprintf("%d/first", seed), func(t *testing.T) {
			merged, result := mergeTrees(t, base, changed, base)
			assert.True(t, tree.Equivalent(changed, merged), procxml.String(merged))
			assert.Zero(t, result.Conflicts())
			allConfident(t, merged)
		})
		t.Run(fmt.Sprintf("%d/second", seed), func(t *testing.T) {
			merged, result := mergeTrees(t, base, base, changed)
			assert.True(t, tree.Equivalent(changed, merged), procxml.String(merged))
			assert.Zero(t, result.Conflicts())
			allConfident(t, merged)
		})
	}
}
