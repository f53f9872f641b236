package match

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	contentWeight = 1.0
	textWeight    = 1.0
	codeWeight    = 2.0
	sizeWeight    = 0.5
)

// Comparator scores the similarity of two nodes in [0, 1]. Nodes with
// different labels score 0; 1 means equal attributes, properties and
// text. Inner nodes are penalized for differing subtree sizes.
type Comparator struct {
	// Threshold is the minimum score for two nodes to be similar.
	Threshold float64

	dmp *diffmatchpatch.DiffMatchPatch
}

func NewComparator(threshold float64) *Comparator {
	dmp := diffmatchpatch.New()
	// No timeout, so that the diff is an exact LCS.
	dmp.DiffTimeout = 0
	return &Comparator{
		Threshold: threshold,
		dmp:       dmp,
	}
}

// Compare returns the similarity score of a and b.
func (c *Comparator) Compare(a, b *tree.Node) (float64, error) {
	const method = "Comparator.Compare"
	if a == nil || b == nil {
		return 0, errors.Wrapf(ErrUnsupportedComparison, "%s: nil node", method)
	}
	if a.IsTransient() || b.IsTransient() || a.IsPropertyNode() || b.IsPropertyNode() {
		return 0, errors.Wrapf(ErrUnsupportedComparison, "%s: %v and %v", method, a, b)
	}
	if a.Label() != b.Label() {
		return 0, nil
	}
	var weighted, total float64
	if d, ok := c.contentDiff(a, b); ok {
		weighted += contentWeight * d
		total += contentWeight
	}
	if a.Text() != "" || b.Text() != "" {
		w := textWeight
		if a.ContainsCode() {
			w = codeWeight
		}
		weighted += w * (1 - c.TextSimilarity(a.Text(), b.Text()))
		total += w
	}
	if a.IsInnerNode() {
		sa, sb := len(a.NonPropertyNodes()), len(b.NonPropertyNodes())
		weighted += sizeWeight * math.Abs(float64(sa-sb)) / math.Max(float64(sa), float64(sb))
		total += sizeWeight
	}
	if total == 0 {
		return 1, nil
	}
	return 1 - weighted/total, nil
}

// Similar reports whether the score reaches the threshold. Nodes that
// can't be compared are never similar.
func (c *Comparator) Similar(a, b *tree.Node) (float64, bool) {
	score, err := c.Compare(a, b)
	if err != nil {
		return 0, false
	}
	return score, score >= c.Threshold
}

// contentDiff averages the dissimilarity over the union of attribute
// and property keys. It reports false if neither node has any.
func (c *Comparator) contentDiff(a, b *tree.Node) (float64, bool) {
	av, bv := values(a), values(b)
	keys := lo.Union(lo.Keys(av), lo.Keys(bv))
	if len(keys) == 0 {
		return 0, false
	}
	sort.Strings(keys)
	var sum float64
	for _, k := range keys {
		x, xok := av[k]
		y, yok := bv[k]
		switch {
		case xok != yok:
			sum++
		case x != y:
			sum += 1 - c.TextSimilarity(x, y)
		}
	}
	return sum / float64(len(keys)), true
}

func values(n *tree.Node) map[string]string {
	m := n.PropertyMap()
	for k, v := range n.Attrs() {
		m["@"+k] = v
	}
	return m
}

// TextSimilarity is the length of the longest common subsequence of
// the two strings divided by the length of the longer one. Dividing by
// the length of a alone would rate a as identical to any extension of it.
func (c *Comparator) TextSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	var common int
	for _, d := range c.dmp.DiffMain(a, b, false) {
		if d.Type == diffmatchpatch.DiffEqual {
			common += utf8.RuneCountInString(d.Text)
		}
	}
	return float64(common) / math.Max(float64(la), float64(lb))
}
