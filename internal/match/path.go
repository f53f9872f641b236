package match

import (
	"github.com/nicolagi/procdiff/internal/tree"
)

// CommonalityPath matches unmatched inner nodes bottom-up by the share
// of their matched descendants whose partners lie below the candidate.
type CommonalityPath struct{}

func (CommonalityPath) Name() string { return "commonality-path" }

func (CommonalityPath) Match(oldRoot, newRoot *tree.Node, m *Matching, c *Comparator) error {
	for _, n := range newRoot.PostOrder() {
		if n.IsRoot() || n.IsPropertyNode() || !n.IsInnerNode() || m.IsMatched(n) {
			continue
		}
		matched := matchedDescendants(n, m)
		if len(matched) == 0 {
			continue
		}
		votes := make(map[*tree.Node]int)
		var order []*tree.Node
		for _, d := range matched {
			for a := m.Old(d).Parent(); a != nil; a = a.Parent() {
				if a.Label() != n.Label() || m.IsMatched(a) {
					continue
				}
				if votes[a] == 0 {
					order = append(order, a)
				}
				votes[a]++
			}
		}
		var best *tree.Node
		var bestCommonality, bestScore float64
		for _, a := range order {
			denominator := len(matched)
			if k := len(matchedDescendants(a, m)); k > denominator {
				denominator = k
			}
			commonality := float64(votes[a]) / float64(denominator)
			score, err := c.Compare(a, n)
			if err != nil {
				return err
			}
			if commonality > bestCommonality || (commonality == bestCommonality && score > bestScore) {
				best, bestCommonality, bestScore = a, commonality, score
			}
		}
		if best != nil && bestCommonality >= c.Threshold {
			if err := m.MatchNew(n, best); err != nil {
				return err
			}
		}
	}
	return nil
}

func matchedDescendants(n *tree.Node, m *Matching) []*tree.Node {
	var matched []*tree.Node
	for _, d := range n.NonPropertyNodes()[1:] {
		if m.IsMatched(d) {
			matched = append(matched, d)
		}
	}
	return matched
}

// Path matches an unmatched node to an unmatched old node with the same
// label below the partner of its nearest matched ancestor. Candidates
// whose label path from that ancestor is identical need half the
// threshold; otherwise the longest common suffix wins among those
// reaching the threshold.
type Path struct{}

func (Path) Name() string { return "path" }

func (Path) Match(_, newRoot *tree.Node, m *Matching, c *Comparator) error {
	for _, n := range newRoot.NonPropertyNodes() {
		if n.IsRoot() || m.IsMatched(n) {
			continue
		}
		anc := n.Parent()
		for anc != nil && m.Old(anc) == nil {
			anc = anc.Parent()
		}
		if anc == nil {
			return errorf("Path.Match", "no matched ancestor for %v", n)
		}
		oldAnc := m.Old(anc)
		rel := relativeLabels(anc, n)
		var best *tree.Node
		var bestExact bool
		var bestSuffix int
		var bestScore float64
		for _, o := range oldAnc.NonPropertyNodes()[1:] {
			if o.Label() != n.Label() || m.IsMatched(o) {
				continue
			}
			score, err := c.Compare(o, n)
			if err != nil {
				return err
			}
			orel := relativeLabels(oldAnc, o)
			suffix := commonSuffix(rel, orel)
			exact := suffix == len(rel) && suffix == len(orel)
			if exact && score < c.Threshold/2 || !exact && score < c.Threshold {
				continue
			}
			better := best == nil ||
				exact && !bestExact ||
				exact == bestExact && (suffix > bestSuffix || suffix == bestSuffix && score > bestScore)
			if better {
				best, bestExact, bestSuffix, bestScore = o, exact, suffix, score
			}
		}
		if best != nil {
			if err := m.MatchNew(n, best); err != nil {
				return err
			}
		}
	}
	return nil
}

// relativeLabels returns the labels from below ancestor down to n.
func relativeLabels(ancestor, n *tree.Node) []string {
	var rev []string
	for x := n; x != ancestor; x = x.Parent() {
		rev = append(rev, x.Label())
	}
	labels := make([]string, len(rev))
	for i, l := range rev {
		labels[len(rev)-1-i] = l
	}
	return labels
}

func commonSuffix(a, b []string) int {
	k := 0
	for k < len(a) && k < len(b) && a[len(a)-1-k] == b[len(b)-1-k] {
		k++
	}
	return k
}
