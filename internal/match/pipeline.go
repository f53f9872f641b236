package match

import (
	"time"

	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Mode selects a trade-off between matching speed and quality.
type Mode string

const (
	Fast     Mode = "fast"
	Balanced Mode = "balanced"
	Quality  Mode = "quality"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Fast, Balanced, Quality:
		return m, nil
	default:
		return "", errorf("ParseMode", "unknown match mode %q, want one of fast, balanced, quality", s)
	}
}

// Options configure a pipeline.
type Options struct {
	Mode      Mode
	Threshold float64
	Pins      []Pin
}

// Pipeline runs matchers in order over a shared matching.
type Pipeline struct {
	matchers   []Matcher
	comparator *Comparator
}

// NewPipeline builds a pipeline from the given matchers. The anchor
// matcher always runs first and the property matcher always runs last,
// whether or not they appear in the list.
func NewPipeline(threshold float64, matchers ...Matcher) *Pipeline {
	anchor := Anchor{}
	var middle []Matcher
	for _, mm := range matchers {
		switch v := mm.(type) {
		case Anchor:
			anchor = v
		case Property:
		default:
			middle = append(middle, mm)
		}
	}
	p := &Pipeline{comparator: NewComparator(threshold)}
	p.matchers = append(p.matchers, anchor)
	p.matchers = append(p.matchers, middle...)
	p.matchers = append(p.matchers, Property{})
	return p
}

// ForMode returns the pipeline for the configured mode.
func ForMode(opts Options) (*Pipeline, error) {
	anchor := Anchor{Pins: opts.Pins}
	switch opts.Mode {
	case Fast:
		return NewPipeline(opts.Threshold, anchor, Hash{}, Similarity{Fast: true}, Path{}, Path{}, Fallback{}), nil
	case Balanced:
		return NewPipeline(opts.Threshold, anchor, Hash{}, Similarity{}, Path{}, Path{}, Fallback{}), nil
	case Quality, "":
		return NewPipeline(opts.Threshold, anchor, Hash{}, Similarity{}, CommonalityPath{}, Path{}, Fallback{}), nil
	default:
		return nil, errorf("ForMode", "unknown mode %q", opts.Mode)
	}
}

// ForMerge returns the pipeline used to match the two delta trees of a
// three-way merge.
func ForMerge(threshold float64) *Pipeline {
	return NewPipeline(threshold, Hash{}, Similarity{}, CommonalityPath{}, Path{}, Fallback{})
}

// Matchers returns the names of the matchers in execution order.
func (p *Pipeline) Matchers() []string {
	names := make([]string, len(p.matchers))
	for i, mm := range p.matchers {
		names[i] = mm.Name()
	}
	return names
}

func (p *Pipeline) Comparator() *Comparator {
	return p.comparator
}

// Execute runs all matchers and returns the extended matching. A nil
// matching starts from scratch.
func (p *Pipeline) Execute(oldRoot, newRoot *tree.Node, m *Matching) (*Matching, error) {
	if m == nil {
		m = NewMatching()
	}
	for _, mm := range p.matchers {
		start := time.Now()
		before := m.Len()
		if err := mm.Match(oldRoot, newRoot, m, p.comparator); err != nil {
			return nil, errors.Wrapf(err, "matcher %s", mm.Name())
		}
		log.WithFields(log.Fields{
			"matcher": mm.Name(),
			"took":    time.Since(start),
			"found":   m.Len() - before,
		}).Debug("Matching stage done")
	}
	return m, nil
}
