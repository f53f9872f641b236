package editscript

import (
	"github.com/nicolagi/procdiff/internal/match"
	"github.com/nicolagi/procdiff/internal/tree"
)

// Diff matches the two trees with the pipeline and returns the edit
// script that transforms oldRoot into newRoot. Neither tree is
// modified.
func Diff(oldRoot, newRoot *tree.Node, p *match.Pipeline) (*EditScript, *match.Matching, error) {
	m, err := p.Execute(oldRoot, newRoot, nil)
	if err != nil {
		return nil, nil, err
	}
	es, err := Generate(oldRoot, newRoot, m, WithCopy())
	if err != nil {
		return nil, nil, err
	}
	return es, m, nil
}
