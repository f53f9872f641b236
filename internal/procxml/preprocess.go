package procxml

import (
	"strings"

	"github.com/google/uuid"
	"github.com/nicolagi/procdiff/internal/tree"
	log "github.com/sirupsen/logrus"
)

// Preprocessor normalizes process trees so that irrelevant differences
// (whitespace, empty attributes, empty containers) don't show up in
// diffs.
type Preprocessor struct {
	// VariablePrefix is prepended to data element names in the init
	// script, e.g., "data.".
	VariablePrefix string

	// AddInitScript makes Prepare insert a manipulate node assigning
	// the initial values of all data elements at the beginning of the
	// process.
	AddInitScript bool

	// NewEndpoint returns an endpoint for calls lacking one. Defaults
	// to random UUIDs, so that such calls never look alike.
	NewEndpoint func() string
}

// Report counts the modifications done while preparing a tree.
type Report struct {
	Insertions int
	Updates    int
	Deletions  int
}

func (r Report) Total() int {
	return r.Insertions + r.Updates + r.Deletions
}

// Prepare normalizes the document's process tree in place and returns it.
func (p *Preprocessor) Prepare(doc *Document) *tree.Node {
	report := p.PrepareTree(doc.Process, doc.Endpoints, doc.DataElements)
	if report.Total() > 0 {
		log.WithFields(log.Fields{
			"insertions": report.Insertions,
			"updates":    report.Updates,
			"deletions":  report.Deletions,
		}).Warn("Document was modified during preprocessing")
	}
	return doc.Process
}

// PrepareTree trims attribute values and text, drops empty attributes,
// resolves endpoint identifiers, and removes empty property nodes,
// childless inner nodes and manipulate nodes without code.
func (p *Preprocessor) PrepareTree(root *tree.Node, endpoints map[string]string, data []Variable) Report {
	var report Report
	newEndpoint := p.NewEndpoint
	if newEndpoint == nil {
		newEndpoint = uuid.NewString
	}
	for _, n := range root.PostOrder() {
		updated := false
		for _, k := range n.AttrKeys() {
			v, _ := n.Attr(k)
			if t := strings.TrimSpace(v); t == "" {
				n.DeleteAttr(k)
				updated = true
			} else if t != v {
				n.SetAttr(k, t)
				updated = true
			}
		}
		if ep, ok := n.Attr("endpoint"); ok {
			if url, ok := endpoints[ep]; ok && url != ep {
				n.SetAttr("endpoint", url)
				updated = true
			}
		} else if n.Label() == "call" {
			n.SetAttr("endpoint", newEndpoint())
			updated = true
		}
		if t := strings.TrimSpace(n.Text()); t != n.Text() {
			n.SetText(t)
			updated = true
		}
		empty := n.IsLeaf() && len(n.AttrKeys()) == 0 && n.Text() == ""
		switch {
		case n.IsRoot():
		case n.IsPropertyNode() && empty,
			n.IsInnerNode() && n.IsLeaf() && n.Schema().Knows(n.Label()),
			n.Label() == "manipulate" && n.Text() == "":
			n.RemoveFromParent()
			report.Deletions++
			continue
		}
		if updated {
			report.Updates++
		}
	}
	if p.AddInitScript && len(data) > 0 {
		var b strings.Builder
		for _, v := range data {
			b.WriteString(p.VariablePrefix + v.Name + " = " + v.Value + ";")
		}
		script := tree.New(root.Schema(), "manipulate")
		script.SetAttr("id", "init")
		script.SetText(b.String())
		root.InsertChild(0, script)
		report.Insertions++
	}
	return report
}
