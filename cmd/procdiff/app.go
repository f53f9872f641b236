package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/nicolagi/procdiff/internal/config"
	"github.com/nicolagi/procdiff/internal/delta"
	"github.com/nicolagi/procdiff/internal/editscript"
	"github.com/nicolagi/procdiff/internal/match"
	"github.com/nicolagi/procdiff/internal/merge"
	"github.com/nicolagi/procdiff/internal/procxml"
	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	outputEditScript = "editScript"
	outputDeltaTree  = "deltaTree"
	outputMatching   = "matching"
	outputPatched    = "patched"

	formatText = "text"
)

// app runs the sub-commands, writing results to out.
type app struct {
	cfg    *config.C
	out    io.Writer
	colors bool
	prep   *procxml.Preprocessor
}

func newApp(cfg *config.C, out io.Writer, colors bool) *app {
	return &app{
		cfg:    cfg,
		out:    out,
		colors: colors,
		prep: &procxml.Preprocessor{
			VariablePrefix: cfg.VariablePrefix,
			AddInitScript:  cfg.AddInitScript,
		},
	}
}

// load reads and prepares the process models in the named files
// concurrently.
func (a *app) load(paths ...string) ([]*tree.Node, error) {
	trees := make([]*tree.Node, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			n, err := a.loadOne(path)
			trees[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

func (a *app) loadOne(path string) (*tree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Ignore error closing file opened only for reading.
		_ = f.Close()
	}()
	doc, err := procxml.ParseDocument(bufio.NewReader(f), tree.CPEE)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", path)
	}
	root := a.prep.Prepare(doc)
	log.WithFields(log.Fields{
		"path":  path,
		"nodes": root.Size(),
	}).Debug("Loaded process model")
	return root, nil
}

func (a *app) pipeline() (*match.Pipeline, error) {
	return match.ForMode(a.cfg.MatchOptions())
}

func (a *app) diff(oldPath, newPath, output, format string) error {
	trees, err := a.load(oldPath, newPath)
	if err != nil {
		return err
	}
	p, err := a.pipeline()
	if err != nil {
		return err
	}
	es, m, err := editscript.Diff(trees[0], trees[1], p)
	if err != nil {
		return err
	}
	stats := es.Stats()
	log.WithFields(log.Fields{
		"changes":    es.Len(),
		"insertions": stats.Insertions,
		"deletions":  stats.Deletions,
		"moves":      stats.Moves,
		"updates":    stats.Updates,
		"reshuffles": stats.Reshuffles,
	}).Info("Diffed")
	switch output {
	case outputEditScript:
		if format == "" {
			format = string(editscript.XML)
		}
		return editscript.Encode(a.out, es, editscript.Format(format))
	case outputDeltaTree:
		root, err := delta.ExtendedTree(trees[0], es)
		if err != nil {
			return err
		}
		return a.writeDelta(root, format)
	case outputMatching:
		return writeMatching(a.out, trees[0], trees[1], m)
	default:
		return errors.Errorf("unknown output %q", output)
	}
}

func (a *app) patch(oldPath, scriptPath, output, format string) error {
	var (
		old  *tree.Node
		data []byte
		g    errgroup.Group
	)
	g.Go(func() error {
		trees, err := a.load(oldPath)
		if err == nil {
			old = trees[0]
		}
		return err
	})
	g.Go(func() (err error) {
		data, err = os.ReadFile(scriptPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	es, err := editscript.Decode(data, tree.CPEE)
	if err != nil {
		return errors.Wrapf(err, "reading %q", scriptPath)
	}
	switch output {
	case outputPatched:
		patched, err := editscript.Patch(old, es)
		if err != nil {
			return err
		}
		return procxml.WriteProcess(a.out, patched, a.cfg.Pretty)
	case outputDeltaTree:
		root, err := delta.ExtendedTree(old, es)
		if err != nil {
			return err
		}
		return a.writeDelta(root, format)
	default:
		return errors.Errorf("unknown output %q", output)
	}
}

func (a *app) merge(basePath, path1, path2 string, annotations bool) error {
	trees, err := a.load(basePath, path1, path2)
	if err != nil {
		return err
	}
	mg := merge.New(merge.Options{
		Mode:            match.Mode(a.cfg.MatchMode),
		Threshold:       a.cfg.Threshold,
		KeepAnnotations: annotations,
	})
	merged, result, err := mg.Merge(trees[0], trees[1], trees[2])
	if err != nil {
		return err
	}
	if result.Conflicts() > 0 {
		log.WithFields(log.Fields{
			"moveConflicts":   result.MoveConflicts,
			"updateConflicts": result.UpdateConflicts,
			"orderConflicts":  result.OrderConflicts,
		}).Warn("Resolved conflicts, review the nodes in doubt")
	}
	if annotations {
		return delta.WriteXML(a.out, merged, a.cfg.Pretty)
	}
	return procxml.WriteProcess(a.out, merged, a.cfg.Pretty)
}

func (a *app) writeDelta(root *tree.Node, format string) error {
	if format == "" && a.colors {
		format = formatText
	}
	switch format {
	case "", string(editscript.XML):
		return delta.WriteXML(a.out, root, a.cfg.Pretty)
	case formatText:
		opts := delta.TextOptions{ContextLines: a.cfg.ContextLines}
		if a.colors {
			opts.Colors = delta.NewColors()
		}
		return delta.WriteText(a.out, root, opts)
	default:
		return errors.Errorf("delta trees cannot be written as %q", format)
	}
}

// writeMatching lists matched nodes as pairs of paths, then the nodes
// only found in the old tree, then those only found in the new tree.
func writeMatching(w io.Writer, oldRoot, newRoot *tree.Node, m *match.Matching) error {
	bw := bufio.NewWriter(w)
	for _, p := range m.Pairs(newRoot) {
		_, _ = fmt.Fprintf(bw, "%s\t%s\t%s\n", pathString(p.Old), pathString(p.New), p.New.Label())
	}
	for _, n := range oldRoot.PreOrder() {
		if !m.IsMatched(n) {
			_, _ = fmt.Fprintf(bw, "%s\t-\t%s\n", pathString(n), n.Label())
		}
	}
	for _, n := range newRoot.PreOrder() {
		if !m.IsMatched(n) {
			_, _ = fmt.Fprintf(bw, "-\t%s\t%s\n", pathString(n), n.Label())
		}
	}
	return bw.Flush()
}

func pathString(n *tree.Node) string {
	if n.IsRoot() {
		return "/"
	}
	return n.Path().String()
}
