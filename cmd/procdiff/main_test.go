package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/google/go-cmp/cmp"
	"github.com/nicolagi/procdiff/internal/config"
	"github.com/nicolagi/procdiff/internal/procxml"
	"github.com/nicolagi/procdiff/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	oldModel = `<description xmlns="http://cpee.org/ns/description/1.0">
  <call id="a1" endpoint="https://example.org/book">
    <parameters><label>Book</label></parameters>
  </call>
  <manipulate id="a2">data.count = 1;</manipulate>
  <loop id="l1" mode="pre_test" condition="data.count &lt; 3">
    <call id="a3" endpoint="https://example.org/check"/>
  </loop>
</description>`

	newModel = `<description xmlns="http://cpee.org/ns/description/1.0">
  <manipulate id="a2">data.count = 2;</manipulate>
  <call id="a1" endpoint="https://example.org/book">
    <parameters><label>Book</label></parameters>
  </call>
  <loop id="l1" mode="pre_test" condition="data.count &lt; 3">
    <call id="a3" endpoint="https://example.org/check"/>
    <call id="a4" endpoint="https://example.org/pay"/>
  </loop>
</description>`

	branchModel = `<properties>
  <endpoints><booking>https://example.org/book</booking></endpoints>
  <dslx>
    <description xmlns="http://cpee.org/ns/description/1.0">
      <call id="a1" endpoint="booking">
        <parameters><label>Book</label></parameters>
      </call>
      <manipulate id="a2">data.count = 1;</manipulate>
      <loop id="l1" mode="pre_test" condition="data.count &lt; 3">
        <call id="a3" endpoint="https://example.org/check"/>
      </loop>
      <terminate id="t1"/>
    </description>
  </dslx>
</properties>`
)

func writeFiles(t *testing.T, contents ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i, c := range contents {
		p := filepath.Join(dir, string(rune('a'+i))+".xml")
		require.NoError(t, os.WriteFile(p, []byte(c), 0600))
		paths = append(paths, p)
	}
	return paths
}

func parse(t *testing.T, s string) *tree.Node {
	t.Helper()
	n, err := procxml.ParseString(s, tree.CPEE)
	require.NoError(t, err)
	return n
}

func TestDiffThenPatch(t *testing.T) {
	defer leaktest.Check(t)()
	paths := writeFiles(t, oldModel, newModel)
	for _, format := range []string{"xml", "json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			var script bytes.Buffer
			require.NoError(t, newApp(config.Default(), &script, false).diff(paths[0], paths[1], outputEditScript, format))
			scriptPath := filepath.Join(t.TempDir(), "script."+format)
			require.NoError(t, os.WriteFile(scriptPath, script.Bytes(), 0600))

			var patched bytes.Buffer
			require.NoError(t, newApp(config.Default(), &patched, false).patch(paths[0], scriptPath, outputPatched, ""))
			want, err := newApp(config.Default(), nil, false).load(paths[1])
			require.NoError(t, err)
			got := parse(t, patched.String())
			assert.True(t, tree.Equivalent(want[0], got), patched.String())
		})
	}
}

func TestDiffDeltaTree(t *testing.T) {
	defer leaktest.Check(t)()
	paths := writeFiles(t, oldModel, newModel)
	var text bytes.Buffer
	require.NoError(t, newApp(config.Default(), &text, false).diff(paths[0], paths[1], outputDeltaTree, formatText))
	out := text.String()
	assert.Contains(t, out, "call a4 [INSERTION]")
	assert.Contains(t, out, "-data.count = 1;")
	assert.Contains(t, out, "+data.count = 2;")

	var xmlOut bytes.Buffer
	require.NoError(t, newApp(config.Default(), &xmlOut, false).diff(paths[0], paths[1], outputDeltaTree, ""))
	assert.Contains(t, xmlOut.String(), "<ins:call")
	assert.Contains(t, xmlOut.String(), `upd:text="data.count = 1;"`)

	err := newApp(config.Default(), &xmlOut, false).diff(paths[0], paths[1], outputDeltaTree, "yaml")
	assert.Error(t, err)
}

func TestDiffMatching(t *testing.T) {
	defer leaktest.Check(t)()
	paths := writeFiles(t, oldModel, newModel)
	var b bytes.Buffer
	require.NoError(t, newApp(config.Default(), &b, false).diff(paths[0], paths[1], outputMatching, ""))
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	assert.Equal(t, "/\t/\tdescription", lines[0])
	assert.Contains(t, lines, "-\t2/1\tcall")
	assert.Contains(t, lines, "0\t1\tcall")
}

func TestMerge(t *testing.T) {
	defer leaktest.Check(t)()
	paths := writeFiles(t, oldModel, newModel, branchModel)
	var b bytes.Buffer
	require.NoError(t, newApp(config.Default(), &b, false).merge(paths[0], paths[1], paths[2], false))
	merged := parse(t, b.String())
	var ids []string
	for _, n := range merged.PreOrder() {
		if id, ok := n.Attr("id"); ok {
			ids = append(ids, id)
		}
	}
	if diff := cmp.Diff([]string{"a2", "a1", "l1", "a3", "a4", "t1"}, ids); diff != "" {
		t.Errorf("merged ids mismatch (-want +got):\n%s", diff)
	}
	// Only the identifier changed, and preprocessing resolves it.
	endpoint, _ := merged.Child(1).Attr("endpoint")
	assert.Equal(t, "https://example.org/book", endpoint)
	text := merged.Child(0).Text()
	assert.Equal(t, "data.count = 2;", text)

	b.Reset()
	require.NoError(t, newApp(config.Default(), &b, false).merge(paths[0], paths[1], paths[2], true))
	assert.Contains(t, b.String(), "<ins:call")
	assert.Contains(t, b.String(), "<ins:terminate")
	assert.Contains(t, b.String(), `xmlns:conf="urn:procdiff:delta:confidence"`)
}

func TestLoadErrors(t *testing.T) {
	defer leaktest.Check(t)()
	paths := writeFiles(t, oldModel, "<description><call>")
	a := newApp(config.Default(), nil, false)
	_, err := a.load(paths[0], paths[1])
	assert.Error(t, err)
	_, err = a.load(paths[0], filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
	err = a.patch(paths[0], filepath.Join(t.TempDir(), "missing.yaml"), outputPatched, "")
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	addMatchFlags(fs)
	fs.IntVar(&diffContext.context, "U", 3, "")
	require.NoError(t, fs.Parse([]string{"-mode", "fast", "-U", "1"}))
	cfg := config.Default()
	cfg.Pretty = true
	require.NoError(t, applyOverrides(fs, cfg))
	assert.Equal(t, "fast", cfg.MatchMode)
	assert.Equal(t, 1, cfg.ContextLines)
	assert.True(t, cfg.Pretty, "unset flags must not override")

	require.NoError(t, fs.Parse([]string{"-threshold", "2"}))
	assert.Error(t, applyOverrides(fs, cfg))
}
