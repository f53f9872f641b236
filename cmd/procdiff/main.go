package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/nicolagi/procdiff/internal/config"
	log "github.com/sirupsen/logrus"
)

var (
	// To set this at build time, use go build -ldflags '-X main.version=something'.
	version = "unknown"

	// Flag sets are associated with the fields of a corresponding context struct. The global context is for flags
	// that are part of all flag sets, that is, all sub-commands.
	globalContext struct {
		base     string
		logLevel string
	}

	// Overrides of configuration values, only applied if the flag is set explicitly.
	matchContext struct {
		mode      string
		threshold float64
		pretty    bool
	}

	diffContext struct {
		output   string
		format   string
		context  int
		noColors bool
	}

	patchContext struct {
		output string
		format string
	}

	mergeContext struct {
		annotations bool
	}
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&globalContext.base, "base", config.DefaultBaseDirectoryPath, "`directory` containing the configuration file")
	var levels []string
	for _, l := range log.AllLevels {
		levels = append(levels, l.String())
	}
	fs.StringVar(&globalContext.logLevel, "verbosity", "warning", "sets the log `level`, among "+strings.Join(levels, ", "))
	return fs
}

func addMatchFlags(fs *flag.FlagSet) {
	fs.StringVar(&matchContext.mode, "mode", "", "matching `mode`, among fast, balanced, quality")
	fs.Float64Var(&matchContext.threshold, "threshold", 0, "minimum similarity `score` for fuzzy matches")
	fs.BoolVar(&matchContext.pretty, "pretty", false, "indent XML output")
}

// applyOverrides copies the explicitly set flags of fs onto the configuration.
func applyOverrides(fs *flag.FlagSet, cfg *config.C) error {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.MatchMode = matchContext.mode
		case "threshold":
			cfg.Threshold = matchContext.threshold
		case "pretty":
			cfg.Pretty = matchContext.pretty
		case "U":
			cfg.ContextLines = diffContext.context
		}
	})
	return cfg.Validate()
}

func exitUsage(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	_, _ = fmt.Fprintf(os.Stderr, `Usage: %s COMMAND [ARGS]

Commands:

	diff OLD NEW: show the changes turning the process model OLD into NEW

		With -f editScript (the default), outputs the edit script in the format given by -format, among xml, json, yaml.
		With -f deltaTree, outputs the old tree annotated with all changes, as xml or as an indented outline (text).
		With -f matching, lists the paths of matched nodes, and of nodes left unmatched on either side.

	match OLD NEW: same as diff -f matching
	merge BASE BRANCH1 BRANCH2: merge the changes of two branches of BASE

		Conflicts are resolved automatically, and where they were, the merged tree is annotated with the doubts that
		remain on the position, parent, or content of nodes. Use -mt to keep all merge annotations in the output.

	patch OLD SCRIPT: apply the edit script in file SCRIPT (any format) to the process model OLD
	version: show version information
`, os.Args[0])
	os.Exit(2)
}

func main() {
	diffFlags := newFlagSet("diff")
	addMatchFlags(diffFlags)
	diffFlags.StringVar(&diffContext.output, "f", "editScript", "`output`, among editScript, deltaTree, matching")
	diffFlags.StringVar(&diffContext.format, "format", "", "`format` of the output, among xml, json, yaml, text (default depends on -f)")
	diffFlags.IntVar(&diffContext.context, "U", 3, "number of unified context `lines` in text output")
	diffFlags.BoolVar(&diffContext.noColors, "nocolor", false, "do not color text output")

	matchFlags := newFlagSet("match")
	addMatchFlags(matchFlags)

	mergeFlags := newFlagSet("merge")
	addMatchFlags(mergeFlags)
	mergeFlags.BoolVar(&mergeContext.annotations, "mt", false, "keep merge annotations in the output")

	patchFlags := newFlagSet("patch")
	addMatchFlags(patchFlags)
	patchFlags.StringVar(&patchContext.output, "f", "patched", "`output`, among patched, deltaTree")
	patchFlags.StringVar(&patchContext.format, "format", "xml", "`format` of a delta tree, among xml, text")

	// For all commands that don't take flags.
	emptyFlags := newFlagSet("empty")

	if len(os.Args) < 2 {
		exitUsage("Command name required")
	}

	var flags *flag.FlagSet
	nargs := 0
	switch cmd := os.Args[1]; cmd {
	case "diff":
		flags, nargs = diffFlags, 2
	case "match":
		flags, nargs = matchFlags, 2
	case "merge":
		flags, nargs = mergeFlags, 3
	case "patch":
		flags, nargs = patchFlags, 2
	case "version":
		flags = emptyFlags
	default:
		exitUsage(fmt.Sprintf("%q: command not recognized", cmd))
	}
	// Ignoring error because flag sets are configured to exit on error.
	_ = flags.Parse(os.Args[2:])
	if narg := flags.NArg(); narg != nargs {
		exitUsage(fmt.Sprintf("%s: %d args expected, got %d", os.Args[1], nargs, narg))
	}
	args := flags.Args()

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.JSONFormatter{})
	ll, err := log.ParseLevel(globalContext.logLevel)
	if err != nil {
		log.Fatalf("Could not parse log level %q: %v", globalContext.logLevel, err)
	}
	log.SetLevel(ll)

	if os.Args[1] == "version" {
		fmt.Printf("procdiff version %s\n", version)
		return
	}

	cfg, err := config.Load(globalContext.base)
	if err != nil {
		log.Fatalf("Could not load config from %q: %v", globalContext.base, err)
	}
	if err := applyOverrides(flags, cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	colors := !diffContext.noColors && (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
	color.NoColor = !colors
	a := newApp(cfg, os.Stdout, colors)

	cmdlog := log.WithField("op", os.Args[1])
	switch os.Args[1] {
	case "diff":
		err = a.diff(args[0], args[1], diffContext.output, diffContext.format)
	case "match":
		err = a.diff(args[0], args[1], outputMatching, "")
	case "merge":
		err = a.merge(args[0], args[1], args[2], mergeContext.annotations)
	case "patch":
		err = a.patch(args[0], args[1], patchContext.output, patchContext.format)
	}
	if err != nil {
		cmdlog.WithField("cause", err).Fatal("Command failed")
	}
}
