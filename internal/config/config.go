package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/nicolagi/procdiff/internal/match"
)

// DefaultBaseDirectoryPath is where the configuration file is looked up
// unless the -base flag says otherwise.
var DefaultBaseDirectoryPath string

func init() {
	if base := os.Getenv("PROCDIFF_BASE"); base != "" {
		DefaultBaseDirectoryPath = base
	} else {
		DefaultBaseDirectoryPath = os.ExpandEnv("$HOME/lib/procdiff")
	}
}

type C struct {
	// One of fast, balanced, quality.
	MatchMode string

	// Minimum comparator score for similarity based matches, in [0, 1].
	Threshold float64

	// Prepended to data element names in the init script, e.g.,
	// "data." for CPEE processes.
	VariablePrefix string

	// Whether preprocessing inserts a script initializing the data
	// elements of a document.
	AddInitScript bool

	// Indent XML output.
	Pretty bool

	// Context lines around changes in the unified diffs of code.
	ContextLines int
}

// Default returns the configuration used when there's no file.
func Default() *C {
	return &C{
		MatchMode:      string(match.Quality),
		Threshold:      match.DefaultThreshold,
		VariablePrefix: "data.",
		ContextLines:   3,
	}
}

// Load loads the configuration from the file called "config" in the
// provided base directory, on top of the defaults.
func Load(base string) (*C, error) {
	filename := filepath.Join(base, "config")
	f, err := os.Open(filename)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, errorf("Load", "%w", err)
	}
	defer func() {
		// Ignore error closing file opened only for reading.
		_ = f.Close()
	}()
	c, err := load(f)
	if err != nil {
		return nil, errorf("Load", "%q: %w", filename, err)
	}
	if err := c.Validate(); err != nil {
		return nil, errorf("Load", "%q: %w", filename, err)
	}
	return c, nil
}

func load(f io.Reader) (*C, error) {
	c := Default()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		i := strings.IndexAny(line, " 	")
		if i == -1 {
			return nil, errorf("load", "no separator in %q", line)
		}
		var err error
		switch key, val := line[:i], strings.TrimSpace(line[i:]); key {
		case "match-mode":
			c.MatchMode = val
		case "threshold":
			c.Threshold, err = strconv.ParseFloat(val, 64)
		case "variable-prefix":
			c.VariablePrefix = val
		case "add-init-script":
			c.AddInitScript, err = strconv.ParseBool(val)
		case "pretty":
			c.Pretty, err = strconv.ParseBool(val)
		case "context-lines":
			c.ContextLines, err = strconv.Atoi(val)
		default:
			return nil, errorf("load", "unknown key %q", key)
		}
		if err != nil {
			return nil, errorf("load", "%q: %w", line, err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, errorf("load", "%w", err)
	}
	return c, nil
}

// Validate reports all invalid values at once.
func (c *C) Validate() error {
	var result *multierror.Error
	if _, err := match.ParseMode(c.MatchMode); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		result = multierror.Append(result, errorf("Validate", "threshold %v not in [0, 1]", c.Threshold))
	}
	if c.ContextLines < 0 {
		result = multierror.Append(result, errorf("Validate", "negative context lines: %d", c.ContextLines))
	}
	return result.ErrorOrNil()
}

// MatchOptions returns the matcher pipeline configuration. The
// configuration is assumed valid.
func (c *C) MatchOptions() match.Options {
	return match.Options{
		Mode:      match.Mode(c.MatchMode),
		Threshold: c.Threshold,
	}
}
