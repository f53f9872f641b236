package diff

import (
	"io"
	"strings"

	"github.com/andreyvit/diff"
)

// Unified wraps UnifiedTo to return a string instead of writing it to a writer.
func Unified(a, b string, contextLines int) (string, error) {
	var buf strings.Builder
	if err := UnifiedTo(&buf, a, b, contextLines); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// UnifiedTo writes a unified diff of the two code fragments to w. Nothing is
// written if the fragments are equal.
func UnifiedTo(w io.Writer, a, b string, contextLines int) error {
	if a == b {
		return nil
	}
	if contextLines < 0 {
		contextLines = 0
	}
	return unified(w, diff.LineDiffAsLines(a, b), contextLines)
}

func unified(w io.Writer, lines []string, contextLines int) error {
	// Outside a hunk, the latest common lines wait in the window so that they
	// can open the next hunk as leading context.
	var current *hunk
	window := newWindow(contextLines)
	var left, right int
	for _, line := range lines {
		if line == "" {
			continue
		}
		switch line[0] {
		case ' ':
			if current == nil {
				window.push(line)
				break
			}
			current.common(line)
			if current.closed() {
				for _, l := range current.trim() {
					window.push(l)
				}
				if err := current.printTo(w); err != nil {
					return err
				}
				current = nil
			}
		case '-', '+':
			if current == nil {
				current = newHunk(left, right, window.drain(), contextLines)
			}
			current.change(line)
		}
		switch line[0] {
		case '-':
			left++
		case '+':
			right++
		default:
			left++
			right++
		}
	}
	if current == nil {
		return nil
	}
	current.trim()
	return current.printTo(w)
}
