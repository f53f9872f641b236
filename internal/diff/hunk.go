package diff

import (
	"fmt"
	"io"
)

// A hunk as in https://www.gnu.org/software/diffutils/manual/html_node/Hunks.html.
// Offsets are zero-based, counts include context lines.
type hunk struct {
	leftOffset  int
	leftCount   int
	rightOffset int
	rightCount  int

	lines []string

	// Common lines seen since the last change. Two changes stay in the same
	// hunk when at most twice the context separates them.
	trailing int
	context  int
}

func newHunk(left, right int, leading []string, context int) *hunk {
	n := len(leading)
	return &hunk{
		leftOffset:  left - n,
		leftCount:   n,
		rightOffset: right - n,
		rightCount:  n,
		lines:       leading,
		context:     context,
	}
}

func (h *hunk) change(line string) {
	h.lines = append(h.lines, line)
	h.trailing = 0
	if line[0] == '-' {
		h.leftCount++
	} else {
		h.rightCount++
	}
}

func (h *hunk) common(line string) {
	h.lines = append(h.lines, line)
	h.trailing++
	h.leftCount++
	h.rightCount++
}

func (h *hunk) closed() bool {
	return h.trailing > 2*h.context
}

// trim drops the common lines past the context and returns them.
func (h *hunk) trim() []string {
	extra := h.trailing - h.context
	if extra <= 0 {
		return nil
	}
	cut := len(h.lines) - extra
	dropped := h.lines[cut:]
	h.lines = h.lines[:cut]
	h.leftCount -= extra
	h.rightCount -= extra
	h.trailing = h.context
	return dropped
}

func (h *hunk) printTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "@@ -%s +%s @@\n", location(h.leftOffset, h.leftCount), location(h.rightOffset, h.rightCount)); err != nil {
		return err
	}
	for _, line := range h.lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func location(offset, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", offset)
	case 1:
		return fmt.Sprintf("%d", offset+1)
	default:
		return fmt.Sprintf("%d,%d", offset+1, count)
	}
}

// window keeps the most recent common lines, dropping the oldest.
type window struct {
	lines []string
	size  int
}

func newWindow(size int) *window {
	return &window{size: size}
}

func (w *window) push(line string) {
	if w.size == 0 {
		return
	}
	if len(w.lines) == w.size {
		w.lines = w.lines[1:]
	}
	w.lines = append(w.lines, line)
}

func (w *window) drain() []string {
	lines := w.lines
	w.lines = nil
	return lines
}
