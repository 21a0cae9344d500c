// Package progress renders progress bars and spinners on a single,
// continuously redrawn terminal line.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Bar renders done out of total as a bar of width cells followed by a
// percentage, e.g. "[=====     ]  50%". Values are clamped to [0, total].
func Bar(done, total, width int) string {
	if width < 1 {
		width = 1
	}
	percent := 0
	if total > 0 {
		done = max(0, min(done, total))
		percent = done * 100 / total
	}
	filled := percent * width / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("=", filled), strings.Repeat(" ", width-filled), percent)
}

// SpinnerFrame returns the spinner glyph for the given step.
func SpinnerFrame(step int) string {
	if step < 0 {
		step = -step
	}
	return spinnerFrames[step%len(spinnerFrames)]
}

// Writer redraws one status line in place. The cursor is hidden while the
// line is live and shown again by Done.
type Writer struct {
	mu     sync.Mutex
	out    *termenv.Output
	active bool
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer, opts ...termenv.OutputOption) *Writer {
	return &Writer{out: termenv.NewOutput(w, opts...)}
}

// Update replaces the current status line with line.
func (w *Writer) Update(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.active {
		w.out.HideCursor()
		w.active = true
	}
	_, _ = io.WriteString(w.out, "\r")
	w.out.ClearLine()
	_, _ = io.WriteString(w.out, line)
}

// Done clears the status line, restores the cursor and, when final is not
// empty, leaves final on its own line.
func (w *Writer) Done(final string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active {
		_, _ = io.WriteString(w.out, "\r")
		w.out.ClearLine()
		w.out.ShowCursor()
		w.active = false
	}
	if final != "" {
		_, _ = io.WriteString(w.out, final+"\n")
	}
}
