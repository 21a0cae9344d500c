// Package output writes script messages through the verbosity gate.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/steveyegge/console/internal/verbosity"
)

// Sink writes one line per message. Normal output goes to the output stream
// when the gate allows its level; errors and diagnostics go to the error
// stream.
type Sink struct {
	mu   sync.Mutex
	out  io.Writer
	err  io.Writer
	gate *verbosity.Gate
}

// New returns a Sink. Nil writers default to os.Stdout and os.Stderr, a nil
// gate to one at Normal.
func New(out, errOut io.Writer, gate *verbosity.Gate) *Sink {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	if gate == nil {
		gate = verbosity.NewGate(verbosity.Normal)
	}
	return &Sink{out: out, err: errOut, gate: gate}
}

// Gate returns the gate the sink filters with.
func (s *Sink) Gate() *verbosity.Gate {
	return s.gate
}

// Write emits msg followed by a newline if level is allowed. Callers never
// include their own terminator. It reports whether the message was written.
func (s *Sink) Write(msg string, level verbosity.Level) bool {
	if !s.gate.Allows(level) {
		return false
	}
	s.writeLine(s.out, msg)
	return true
}

// Writef formats according to a format specifier and calls Write.
func (s *Sink) Writef(level verbosity.Level, format string, args ...interface{}) bool {
	if !s.gate.Allows(level) {
		return false
	}
	s.writeLine(s.out, fmt.Sprintf(format, args...))
	return true
}

// Error writes msg to the error stream. Errors are not suppressed by quiet mode.
func (s *Sink) Error(msg string) {
	s.writeLine(s.err, msg)
}

// Diagnostic writes a low-severity note to the error stream unless quiet.
func (s *Sink) Diagnostic(msg string) {
	if s.gate.IsQuiet() {
		return
	}
	s.writeLine(s.err, msg)
}

// Print writes text as is, gated at Normal. Used for preformatted blocks such
// as help text that already end in a newline.
func (s *Sink) Print(text string) {
	if !s.gate.Allows(verbosity.Normal) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, text)
}

func (s *Sink) writeLine(w io.Writer, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(w, strings.TrimSuffix(msg, "\n")+"\n")
}
