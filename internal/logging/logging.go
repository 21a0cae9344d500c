// Package logging maps syslog-style severities and slog levels onto the
// console's verbosity scale and writes through an output.Sink.
package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/steveyegge/console/internal/output"
	"github.com/steveyegge/console/internal/verbosity"
)

// Severities, most severe first.
const (
	Emergency = "emergency"
	Alert     = "alert"
	Critical  = "critical"
	Error     = "error"
	Warning   = "warning"
	Notice    = "notice"
	Info      = "info"
	Debug     = "debug"
)

// LevelFor returns the verbosity a message of the given severity needs.
// Unknown severities are treated as Normal.
func LevelFor(severity string) verbosity.Level {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case Notice:
		return verbosity.Verbose
	case Info:
		return verbosity.Info
	case Debug:
		return verbosity.Debug
	default:
		return verbosity.Normal
	}
}

// Logger writes severity-tagged messages to a sink.
type Logger struct {
	sink *output.Sink
}

// New returns a Logger writing to sink.
func New(sink *output.Sink) *Logger {
	return &Logger{sink: sink}
}

// Log interpolates {key} placeholders in msg from fields and writes the
// result at the verbosity the severity maps to. It reports whether the
// message passed the gate.
func (l *Logger) Log(severity, msg string, fields map[string]any) bool {
	return l.sink.Write(Interpolate(msg, fields), LevelFor(severity))
}

func (l *Logger) Emergency(msg string, fields map[string]any) { l.Log(Emergency, msg, fields) }
func (l *Logger) Alert(msg string, fields map[string]any)     { l.Log(Alert, msg, fields) }
func (l *Logger) Critical(msg string, fields map[string]any)  { l.Log(Critical, msg, fields) }
func (l *Logger) Error(msg string, fields map[string]any)     { l.Log(Error, msg, fields) }
func (l *Logger) Warning(msg string, fields map[string]any)   { l.Log(Warning, msg, fields) }
func (l *Logger) Notice(msg string, fields map[string]any)    { l.Log(Notice, msg, fields) }
func (l *Logger) Info(msg string, fields map[string]any)      { l.Log(Info, msg, fields) }
func (l *Logger) Debug(msg string, fields map[string]any)     { l.Log(Debug, msg, fields) }

// Interpolate replaces each {key} in msg with the matching field. Unknown
// placeholders are left as they are.
func Interpolate(msg string, fields map[string]any) string {
	if len(fields) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(fields[k]))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
