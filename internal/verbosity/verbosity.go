// Package verbosity defines the ordered output levels of a console script and
// the gate that decides which messages are emitted.
package verbosity

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Level is a position on the verbosity scale. Higher values are chattier.
type Level int

const (
	Quiet   Level = 1
	Normal  Level = 2
	Verbose Level = 3
	Info    Level = 4
	Debug   Level = 16
)

// All lists every level in ascending order.
var All = []Level{Quiet, Normal, Verbose, Info, Debug}

func (l Level) String() string {
	switch l {
	case Quiet:
		return "QUIET"
	case Normal:
		return "NORMAL"
	case Verbose:
		return "VERBOSE"
	case Info:
		return "INFO"
	case Debug:
		return "DEBUG"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel accepts a level name (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QUIET":
		return Quiet, nil
	case "NORMAL", "":
		return Normal, nil
	case "VERBOSE":
		return Verbose, nil
	case "INFO":
		return Info, nil
	case "DEBUG":
		return Debug, nil
	}
	return Normal, fmt.Errorf("unknown verbosity level %q", s)
}

// FromFlags maps the -q flag and the number of -v occurrences to a level.
// Quiet wins over any -v count; three or more -v clamp to Debug.
func FromFlags(quiet bool, verboseCount int) Level {
	if quiet {
		return Quiet
	}
	switch {
	case verboseCount <= 0:
		return Normal
	case verboseCount == 1:
		return Verbose
	case verboseCount == 2:
		return Info
	default:
		return Debug
	}
}

// Allows reports whether a message at msg is emitted when the current level
// is current. Nothing is emitted at Quiet.
func Allows(current, msg Level) bool {
	return current != Quiet && msg <= current
}

// Gate holds the effective level of one application. It is owned by the
// application context and handed to the output sink and the logger.
type Gate struct {
	level atomic.Int64
}

// NewGate returns a gate starting at l.
func NewGate(l Level) *Gate {
	g := &Gate{}
	g.level.Store(int64(l))
	return g
}

// Level returns the current level. A nil or unset gate reads as Normal.
func (g *Gate) Level() Level {
	if g == nil {
		return Normal
	}
	if l := Level(g.level.Load()); l != 0 {
		return l
	}
	return Normal
}

// Set replaces the current level.
func (g *Gate) Set(l Level) {
	g.level.Store(int64(l))
}

// Allows reports whether a message at msg passes the gate.
func (g *Gate) Allows(msg Level) bool {
	return Allows(g.Level(), msg)
}

// IsQuiet reports whether the gate suppresses everything.
func (g *Gate) IsQuiet() bool {
	return g.Level() == Quiet
}
