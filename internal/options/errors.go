package options

import (
	"fmt"
	"strings"
)

// ConfigError reports a specification set that cannot be used. It is a
// programming mistake in the script and is raised at setup time.
type ConfigError struct {
	Name   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid option specification %q: %s", e.Name, e.Reason)
}

// UsageError reports a command line the scanner could not make sense of,
// such as an unknown option or a missing value.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// ViolationKind classifies a failed requirement.
type ViolationKind int

const (
	MissingRequired ViolationKind = iota + 1
	NoneOfGroup
)

// ValidationError reports the first requirement the command line violates.
type ValidationError struct {
	Kind ViolationKind
	// Names holds the missing option, or every member of the unsatisfied group.
	Names []string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingRequired:
		return fmt.Sprintf("missing required option %s", displayNames(e.Names))
	case NoneOfGroup:
		return fmt.Sprintf("one of the options %s is required", displayNames(e.Names))
	default:
		return "invalid command line"
	}
}

func displayNames(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = Display(n)
	}
	return strings.Join(parts, ", ")
}

// Display renders an option name the way a user types it.
func Display(name string) string {
	if len([]rune(name)) == 1 {
		return "-" + name
	}
	return "--" + name
}
