package console

// Outcome is what parsing decided about the run.
type Outcome int

const (
	// OutcomeOK means the script should go on.
	OutcomeOK Outcome = iota
	// OutcomeHelp means help was requested.
	OutcomeHelp
	// OutcomeInvalid means the command line was rejected.
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeHelp:
		return "help"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Result is the verdict of Parse. Help holds the rendered help text for
// OutcomeHelp and OutcomeInvalid; Err is set for OutcomeInvalid.
type Result struct {
	Outcome Outcome
	Help    string
	Err     error
}

// ExitCode is the conventional process status for the outcome.
func (r Result) ExitCode() int {
	if r.Outcome == OutcomeInvalid {
		return 2
	}
	return 0
}
