// Package console is the entry point a script builds on. A Console owns the
// declared options, the parsed command line, the verbosity gate and the
// output sink, and guards the script against running twice with the same
// arguments.
//
//	c, err := console.New(console.Config{Options: opts})
//	...
//	c.MustParse(os.Args[1:])
//	switch status, err := c.CheckPid(ctx); { ... }
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/steveyegge/console/internal/config"
	"github.com/steveyegge/console/internal/help"
	"github.com/steveyegge/console/internal/logging"
	"github.com/steveyegge/console/internal/options"
	"github.com/steveyegge/console/internal/output"
	"github.com/steveyegge/console/internal/pidguard"
	"github.com/steveyegge/console/internal/telemetry"
	"github.com/steveyegge/console/internal/ui"
	"github.com/steveyegge/console/internal/verbosity"
	"go.opentelemetry.io/otel/attribute"
)

// Names of the built-in options.
const (
	OptHelp    = "help"
	OptQuiet   = "quiet"
	OptVerbose = "verbose"
)

// Config describes a script. Zero fields fall back to internal/config
// settings and then to built-in defaults.
type Config struct {
	// Program is the name shown in usage and used for the lock file.
	// Defaults to the base name of os.Args[0].
	Program string
	Options map[string]options.Spec

	Header    string
	Footer    string
	Copyright string
	// Width is the help wrap width. Defaults to the terminal width, or 80.
	Width int

	UniqueID            string
	DisablePerArgUnique bool
	PidDir              string
	LockWait            time.Duration

	Stdout io.Writer
	Stderr io.Writer
	Prober pidguard.Prober
	// Exit is called by MustParse. Defaults to os.Exit.
	Exit func(int)
}

// Console is the application context of one script run.
type Console struct {
	program  string
	helpCfg  help.Config
	set      *options.Set
	values   *options.Values
	stdout   io.Writer
	stderr   io.Writer
	exit     func(int)
	gate     *verbosity.Gate
	initial  verbosity.Level
	sink     *output.Sink
	logger   *logging.Logger
	slog     *slog.Logger
	uniqueID string
	perArgs  bool
	pidDir   string
	lockWait time.Duration
	prober   pidguard.Prober
	rec      *telemetry.Recorder

	guard    *pidguard.Guard
	guardKey string
}

// New validates the option declarations and builds a Console. The built-in
// help, quiet and verbose options are added unless cfg declares options of
// the same name; a built-in gives up its short letter if cfg claims it.
func New(cfg Config) (*Console, error) {
	settings := config.Load()

	raw := options.Merge(cfg.Options, builtinsFor(cfg.Options))
	set, err := options.Normalize(raw)
	if err != nil {
		return nil, err
	}

	c := &Console{
		program:  cfg.Program,
		set:      set,
		values:   options.NewValues(set, nil),
		stdout:   cfg.Stdout,
		stderr:   cfg.Stderr,
		exit:     cfg.Exit,
		uniqueID: cfg.UniqueID,
		perArgs:  !cfg.DisablePerArgUnique && settings.PerArgUnique,
		pidDir:   cfg.PidDir,
		lockWait: cfg.LockWait,
		prober:   cfg.Prober,
		rec:      telemetry.NewRecorder("github.com/steveyegge/console", "console"),
	}
	if c.program == "" {
		c.program = filepath.Base(os.Args[0])
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if c.stderr == nil {
		c.stderr = os.Stderr
	}
	if c.exit == nil {
		c.exit = os.Exit
	}
	if c.uniqueID == "" {
		c.uniqueID = settings.UniqueID
	}
	if c.pidDir == "" {
		c.pidDir = settings.PidDir
	}
	if c.lockWait == 0 {
		c.lockWait = settings.LockWait
	}

	width := cfg.Width
	if width <= 0 {
		width = settings.HelpWidth
	}
	if width <= 0 {
		width = ui.DefaultWidth
		if f, ok := c.stdout.(*os.File); ok {
			width = ui.TerminalWidth(f, ui.DefaultWidth)
		}
	}
	c.helpCfg = help.Config{
		Program:   c.program,
		Header:    cfg.Header,
		Footer:    cfg.Footer,
		Copyright: cfg.Copyright,
		Width:     width,
	}

	initial := verbosity.Normal
	var levelErr error
	if settings.Verbosity != "" {
		if initial, levelErr = verbosity.ParseLevel(settings.Verbosity); levelErr != nil {
			initial = verbosity.Normal
		}
	}
	c.initial = initial
	c.gate = verbosity.NewGate(initial)
	c.sink = output.New(c.stdout, c.stderr, c.gate)
	c.logger = logging.New(c.sink)
	c.slog = logging.NewSlogLogger(c.sink)
	if levelErr != nil {
		c.sink.Diagnostic(fmt.Sprintf("ignoring %s setting: %v", config.KeyVerbosity, levelErr))
	}

	return c, nil
}

// builtinsFor returns the built-in specs, minus short letters that the
// script's own declarations already use.
func builtinsFor(declared map[string]options.Spec) map[string]options.Spec {
	taken := make(map[string]bool)
	for name, spec := range declared {
		name = strings.TrimSpace(name)
		if len([]rune(name)) == 1 {
			taken[name] = true
		}
		if short := strings.TrimSpace(spec.Short); short != "" {
			taken[short] = true
		}
	}

	builtins := options.Builtins()
	for name, spec := range builtins {
		if taken[spec.Short] {
			spec.Short = ""
			builtins[name] = spec
		}
	}
	return builtins
}

// Parse scans args (without the program name), applies -q/-v to the
// verbosity gate and validates requirements. It never exits the process.
// Each call starts again from the configured verbosity, so a Console can
// parse several command lines.
func (c *Console) Parse(args []string) Result {
	_, op := c.rec.Start(context.Background(), "parse", attribute.String("console.program", c.program))
	res := c.parse(args)
	op.End(res.Err, attribute.String("console.parse.outcome", res.Outcome.String()))
	return res
}

func (c *Console) parse(args []string) Result {
	c.gate.Set(c.initial)
	values, err := options.Parse(c.set, args)
	if err != nil {
		c.values = options.NewValues(c.set, nil)
		return Result{Outcome: OutcomeInvalid, Help: c.Help(), Err: err}
	}
	c.values = values

	quiet, _ := values.Lookup(OptQuiet)
	verbose, _ := values.Lookup(OptVerbose)
	if quiet.Present() || verbose.Count() > 0 {
		c.gate.Set(verbosity.FromFlags(quiet.Present(), verbose.Count()))
	}

	if h, _ := values.Lookup(OptHelp); h.Present() {
		return Result{Outcome: OutcomeHelp, Help: c.Help()}
	}

	if err := options.Validate(c.set, values); err != nil {
		return Result{Outcome: OutcomeInvalid, Help: c.Help(), Err: err}
	}
	return Result{Outcome: OutcomeOK}
}

// MustParse is Parse for the outermost entry point: on a help request the
// help text goes to stdout, on invalid input the error and help text go to
// stderr, and in both cases the configured Exit is called with the result's
// exit code. The result is returned for Exit functions that do not exit.
func (c *Console) MustParse(args []string) Result {
	res := c.Parse(args)
	switch res.Outcome {
	case OutcomeHelp:
		_, _ = io.WriteString(c.stdout, res.Help)
		c.exit(res.ExitCode())
	case OutcomeInvalid:
		_, _ = fmt.Fprintf(c.stderr, "Error: %v\n\n%s", res.Err, res.Help)
		c.exit(res.ExitCode())
	}
	return res
}

// Get returns the parsed value of a declared option. Asking for an option
// that was never declared is a programming mistake: it is reported as a
// diagnostic unless quiet, and the zero Value is returned.
func (c *Console) Get(name string) (options.Value, bool) {
	v, declared := c.values.Lookup(name)
	if !declared {
		c.sink.Diagnostic(fmt.Sprintf("option %q is not declared", name))
	}
	return v, declared
}

// Args returns the positional arguments.
func (c *Console) Args() []string {
	return c.values.Args()
}

// Values returns the parsed command line.
func (c *Console) Values() *options.Values {
	return c.values
}

// Options returns the normalized option set, built-ins included.
func (c *Console) Options() *options.Set {
	return c.set
}

// Program returns the program name.
func (c *Console) Program() string {
	return c.program
}

func (c *Console) Verbosity() verbosity.Level {
	return c.gate.Level()
}

func (c *Console) Gate() *verbosity.Gate {
	return c.gate
}

func (c *Console) Sink() *output.Sink {
	return c.sink
}

func (c *Console) Logger() *logging.Logger {
	return c.logger
}

// Slog returns a *slog.Logger writing through the sink.
func (c *Console) Slog() *slog.Logger {
	return c.slog
}

// Help renders the full help text.
func (c *Console) Help() string {
	return help.Render(c.helpCfg, c.set)
}

// Usage renders the usage line alone.
func (c *Console) Usage() string {
	return help.Usage(c.program, c.set, c.helpCfg.Width)
}

// Out writes msg at level through the sink.
func (c *Console) Out(msg string, level verbosity.Level) bool {
	return c.sink.Write(msg, level)
}

// Outf formats and writes at level through the sink.
func (c *Console) Outf(level verbosity.Level, format string, args ...interface{}) bool {
	return c.sink.Writef(level, format, args...)
}

// Error writes msg to the error stream regardless of verbosity.
func (c *Console) Error(msg string) {
	c.sink.Error(msg)
}

// argsKey is what the lock file name is keyed on, empty when per-argument
// uniqueness is off.
func (c *Console) argsKey() string {
	if !c.perArgs {
		return ""
	}
	return c.values.Canonical()
}

// PidFile returns the lock file path for the current arguments.
func (c *Console) PidFile() string {
	return pidguard.GeneratePidFilename(c.pidDir, c.program, c.uniqueID, c.argsKey())
}

// CheckPid classifies and, when free or stale, claims the lock file. See
// pidguard.Guard.Check.
func (c *Console) CheckPid(ctx context.Context) (pidguard.Status, error) {
	g, err := c.pidGuard()
	if err != nil {
		return pidguard.StatusNone, err
	}
	return g.Check(ctx)
}

// PidHolder returns the lock holder seen by the last CheckPid.
func (c *Console) PidHolder() (pidguard.Record, bool) {
	if c.guard == nil {
		return pidguard.Record{}, false
	}
	return c.guard.Holder()
}

// ClearPid removes the lock file at path, or this script's own lock file
// when no path is given. Removing a missing file is not an error.
func (c *Console) ClearPid(path ...string) error {
	if len(path) > 0 && path[0] != "" {
		return pidguard.Clear(path[0])
	}
	return pidguard.Clear(c.PidFile())
}

// pidGuard returns the guard for the current arguments, creating it when
// the arguments changed since the last call.
func (c *Console) pidGuard() (*pidguard.Guard, error) {
	key := c.argsKey()
	if c.guard != nil && c.guardKey == key {
		return c.guard, nil
	}
	g, err := pidguard.New(pidguard.Options{
		Dir:      c.pidDir,
		Script:   c.program,
		UniqueID: c.uniqueID,
		PerArgs:  c.perArgs,
		ArgsKey:  key,
		Prober:   c.prober,
		MaxWait:  c.lockWait,
		Logger:   c.slog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up pid guard: %w", err)
	}
	c.guard, c.guardKey = g, key
	return g, nil
}

// IsUsageError reports whether err came from the user's command line rather
// than the script's declarations.
func IsUsageError(err error) bool {
	var usage *options.UsageError
	var invalid *options.ValidationError
	return errors.As(err, &usage) || errors.As(err, &invalid)
}
