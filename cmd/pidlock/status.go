package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/steveyegge/console/internal/pidguard"
	"github.com/steveyegge/console/internal/ui"
	"github.com/steveyegge/console/internal/verbosity"
)

var statusExitCode bool

var statusCmd = &cobra.Command{
	Use:   "status <lockfile|glob>...",
	Short: "Classify lock files without changing them",
	Long: `Classify each lock file as held (running), stale (not running) or unknown.

Arguments may be glob patterns, e.g. 'pidlock status "/tmp/*.pid"'.
With --exit-code the command exits 3 when any lock is held by a live process.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := expandPaths(args)
		if err != nil {
			return err
		}

		sink := sinkFor(cmd)
		var held, stale, unknown, missing int
		for _, path := range paths {
			status, rec, err := pidguard.Inspect(cmd.Context(), path, nil)
			if errors.Is(err, pidguard.ErrNoLockFile) {
				missing++
				sink.Write(fmt.Sprintf("%s %s: no lock file", ui.RenderMuted(ui.IconInfo), path), verbosity.Normal)
				continue
			}
			if err != nil {
				return err
			}
			switch status {
			case pidguard.StatusOtherRunning:
				held++
			case pidguard.StatusOtherNotRunning:
				stale++
			default:
				unknown++
			}
			sink.Write(describe(path, status, rec), verbosity.Normal)
			sink.Writef(verbosity.Verbose, "  pid=%d start=%d", rec.PID, rec.StartTime)
		}

		sink.Write("\n"+ui.RenderCategory("Summary"), verbosity.Verbose)
		sink.Writef(verbosity.Verbose, "  %d held, %d stale, %d unknown, %d missing", held, stale, unknown, missing)

		if held > 0 && statusExitCode {
			return &exitError{code: 3}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusExitCode, "exit-code", false, "Exit 3 when a lock is held by a running process")
}

func describe(path string, status pidguard.Status, rec pidguard.Record) string {
	switch status {
	case pidguard.StatusOtherRunning:
		return fmt.Sprintf("%s %s: held by running process %d", ui.RenderAccent(ui.IconPass), path, rec.PID)
	case pidguard.StatusOtherNotRunning:
		return fmt.Sprintf("%s %s: stale (process %d not running)", ui.RenderWarn(ui.IconWarn), path, rec.PID)
	default:
		return fmt.Sprintf("%s %s: %s", ui.RenderFail(ui.IconFail), path, status)
	}
}

// expandPaths resolves glob patterns. A pattern matching nothing is kept as
// a literal path so the caller reports it as missing.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			paths = append(paths, arg)
			continue
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
