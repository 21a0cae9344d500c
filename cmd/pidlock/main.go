// Command pidlock inspects and cleans up lock files written by console
// scripts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/steveyegge/console/internal/config"
	"github.com/steveyegge/console/internal/output"
	"github.com/steveyegge/console/internal/telemetry"
	"github.com/steveyegge/console/internal/verbosity"
)

var (
	verboseCount int
	quietFlag    bool
	pidDir       string

	gate = verbosity.NewGate(verbosity.Normal)
)

var rootCmd = &cobra.Command{
	Use:   "pidlock",
	Short: "pidlock - inspect and clear console script lock files",
	Long: `pidlock works on the lock files console scripts use to avoid running twice.

Each lock file holds "{pid}|{start_time}". A lock is stale when that process
is gone or its pid now belongs to a process that started at another time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.Initialize(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
		}
		if err := telemetry.Init(cmd.Context(), "pidlock", Version); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize telemetry: %v\n", err)
		}
		if pidDir == "" {
			pidDir = config.GetString(config.KeyPidDir)
		}
		level := verbosity.FromFlags(quietFlag, verboseCount)
		if !quietFlag && verboseCount == 0 {
			if configured, err := verbosity.ParseLevel(config.GetString(config.KeyVerbosity)); err == nil {
				level = configured
			}
		}
		gate.Set(level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		telemetry.Shutdown(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verboseCount, "verbose", "v", "Increase output verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().StringVar(&pidDir, "dir", "", "Lock file directory (default: $CONSOLE_PID_DIR or the system temp dir)")

	rootCmd.AddCommand(statusCmd, clearCmd, pathCmd, versionCmd)
}

// sinkFor returns a sink writing to the command's output streams.
func sinkFor(cmd *cobra.Command) *output.Sink {
	return output.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), gate)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
