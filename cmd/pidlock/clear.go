package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/steveyegge/console/internal/pidguard"
	"github.com/steveyegge/console/internal/ui"
	"github.com/steveyegge/console/internal/verbosity"
)

var clearStaleOnly bool

var clearCmd = &cobra.Command{
	Use:   "clear <lockfile|glob>...",
	Short: "Remove lock files",
	Long: `Remove lock files. Missing files are not an error.

With --stale-only, only locks whose holder is no longer running are removed;
held and unclassifiable locks are left alone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := expandPaths(args)
		if err != nil {
			return err
		}

		sink := sinkFor(cmd)
		for _, path := range paths {
			if clearStaleOnly {
				status, err := pidguard.ClearStale(cmd.Context(), path, nil)
				if err != nil {
					return err
				}
				switch status {
				case pidguard.StatusNone:
					continue
				case pidguard.StatusOtherNotRunning:
				default:
					sink.Writef(verbosity.Verbose, "kept %s (%s)", path, status)
					continue
				}
			} else if err := pidguard.Clear(path); err != nil {
				return err
			}
			sink.Write(fmt.Sprintf("%s removed %s", ui.RenderPass(ui.IconPass), path), verbosity.Normal)
		}
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearStaleOnly, "stale-only", false, "Only remove locks whose holder is not running")
}
