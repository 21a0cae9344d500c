package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/steveyegge/console/internal/config"
	"github.com/steveyegge/console/internal/console"
	"github.com/steveyegge/console/internal/options"
	"github.com/steveyegge/console/internal/pidguard"
)

var (
	pathUniqueID string
	pathSpecFile string
)

var pathCmd = &cobra.Command{
	Use:   "path <script> [-- script-args...]",
	Short: "Print the lock file path a script would use",
	Long: `Print the lock file path a console script derives for itself.

Without --spec the path ignores script arguments. With --spec, the script's
option declarations are loaded from a YAML or TOML file and the arguments
after "--" are parsed against them, giving the per-argument path.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, scriptArgs := args[0], args[1:]
		uniqueID := pathUniqueID
		if uniqueID == "" {
			uniqueID = configUniqueID()
		}

		if pathSpecFile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), pidguard.GeneratePidFilename(pidDir, script, uniqueID, ""))
			return nil
		}

		raw, err := options.LoadFile(pathSpecFile)
		if err != nil {
			return err
		}
		c, err := console.New(console.Config{
			Program:  script,
			Options:  raw,
			UniqueID: uniqueID,
			PidDir:   pidDir,
			Stdout:   cmd.OutOrStdout(),
			Stderr:   cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		// Requirements are not checked: the path only depends on what was given.
		if res := c.Parse(scriptArgs); res.Outcome == console.OutcomeInvalid && !isValidationOnly(res.Err) {
			return fmt.Errorf("parsing script arguments: %w", res.Err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.PidFile())
		return nil
	},
}

func init() {
	pathCmd.Flags().StringVar(&pathUniqueID, "unique-id", "", "Unique id the script passes (default: $CONSOLE_UNIQUE_ID)")
	pathCmd.Flags().StringVar(&pathSpecFile, "spec", "", "YAML or TOML file with the script's option declarations")
}

func isValidationOnly(err error) bool {
	var verr *options.ValidationError
	return errors.As(err, &verr)
}

func configUniqueID() string {
	return config.GetString(config.KeyUniqueID)
}
