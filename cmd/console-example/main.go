// Command console-example is a small batch script built on the console
// package: it declares options, refuses to run twice for the same
// arguments, and reports progress.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/steveyegge/console/internal/config"
	"github.com/steveyegge/console/internal/console"
	"github.com/steveyegge/console/internal/options"
	"github.com/steveyegge/console/internal/pidguard"
	"github.com/steveyegge/console/internal/progress"
	"github.com/steveyegge/console/internal/prompt"
	"github.com/steveyegge/console/internal/telemetry"
	"github.com/steveyegge/console/internal/ui"
	"github.com/steveyegge/console/internal/verbosity"
)

const defaultBatches = 5

var declaredOptions = map[string]options.Spec{
	"source": {
		Short:       "s",
		Param:       "DIR",
		Description: "Directory to sync from",
		Requirement: options.Required,
	},
	"all": {
		Description: "Sync every tenant",
		Requirement: options.OneRequired,
	},
	"tenant": {
		Short:       "t",
		Param:       "ID",
		Description: "Sync a single tenant",
		Requirement: options.OneRequired,
	},
	"batches": {
		Param:         "N",
		ParamOptional: true,
		Description:   "Number of batches to run (default 5)",
	},
	"confirm": {
		Description: "Ask before starting",
	},
	"force": {
		Short:       "f",
		Description: "Run even when the lock holder cannot be identified",
	},
}

func main() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}
	if err := telemetry.Init(context.Background(), "console-example", "dev"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize telemetry: %v\n", err)
	}

	c, err := console.New(console.Config{
		Program:   "console-example",
		Options:   declaredOptions,
		Header:    "Syncs tenant data in batches. Only one run per set of arguments is allowed at a time.",
		Footer:    "Lock files live in $CONSOLE_PID_DIR (default: the system temp dir). Use pidlock to inspect them.",
		Copyright: "Copyright (c) 2026 The console authors",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	c.MustParse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, c, time.Second)
	stop()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	telemetry.Shutdown(flushCtx)
	cancel()
	os.Exit(code)
}

// run does the work after parsing and returns the process exit status.
func run(ctx context.Context, c *console.Console, step time.Duration) int {
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	force, _ := c.Get("force")
	status, err := c.CheckPid(ctx)
	if err != nil {
		c.Error(red("Error: ") + err.Error())
		return 1
	}
	switch status {
	case pidguard.StatusOtherRunning:
		holder, _ := c.PidHolder()
		c.Error(red(fmt.Sprintf("already running as process %d", holder.PID)))
		return 1
	case pidguard.StatusOtherUnknown:
		if !force.Present() {
			c.Error(yellow("cannot tell whether another run holds " + c.PidFile() + "; use --force to run anyway"))
			return 1
		}
		c.Out(yellow("lock holder unknown, continuing because of --force"), verbosity.Normal)
	case pidguard.StatusOtherNotRunning:
		holder, _ := c.PidHolder()
		c.Out(yellow(fmt.Sprintf("recovered stale lock from process %d", holder.PID)), verbosity.Verbose)
	}
	defer func() {
		if err := c.ClearPid(); err != nil {
			c.Error(red("Error: ") + err.Error())
		}
	}()

	if confirm, _ := c.Get("confirm"); confirm.Present() {
		ok, err := prompt.Confirm(os.Stdin, os.Stdout, "Start sync?", false)
		if err != nil || !ok {
			c.Out("aborted", verbosity.Normal)
			return 1
		}
	}

	batches := defaultBatches
	if b, _ := c.Get("batches"); b.String() != "" {
		n, err := strconv.Atoi(b.String())
		if err != nil || n < 1 {
			c.Error(red("Error: ") + "--batches must be a positive number")
			return 2
		}
		batches = n
	}

	source, _ := c.Get("source")
	target := "all tenants"
	if t, _ := c.Get("tenant"); t.Present() {
		target = "tenant " + t.String()
	}
	c.Slog().Info("starting sync", "source", source.String(), "target", target, "batches", batches)

	var bar *progress.Writer
	if c.Verbosity() != verbosity.Quiet && ui.IsTerminal(os.Stdout) {
		bar = progress.NewWriter(os.Stdout)
	}
	for i := 1; i <= batches; i++ {
		if !wait(ctx, step) {
			if bar != nil {
				bar.Done("")
			}
			c.Error(red("interrupted"))
			return 130
		}
		if bar != nil {
			bar.Update(fmt.Sprintf("%s %s batch %d/%d", progress.SpinnerFrame(i), progress.Bar(i, batches, 20), i, batches))
		} else {
			c.Logger().Notice("batch {i}/{n} done", map[string]any{"i": i, "n": batches})
		}
	}
	if bar != nil {
		bar.Done("")
	}

	c.Out(green(fmt.Sprintf("synced %s from %s", target, source.String())), verbosity.Normal)
	return 0
}

// wait sleeps for d and reports false if ctx ended first.
func wait(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
