// Package commands implements CLI command handlers for aliasfang.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/aliasfang/internal/config"
	"github.com/Sumatoshi-tech/aliasfang/pkg/aliascheck"
	"github.com/Sumatoshi-tech/aliasfang/pkg/dispatch"
	"github.com/Sumatoshi-tech/aliasfang/pkg/policy"
)

// ErrViolationsFound signals that the run completed but at least one file
// violated the policy. main maps it onto exit status 1; every other error
// maps onto exit status 2.
var ErrViolationsFound = errors.New("import alias violations found")

// CheckCommand holds configuration and dependencies for the check command.
type CheckCommand struct {
	aliases    []string
	policyFile string
	configPath string
	threads    int
	procs      int
	lazy       bool
	verbose    bool
	noColor    bool

	out    io.Writer
	errOut io.Writer
}

// NewCheckCommand creates the check cobra command.
func NewCheckCommand() *cobra.Command {
	cmd, _ := newCheckCommand()

	return cmd
}

func newCheckCommand() (*cobra.Command, *CheckCommand) {
	check := &CheckCommand{out: os.Stdout, errOut: os.Stderr}

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Check files against an allowed-alias policy",
		Long: `Check Python files against an allowed-alias policy.

For each fully-qualified import name the policy declares the aliases a
file may bind it under; any other alias is reported. Unaliased imports
are never checked. Exit status is 0 for a clean run, 1 when violations
were found, 2 for configuration or per-file errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Distinguish "flag not given" from "flag given as 0":
			// 0 means the implementation-default worker count.
			var threads, procs *int
			if cmd.Flags().Changed("threads") {
				threads = &check.threads
			}

			if cmd.Flags().Changed("procs") {
				procs = &check.procs
			}

			return check.Execute(cmd, args, threads, procs)
		},
	}

	cmd.Flags().StringArrayVarP(&check.aliases, "alias", "a", nil,
		"policy grouping: a fully-qualified name followed by its allowed aliases, e.g. -a \"datetime.datetime dt\"")
	cmd.Flags().StringVar(&check.policyFile, "policy-file", "", "YAML policy file to load")
	cmd.Flags().StringVar(&check.configPath, "config", "", "config file path (default: .aliasfang.yaml in CWD or $HOME)")
	cmd.Flags().IntVarP(&check.threads, "threads", "t", 0, "evaluate files on a goroutine pool of N workers (0 = auto)")
	cmd.Flags().IntVarP(&check.procs, "procs", "p", 0, "evaluate files in N worker processes (0 = auto)")
	cmd.Flags().BoolVar(&check.lazy, "lazy", false, "stop at the first violation per file")
	cmd.Flags().BoolVarP(&check.verbose, "verbose", "v", false, "verbose output with a run summary")
	cmd.Flags().BoolVar(&check.noColor, "no-color", false, "disable colored output")

	return cmd, check
}

// Execute runs the check: policy assembly, strategy selection, dispatch,
// and aggregation. Configuration errors return before any file is read.
func (c *CheckCommand) Execute(cmd *cobra.Command, files []string, threads, procs *int) error {
	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return err
	}

	c.applyConfig(cfg, &threads, &procs)

	if c.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	allowed, err := c.assemblePolicy()
	if err != nil {
		return err
	}

	strategy, err := dispatch.Config{Threads: threads, Procs: procs, Lazy: c.lazy}.Select()
	if err != nil {
		return err
	}

	logger := c.logger()
	logger.Info("checking files", "files", len(files), "strategy", fmt.Sprintf("%T", strategy), "policy_entries", len(allowed))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results := strategy.Run(ctx, allowed, files)

	aggregator := aliascheck.NewAggregator(c.out, c.errOut)
	summary := aggregator.Consume(results)

	if c.verbose {
		aggregator.RenderSummary(summary)
	}

	switch summary.ExitCode() {
	case aliascheck.ExitError:
		return fmt.Errorf("%d of %d files could not be evaluated", summary.Errors, summary.Files)
	case aliascheck.ExitViolations:
		return ErrViolationsFound
	default:
		return nil
	}
}

// applyConfig folds config-file settings under the explicit flags.
func (c *CheckCommand) applyConfig(cfg *config.Config, threads, procs **int) {
	if *threads == nil && cfg.ThreadsEnabled() {
		*threads = &cfg.Check.Threads
	}

	if *procs == nil && cfg.ProcsEnabled() {
		*procs = &cfg.Check.Procs
	}

	if cfg.Check.Lazy {
		c.lazy = true
	}

	if cfg.Check.NoColor {
		c.noColor = true
	}

	if c.policyFile == "" {
		c.policyFile = cfg.Check.PolicyFile
	}
}

// assemblePolicy merges the policy file (if any) with the -a groupings,
// accumulating aliases per qualified name.
func (c *CheckCommand) assemblePolicy() (policy.Policy, error) {
	assembled := make(policy.Policy)

	if c.policyFile != "" {
		fromFile, err := policy.LoadFile(c.policyFile)
		if err != nil {
			return nil, err
		}

		assembled.Merge(fromFile)
	}

	fromFlags, err := policy.FromGroupings(c.aliases)
	if err != nil {
		return nil, err
	}

	assembled.Merge(fromFlags)

	return assembled, nil
}

// logger returns the command's diagnostic logger; quiet unless verbose.
func (c *CheckCommand) logger() *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: level}))
}
