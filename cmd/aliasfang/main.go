// Package main provides the entry point for the aliasfang CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/aliasfang/cmd/aliasfang/commands"
	"github.com/Sumatoshi-tech/aliasfang/pkg/aliascheck"
	"github.com/Sumatoshi-tech/aliasfang/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "aliasfang",
		Short: "Aliasfang - import alias policy linter",
		Long: `Aliasfang enforces a naming policy on Python import aliases.

Commands:
  check     Check files against an allowed-alias policy`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands.
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewCheckWorkerCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, commands.ErrViolationsFound) {
			os.Exit(aliascheck.ExitViolations)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(aliascheck.ExitError)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "aliasfang %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
