package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/aliasfang/pkg/dispatch"
)

// NewCheckWorkerCommand creates the hidden subcommand the process-pool
// strategy runs in each worker process. It reads one JSON work request on
// stdin and writes one JSON response on stdout; per-file evaluation
// failures travel inside the response, so a non-zero exit always means
// the worker itself broke.
func NewCheckWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:    dispatch.WorkerCommand,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return dispatch.WorkerMain(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
