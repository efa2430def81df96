package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newAddCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Queue one or more video files for re-encoding",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cctx.client()
			if err != nil {
				return err
			}
			for _, arg := range args {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolve %s: %w", arg, err)
				}
				job, err := client.createJob(abs)
				if err != nil {
					return fmt.Errorf("queue %s: %w", arg, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "queued %s as %s\n", job.Filename, job.UUID)
			}
			return nil
		},
	}
}
