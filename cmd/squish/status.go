package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newStatusCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the queue and every job in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cctx.client()
			if err != nil {
				return err
			}
			status, err := client.status()
			if err != nil {
				return err
			}
			jobs, err := client.jobs()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			state := "idle"
			if status.Busy {
				state = "encoding"
			}
			fmt.Fprintf(out, "queue: %s (waiting %d, processing %d, done %d, failed %d)\n",
				state, status.Waiting, status.Processing, status.Done, status.Failed)

			if len(jobs) == 0 {
				fmt.Fprintln(out, "no jobs")
				return nil
			}
			printJobs(out, jobs)
			return nil
		},
	}
}

func printJobs(out io.Writer, jobs []jobView) {
	headers := []string{"ID", "FILE", "STATUS", "INPUT", "OUTPUT", "DETAIL"}
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		output := "-"
		if job.OutputSize != nil {
			output = formatSize(*job.OutputSize)
		}
		detail := job.Error
		rows = append(rows, []string{
			shortUUID(job.UUID),
			job.Filename,
			job.Status,
			formatSize(job.InputSize),
			output,
			detail,
		})
	}

	if file, ok := out.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
		fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{
			alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft,
		}))
		return
	}

	// Plain tab separated output for pipes and scripts.
	for _, row := range rows {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3], row[4], row[5])
	}
}
