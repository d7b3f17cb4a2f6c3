package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"screening-backend/internal/scheduling"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm <file names...>",
	Short: "Schedule interviews tomorrow at 09:00 for the selected ranked candidates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService(cmd.Context(), cliConfig(), true)
		if err != nil {
			return err
		}
		results, err := svc.ConfirmAndSchedule(cmd.Context(), sessionID(), args)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to schedule: run rank first")
			return nil
		}
		return printResults(cmd.OutOrStdout(), results)
	},
}

func init() {
	rootCmd.AddCommand(confirmCmd)
}

func printResults(w io.Writer, results []scheduling.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CANDIDATE\tFILE\tSTATUS\tDETAIL")
	for _, r := range results {
		detail := r.Link
		if !r.Succeeded() {
			detail = r.Reason.Message()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Candidate, r.FileName, r.Status, detail)
	}
	return tw.Flush()
}
