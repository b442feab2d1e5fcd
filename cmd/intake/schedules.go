package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"support-intake-go/internal/dataset"
	"support-intake-go/internal/types"
)

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "Inspect and update scheduled callbacks",
}

var schedulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled callbacks",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		status, _ := cmd.Flags().GetString("status")

		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		all, err := a.proc.Schedules(cmd.Context())
		if err != nil {
			return err
		}
		if status != "" {
			filtered := all[:0]
			for _, s := range all {
				if s.Status == status {
					filtered = append(filtered, s)
				}
			}
			all = filtered
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if all == nil {
				all = []types.Schedule{}
			}
			return enc.Encode(all)
		}
		return printSchedules(cmd.OutOrStdout(), all)
	},
}

var schedulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write scheduled callbacks to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		all, err := a.proc.Schedules(cmd.Context())
		if err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		if err := dataset.ExportSchedules(f, all); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		printSuccess(cmd.ErrOrStderr(), "Exported %d schedules to %s", len(all), out)
		return nil
	},
}

var schedulesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Set the status and notes of a callback",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		notes, _ := cmd.Flags().GetString("notes")

		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.proc.UpdateSchedule(cmd.Context(), args[0], status, notes); err != nil {
			return err
		}
		printSuccess(cmd.ErrOrStderr(), "Schedule %s updated", args[0])
		return nil
	},
}

func init() {
	schedulesListCmd.Flags().Bool("json", false, "print JSON instead of a table")
	schedulesListCmd.Flags().String("status", "", "only show callbacks with this status")
	schedulesExportCmd.Flags().String("out", "schedules.xlsx", "output workbook path")
	schedulesUpdateCmd.Flags().String("status", "", "new status (required)")
	schedulesUpdateCmd.Flags().String("notes", "", "agent notes")

	schedulesCmd.AddCommand(schedulesListCmd, schedulesExportCmd, schedulesUpdateCmd)
}

func printSchedules(w io.Writer, all []types.Schedule) error {
	if len(all) == 0 {
		fmt.Fprintln(w, "No callbacks scheduled.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tPRIORITY\tSENTIMENT\tSTATUS\tQUERY")
	for _, s := range all {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Date, s.Time, s.Priority, s.Sentiment, s.Status, truncate(s.Query, 60))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
