package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"support-intake-go/internal/dataset"
)

var faqCmd = &cobra.Command{
	Use:   "faq",
	Short: "Manage the FAQ",
}

var faqListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the FAQ as JSON in insertion order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		l, err := a.proc.FAQs()
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(l, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var faqAddCmd = &cobra.Command{
	Use:   "add <question> <answer>",
	Short: "Add or replace a FAQ entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.proc.AddFAQ(args[0], args[1]); err != nil {
			return err
		}
		printSuccess(cmd.ErrOrStderr(), "FAQ added")
		return nil
	},
}

var faqImportCmd = &cobra.Command{
	Use:   "import <workbook.xlsx>",
	Short: "Merge question/answer rows from an xlsx workbook into the FAQ",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := dataset.LoadFAQ(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, e := range rows {
			if err := a.proc.AddFAQ(e.Question, e.Answer); err != nil {
				return fmt.Errorf("importing %q: %w", e.Question, err)
			}
		}
		printSuccess(cmd.ErrOrStderr(), "Imported %d FAQ entries from %s", len(rows), args[0])
		return nil
	},
}

func init() {
	faqCmd.AddCommand(faqListCmd, faqAddCmd, faqImportCmd)
}
