package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/docrank/internal/report"
	"github.com/dshills/docrank/internal/storage"
)

func historyCmd(a *app) *cobra.Command {
	var (
		limit    int
		document string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored reports, newest first",
		Long: `List stored reports, newest first.

With --document, list the sections of that document that made it into a
report instead.

Examples:
  docrank history --limit 5
  docrank history --document guide.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			store, err := a.requireStore()
			if err != nil {
				return err
			}

			if document != "" {
				return printSections(cmd, store, document, limit)
			}

			recs, err := store.ListReports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no reports stored")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tDOCS\tSECTIONS\tPERSONA\tJOB")
			for _, rec := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
					rec.ID,
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.DocumentCount,
					rec.SectionCount,
					clip(rec.Persona, 30),
					clip(rec.Job, 40),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultListLimit, "maximum reports (or sections with --document) to list")
	cmd.Flags().StringVarP(&document, "document", "d", "", "list ranked sections of this document (file name as reported)")

	return cmd
}

func printSections(cmd *cobra.Command, store storage.Storage, document string, limit int) error {
	sections, err := store.FindSections(cmd.Context(), document, limit)
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no stored sections for %s\n", document)
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REPORT\tCREATED\tPAGE\tRANK\tTITLE")
	for _, ss := range sections {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			ss.ReportID,
			ss.CreatedAt.Local().Format(time.DateTime),
			ss.PageNumber,
			ss.ImportanceRank,
			clip(ss.SectionTitle, 50),
		)
	}
	return tw.Flush()
}

func showCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			store, err := a.requireStore()
			if err != nil {
				return err
			}

			rec, err := store.GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output != "" {
				if err := report.WriteFile(output, rec.Report); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[ok] JSON saved to %s\n", output)
				return nil
			}
			return report.Encode(cmd.OutOrStdout(), rec.Report)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to this file instead of stdout")

	return cmd
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
