package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/untoldecay/biascheck/internal/table"
	"github.com/untoldecay/biascheck/internal/ui"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		sample int
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "report <labelled-table>",
		Short: "Show the label distribution of a classified table",
		Long: `Show the label distribution of a table written by "biascheck classify",
with a few example sentences per label.

Examples:
  biascheck report aggregate_data_checked.tsv
  biascheck report aggregate_data_checked.tsv --sample 10 --markdown > report.md
  biascheck report aggregate_data_checked.tsv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			records, err := table.ReadLabelled(args[0])
			if err != nil {
				return err
			}

			if a.jsonOutput {
				counts := map[string]int{}
				for _, r := range records {
					counts[r.Label.String()]++
				}
				return a.outputJSON(map[string]any{
					"table":  args[0],
					"total":  len(records),
					"labels": counts,
				})
			}

			md := ui.BuildReport(filepath.Base(args[0]), records, sample)
			if raw {
				_, err := fmt.Fprint(a.stdout, md)
				return err
			}
			out, err := ui.RenderMarkdown(md, ui.GetWidth())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(a.stdout, out)
			return err
		},
	}
	cmd.Flags().IntVar(&sample, "sample", 3, "Example sentences shown per label")
	cmd.Flags().BoolVar(&raw, "markdown", false, "Print the report as raw markdown")
	return cmd
}
