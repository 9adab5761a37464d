package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/untoldecay/biascheck/internal/table"
)

func newAppendCmd(a *app) *cobra.Command {
	var startID int
	cmd := &cobra.Command{
		Use:   "append <input> <base> <output>",
		Short: "Append numbered rows from one table to another",
		Long: `Write <base> unchanged, a blank separator row, then the data rows of
<input> (its header dropped) with an id column counting up from --start-id.

Bytes that are not valid UTF-8 are dropped from both files.

Example:
  biascheck append new_batch.tsv aggregate_data.tsv combined.tsv --start-id 554`,
		Args: cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			extra, err := table.ReadFile(args[0])
			if err != nil {
				return err
			}
			base, err := os.ReadFile(args[1]) // #nosec G304 -- user-supplied base table
			if err != nil {
				return fmt.Errorf("reading base table: %w", err)
			}

			f, err := os.Create(args[2]) // #nosec G304 -- user-supplied output path
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[2], err)
			}
			defer func() { _ = f.Close() }()
			bw := bufio.NewWriter(f)
			if err := table.AppendNumbered(bw, base, extra, startID); err != nil {
				return err
			}
			if err := bw.Flush(); err != nil {
				return fmt.Errorf("writing %s: %w", args[2], err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", args[2], err)
			}
			a.logger.Info("appended table", "input", args[0], "base", args[1], "output", args[2],
				"rows", len(extra.Rows), "first_id", startID)
			return nil
		},
	}
	cmd.Flags().IntVar(&startID, "start-id", 554, "Id given to the first appended row")
	return cmd
}
