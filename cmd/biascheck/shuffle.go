package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/untoldecay/biascheck/internal/table"
)

func newShuffleCmd(a *app) *cobra.Command {
	var (
		seed     uint64
		noHeader bool
	)
	cmd := &cobra.Command{
		Use:   "shuffle <input> <output>",
		Short: "Shuffle the rows of a table and number them",
		Long: `Shuffle the data rows of a tab-separated table and prepend an "id"
column numbered from 1 in the new order.

The header row stays on top unless --no-header is given, in which case every
row is shuffled and numbered.

Examples:
  biascheck shuffle sentences.tsv shuffled.tsv
  biascheck shuffle sentences.tsv shuffled.tsv --seed 42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := table.ReadFile(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

			var header []string
			rows := t.Rows
			if noHeader {
				rows = append([][]string{t.Header}, t.Rows...)
			} else {
				header = append([]string{"id"}, t.Header...)
			}

			f, err := os.Create(args[1]) // #nosec G304 -- user-supplied output path
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[1], err)
			}
			defer func() { _ = f.Close() }()
			if err := table.WriteRows(f, header, table.ShuffleAndNumber(rows, rnd)); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", args[1], err)
			}
			a.logger.Info("shuffled table", "input", args[0], "output", args[1], "rows", len(rows), "seed", seed)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (default: time based)")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Treat the first row as data")
	return cmd
}
