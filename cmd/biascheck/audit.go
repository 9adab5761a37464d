package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/untoldecay/biascheck/internal/audit"
	"github.com/untoldecay/biascheck/internal/config"
	"github.com/untoldecay/biascheck/internal/ui"
)

type runStats struct {
	RunID    string         `json:"run_id"`
	Model    string         `json:"model"`
	Calls    int            `json:"calls"`
	Failures int            `json:"failures"`
	Labels   map[string]int `json:"labels"`
	Errors   []string       `json:"errors,omitempty"`
}

func newAuditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [interactions.jsonl]",
		Short: "Summarize the interaction log, run by run",
		Long: `Summarize a JSONL interaction log written with "classify --interactions".

Each run is listed with its call count, failures and label distribution, so
failed items can be found and re-run by hand.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := config.GetString("interactions")
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no interaction log given (pass a path or set interactions in config)")
			}

			entries, err := audit.ReadEntries(path)
			if err != nil {
				return err
			}
			runs := summarizeRuns(entries)

			if a.jsonOutput {
				return a.outputJSON(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(a.stdout, ui.MutedStyle.Render("interaction log is empty"))
				return nil
			}
			t := ui.NewSummaryTable("run", "model", "calls", "failed", "yes", "no", "unknown")
			for _, r := range runs {
				t.Row(shortID(r.RunID), r.Model,
					fmt.Sprint(r.Calls), fmt.Sprint(r.Failures),
					fmt.Sprint(r.Labels["affirmative"]), fmt.Sprint(r.Labels["negative"]), fmt.Sprint(r.Labels["unknown"]))
			}
			fmt.Fprintln(a.stdout, t.Render())
			for _, r := range runs {
				for _, e := range r.Errors {
					fmt.Fprintln(a.stdout, ui.RenderFail(shortID(r.RunID)+" "+e))
				}
			}
			return nil
		},
	}
	return cmd
}

// summarizeRuns groups entries by run id, keeping the order in which runs
// first appear in the log.
func summarizeRuns(entries []audit.Entry) []*runStats {
	byID := map[string]*runStats{}
	var order []string
	for _, e := range entries {
		if e.Kind != "llm_call" {
			continue
		}
		r, ok := byID[e.RunID]
		if !ok {
			r = &runStats{RunID: e.RunID, Model: e.Model, Labels: map[string]int{}}
			byID[e.RunID] = r
			order = append(order, e.RunID)
		}
		r.Calls++
		if e.Error != "" {
			r.Failures++
			r.Errors = append(r.Errors, fmt.Sprintf("index %d: %s", e.Index, e.Error))
			continue
		}
		r.Labels[e.Label]++
	}

	runs := make([]*runStats, 0, len(order))
	for _, id := range order {
		r := byID[id]
		sort.Strings(r.Errors)
		runs = append(runs, r)
	}
	return runs
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
