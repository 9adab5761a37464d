package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/untoldecay/biascheck/internal/audit"
	"github.com/untoldecay/biascheck/internal/classify"
	"github.com/untoldecay/biascheck/internal/config"
	"github.com/untoldecay/biascheck/internal/debug"
	"github.com/untoldecay/biascheck/internal/llm"
	"github.com/untoldecay/biascheck/internal/table"
	"github.com/untoldecay/biascheck/internal/ui"
	"gopkg.in/yaml.v3"
)

type classifyOptions struct {
	yes   bool
	watch bool
}

func newClassifyCmd(a *app) *cobra.Command {
	opts := &classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Label every sentence of a table as biased or not",
		Long: `Label every sentence of a table as biased or not.

Each non-empty value of the input column is sent to the model as one request,
prefixed with the instruction from --prompt-file (or the built-in gender-bias
question). Responses are parsed into 1 (yes), 0 (no) or "unknown".

Files written:
  --output        sentence<TAB>new_label, one row per labelled sentence
  --responses     raw model responses, one per line, in call order
  --interactions  optional JSONL log of every call, failed ones included

Examples:
  biascheck classify -i aggregate_data.tsv -o aggregate_data_checked.tsv
  biascheck classify --provider ollama --model llama3.2:3b --yes
  biascheck classify --prompt-file toxicity.toml --summary-file run.yaml
  biascheck classify --watch                # re-run whenever the input changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.watch {
				return a.watchClassify(cmd.Context(), opts)
			}
			_, err := a.runClassify(cmd.Context(), opts)
			return err
		},
	}

	f := cmd.Flags()
	f.StringP("input", "i", "aggregate_data.tsv", "Input table (.tsv, .csv or .xlsx)")
	f.StringP("output", "o", "aggregate_data_checked.tsv", "Output table")
	f.String("responses", "array_data.txt", "Raw response log (empty to disable)")
	f.String("interactions", "", "JSONL interaction log to append to")
	f.String("column", table.DefaultColumn, "Input column holding the sentences")
	f.String("provider", llm.ProviderAnthropic, "Model provider: anthropic or ollama")
	f.String("model", "", "Model name (provider default when empty)")
	f.String("base-url", "", "Override the provider API base URL")
	f.Int64("max-tokens", 16, "Maximum tokens per response")
	f.String("prompt-file", "", "TOML prompt file with instruction and accepted tokens")
	f.Duration("timeout", 0, "Per-request timeout (0 waits indefinitely)")
	f.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	f.String("summary-file", "", "Write a YAML run summary to this file")
	f.String("actor", "", "Actor recorded in the interaction log")
	f.BoolVarP(&opts.yes, "yes", "y", false, "Do not ask for confirmation")
	f.BoolVar(&opts.watch, "watch", false, "Re-run whenever the input file changes")
	return cmd
}

// runClassify performs one full run: extract, classify, write.
func (a *app) runClassify(ctx context.Context, opts *classifyOptions) (*ui.Summary, error) {
	input := config.GetString("input")
	output := config.GetString("output")
	column := config.GetString("column")

	// Structural problems are fatal before any request is sent.
	texts, err := table.ExtractTextsFile(input, column)
	if err != nil {
		return nil, err
	}
	debug.Logf("Debug: extracted %d sentences from %s\n", len(texts), input)

	prompt := classify.DefaultPrompt()
	if path := config.GetString("prompt-file"); path != "" {
		if prompt, err = classify.LoadPrompt(path); err != nil {
			return nil, err
		}
	}
	promptOpt, err := classify.WithPrompt(prompt)
	if err != nil {
		return nil, err
	}

	llmCfg := llm.Config{
		Provider:  config.GetString("provider"),
		Model:     config.GetString("model"),
		APIKey:    config.GetString("api-key"),
		BaseURL:   config.GetString("base-url"),
		MaxTokens: int64(config.GetInt("max-tokens")),
	}
	client, err := a.newClient(llmCfg)
	if err != nil {
		return nil, err
	}

	if !opts.yes && len(texts) > 0 {
		ok, err := a.confirm(len(texts), client.Model())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("canceled")
		}
	}

	lock, err := lockOutput(output)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	pipelineOpts := []classify.Option{
		promptOpt,
		classify.WithLogger(a.logger.Logger),
		classify.WithCallTimeout(config.GetDuration("timeout")),
	}

	if path := config.GetString("responses"); path != "" {
		responses, err := audit.CreateResponseLog(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = responses.Close() }()
		pipelineOpts = append(pipelineOpts, classify.WithResponseLog(responses))
	}

	var runID string
	if path := config.GetString("interactions"); path != "" {
		interactions, err := audit.OpenInteractionLog(path, client.Model(), config.GetString("actor"))
		if err != nil {
			return nil, err
		}
		runID = interactions.RunID()
		pipelineOpts = append(pipelineOpts, classify.WithInteractionLog(interactions))
	}

	var reg *prometheus.Registry
	if config.GetString("metrics-file") != "" {
		reg = prometheus.NewRegistry()
		pipelineOpts = append(pipelineOpts, classify.WithMetrics(classify.NewMetrics(reg)))
	}

	showProgress := !a.jsonOutput && ui.IsTerminal()
	if showProgress {
		pipelineOpts = append(pipelineOpts, classify.WithProgress(func(done, total int) {
			fmt.Fprintf(a.stderr, "\r%s", ui.MutedStyle.Render(fmt.Sprintf("classified %d/%d", done, total)))
		}))
	}

	a.logger.Info("starting classification run", "input", input, "sentences", len(texts), "model", client.Model())
	res, runErr := classify.New(client, pipelineOpts...).Run(ctx, texts)
	if showProgress {
		fmt.Fprintln(a.stderr)
	}

	summary := &ui.Summary{
		RunID:       runID,
		Provider:    providerName(llmCfg.Provider),
		Model:       client.Model(),
		Input:       input,
		Output:      output,
		Responses:   config.GetString("responses"),
		Total:       len(texts),
		Classified:  len(res.Records),
		Skipped:     res.Skipped,
		Labels:      map[string]int{},
		Duration:    res.Duration,
		Interrupted: runErr != nil,
	}
	for label, n := range res.Counts {
		summary.Labels[label.String()] = n
	}

	// An interrupted run still keeps what it labelled.
	if err := table.WriteTableFile(output, res.Records); err != nil {
		if runErr != nil {
			return summary, runErr
		}
		return summary, err
	}
	a.logger.Info("classification run finished", "output", output, "labelled", len(res.Records), "skipped", res.Skipped)

	if reg != nil {
		if err := prometheus.WriteToTextfile(config.GetString("metrics-file"), reg); err != nil {
			return summary, fmt.Errorf("writing metrics file: %w", err)
		}
	}
	if path := config.GetString("summary-file"); path != "" {
		if err := writeSummaryFile(path, summary); err != nil {
			return summary, err
		}
	}

	if a.jsonOutput {
		if err := a.outputJSON(summary); err != nil {
			return summary, err
		}
	} else {
		fmt.Fprint(a.stdout, ui.RenderSummary(*summary))
	}
	return summary, runErr
}

// lockOutput stops two runs from writing the same output table.
func lockOutput(output string) (*flock.Flock, error) {
	lockPath := output + ".lock"
	if dir := filepath.Dir(lockPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring output lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another classification run is writing %s", output)
	}
	return lock, nil
}

func writeSummaryFile(path string, s *ui.Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding run summary: %w", err)
	}
	// nolint:gosec // summary is meant to be shared
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing run summary: %w", err)
	}
	return nil
}

func providerName(p string) string {
	if p = strings.ToLower(strings.TrimSpace(p)); p == "" {
		return llm.ProviderAnthropic
	}
	return p
}
