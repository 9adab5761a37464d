package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/untoldecay/biascheck/internal/config"
	"github.com/untoldecay/biascheck/internal/debug"
	"github.com/untoldecay/biascheck/internal/logging"
	"github.com/untoldecay/biascheck/internal/ui"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	deps
	stdout io.Writer
	stderr io.Writer

	configPath string
	jsonOutput bool
	verbose    bool

	logger *logging.Logger
}

func newRootCmd(stdout, stderr io.Writer, d deps) *cobra.Command {
	a := &app{deps: d, stdout: stdout, stderr: stderr, logger: logging.Discard()}

	root := &cobra.Command{
		Use:   "biascheck",
		Short: "Label sentences for gender bias with a language model",
		Long: `biascheck reads the "sentence" column of a table, asks a language model
whether each sentence has gender bias, and writes the sentence with its label.

Sentences are sent one at a time and in order. A sentence whose request fails
is logged and left out of the output; the run carries on with the next one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = a.logger.Close()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default: ./.biascheck/config.yaml)")
	pf.BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose/debug output")
	pf.String("log-file", "", "Write logs to this file, rotated by size")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(
		newClassifyCmd(a),
		newReportCmd(a),
		newAuditCmd(a),
		newConfigCmd(a),
		newShuffleCmd(a),
		newAppendCmd(a),
		newVersionCmd(a),
	)
	return root
}

// flagKeys maps flag names to config keys where the two differ.
var flagKeys = map[string]string{
	"log-file":  "log.file",
	"log-level": "log.level",
}

// setup loads configuration and binds every flag of cmd so that an explicit
// flag beats env vars, which beat the config file.
func (a *app) setup(cmd *cobra.Command) error {
	if a.verbose {
		debug.SetVerbose(true)
	}
	config.Reset()
	if err := config.Initialize(a.configPath); err != nil {
		return err
	}

	bind := func(name string) {
		key := name
		if k, ok := flagKeys[name]; ok {
			key = k
		}
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = config.BindPFlag(key, f)
		}
	}
	for _, name := range []string{"log-file", "log-level"} {
		bind(name)
	}
	for _, name := range configFlags {
		bind(name)
	}

	ui.ConfigureColor()

	level := config.GetString("log.level")
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		File:       config.GetString("log.file"),
		Level:      level,
		Format:     config.GetString("log.format"),
		MaxSizeMB:  config.GetInt("log.max-size-mb"),
		MaxBackups: config.GetInt("log.max-backups"),
		MaxAgeDays: config.GetInt("log.max-age-days"),
	}, a.stderr)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	a.logger = logger
	return nil
}

// configFlags are subcommand flags whose names match config keys.
var configFlags = []string{
	"input", "output", "responses", "interactions", "column",
	"provider", "model", "base-url", "max-tokens", "prompt-file", "timeout",
	"metrics-file", "summary-file", "actor",
}

func (a *app) outputJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
