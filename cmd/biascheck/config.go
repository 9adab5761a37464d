package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/untoldecay/biascheck/internal/config"
	"github.com/untoldecay/biascheck/internal/ui"
)

// configEntry is one effective setting and where it came from.
type configEntry struct {
	Key    string              `json:"key"`
	Value  any                 `json:"value"`
	Source config.ConfigSource `json:"source"`
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration",
		Long: `Show the settings a run would use and where each one comes from.

Sources, highest first: flag, environment (BIASCHECK_*), config file, default.

Examples:
  biascheck config list
  biascheck config get output
  BIASCHECK_MODEL=claude-3-5-sonnet-latest biascheck config get model`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every setting with its source",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			entries := effectiveConfig()
			if a.jsonOutput {
				return a.outputJSON(map[string]any{
					"config_file": config.ConfigFileUsed(),
					"settings":    entries,
				})
			}

			file := config.ConfigFileUsed()
			if file == "" {
				file = "(none)"
			}
			fmt.Fprintln(a.stdout, ui.MutedStyle.Render("config file: "+file))
			t := ui.NewSummaryTable("key", "value", "source")
			for _, e := range entries {
				t.Row(e.Key, fmt.Sprint(e.Value), string(e.Source))
			}
			fmt.Fprintln(a.stdout, t.Render())
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			for _, e := range effectiveConfig() {
				if e.Key != args[0] {
					continue
				}
				if a.jsonOutput {
					return a.outputJSON(e)
				}
				_, err := fmt.Fprintf(a.stdout, "%v\n", e.Value)
				return err
			}
			return fmt.Errorf("unknown config key %q", args[0])
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

// effectiveConfig flattens the settings into dotted keys, sorted, with the
// API key masked.
func effectiveConfig() []configEntry {
	var entries []configEntry
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, val := range m {
			key := prefix + k
			if sub, ok := val.(map[string]any); ok {
				walk(key+".", sub)
				continue
			}
			if key == "api-key" {
				val = maskSecret(fmt.Sprint(val))
			}
			entries = append(entries, configEntry{Key: key, Value: val, Source: config.GetValueSource(key)})
		}
	}
	walk("", config.AllSettings())
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}
