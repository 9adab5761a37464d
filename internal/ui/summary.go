package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Summary describes a finished classification run. It is also written as the
// YAML run summary file.
type Summary struct {
	RunID       string         `yaml:"run_id,omitempty" json:"run_id,omitempty"`
	Provider    string         `yaml:"provider" json:"provider"`
	Model       string         `yaml:"model" json:"model"`
	Input       string         `yaml:"input" json:"input"`
	Output      string         `yaml:"output" json:"output"`
	Responses   string         `yaml:"responses,omitempty" json:"responses,omitempty"`
	Total       int            `yaml:"total" json:"total"`
	Classified  int            `yaml:"classified" json:"classified"`
	Skipped     int            `yaml:"skipped" json:"skipped"`
	Labels      map[string]int `yaml:"labels" json:"labels"`
	Duration    time.Duration  `yaml:"duration" json:"duration"`
	Interrupted bool           `yaml:"interrupted,omitempty" json:"interrupted,omitempty"`
}

var labelOrder = []string{"affirmative", "negative", "unknown"}

// RenderSummary renders the run summary as a short header plus a label table.
func RenderSummary(s Summary) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Classification summary"))
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%s → %s (%s/%s, %s)",
		s.Input, s.Output, s.Provider, s.Model, s.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	t := NewSummaryTable("label", "count", "share")
	for _, l := range labelOrder {
		n := s.Labels[l]
		t.Row(l, strconv.Itoa(n), share(n, s.Classified))
	}
	b.WriteString(t.Render())
	b.WriteString("\n")

	line := fmt.Sprintf("%d of %d sentences labelled", s.Classified, s.Total)
	switch {
	case s.Interrupted:
		b.WriteString(RenderWarn(line + ", run interrupted"))
	case s.Skipped > 0:
		b.WriteString(RenderWarn(fmt.Sprintf("%s, %d skipped after failed calls", line, s.Skipped)))
	default:
		b.WriteString(RenderPass(line))
	}
	b.WriteString("\n")
	return b.String()
}

func share(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
}
