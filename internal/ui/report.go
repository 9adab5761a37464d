package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/untoldecay/biascheck/internal/classify"
)

// BuildReport produces a markdown report of a labelled table: label
// distribution and up to sample sentences per label.
func BuildReport(title string, records []classify.OutputRecord, sample int) string {
	counts := map[classify.Label]int{}
	examples := map[classify.Label][]string{}
	for _, r := range records {
		counts[r.Label]++
		if len(examples[r.Label]) < sample {
			examples[r.Label] = append(examples[r.Label], r.Sentence)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%d labelled sentences.\n\n", len(records))
	b.WriteString("| Label | Count | Share |\n|---|---:|---:|\n")
	for _, l := range []classify.Label{classify.Affirmative, classify.Negative, classify.Unknown} {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", l, counts[l], share(counts[l], len(records)))
	}
	for _, l := range []classify.Label{classify.Affirmative, classify.Negative, classify.Unknown} {
		if len(examples[l]) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", l)
		for _, s := range examples[l] {
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(s))
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// RenderMarkdown renders markdown for the terminal. Without color the
// "notty" style is used so output is plain text.
func RenderMarkdown(md string, width int) (string, error) {
	style := glamour.WithStandardStyle("notty")
	if ShouldUseColor() {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}
