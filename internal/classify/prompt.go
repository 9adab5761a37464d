package classify

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
)

// ErrInvalidPrompt is returned when a prompt file cannot be used to build requests.
var ErrInvalidPrompt = errors.New("invalid prompt")

// Prompt is the instruction and vocabulary used for a classification run.
//
// A prompt file is TOML:
//
//	instruction = 'Is this sentence toxic? Answer only "{{.Yes}}" or "{{.No}}."'
//	affirmative = ["Yes", "Toxic"]
//	negative    = ["No", "Clean"]
//
// The instruction is a text/template rendered with the first token of each list.
// A newline is appended when the rendered instruction does not end with one.
type Prompt struct {
	Instruction string `toml:"instruction"`
	Vocabulary
}

// DefaultPrompt is the gender-bias question.
func DefaultPrompt() Prompt {
	return Prompt{Instruction: DefaultPrefix, Vocabulary: DefaultVocabulary}
}

// LoadPrompt reads a prompt file. Missing vocabularies fall back to DefaultVocabulary.
func LoadPrompt(path string) (Prompt, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied prompt file
	if err != nil {
		return Prompt{}, fmt.Errorf("reading prompt file: %w", err)
	}
	return ParsePrompt(string(data))
}

// ParsePrompt decodes the TOML prompt format described on Prompt.
func ParsePrompt(data string) (Prompt, error) {
	var p Prompt
	md, err := toml.Decode(data, &p)
	if err != nil {
		return Prompt{}, fmt.Errorf("%w: %v", ErrInvalidPrompt, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Prompt{}, fmt.Errorf("%w: unknown key %q", ErrInvalidPrompt, undecoded[0].String())
	}
	if strings.TrimSpace(p.Instruction) == "" {
		return Prompt{}, fmt.Errorf("%w: instruction is required", ErrInvalidPrompt)
	}
	if len(p.Affirmative) == 0 {
		p.Affirmative = DefaultVocabulary.Affirmative
	}
	if len(p.Negative) == 0 {
		p.Negative = DefaultVocabulary.Negative
	}
	for _, a := range p.Affirmative {
		for _, n := range p.Negative {
			if a == n {
				return Prompt{}, fmt.Errorf("%w: token %q is both affirmative and negative", ErrInvalidPrompt, a)
			}
		}
	}
	return p, nil
}

type promptData struct {
	Yes string
	No  string
}

// Prefix renders the instruction into the string placed before every sentence.
func (p Prompt) Prefix() (string, error) {
	tmpl, err := template.New("instruction").Parse(p.Instruction)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPrompt, err)
	}
	yes, no := p.Tokens()
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Yes: yes, No: no}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPrompt, err)
	}
	prefix := buf.String()
	if !strings.HasSuffix(prefix, "\n") {
		prefix += "\n"
	}
	return prefix, nil
}
