package classify

import "strings"

// Label is the outcome of classifying one sentence.
type Label int

const (
	// Unknown is assigned when the response matched neither accepted token.
	Unknown Label = iota
	Affirmative
	Negative
)

// String returns the human-readable label name.
func (l Label) String() string {
	switch l {
	case Affirmative:
		return "affirmative"
	case Negative:
		return "negative"
	default:
		return "unknown"
	}
}

// Cell returns the value written to the new_label column.
func (l Label) Cell() string {
	switch l {
	case Affirmative:
		return "1"
	case Negative:
		return "0"
	default:
		return "unknown"
	}
}

// ParseCell is the inverse of Cell. Unrecognised cells map to Unknown.
func ParseCell(s string) Label {
	switch strings.TrimSpace(s) {
	case "1":
		return Affirmative
	case "0":
		return Negative
	default:
		return Unknown
	}
}

// Vocabulary lists the response tokens accepted for each label.
type Vocabulary struct {
	Affirmative []string `toml:"affirmative"`
	Negative    []string `toml:"negative"`
}

// DefaultVocabulary accepts the tokens named in DefaultPrefix.
var DefaultVocabulary = Vocabulary{
	Affirmative: []string{"Yes"},
	Negative:    []string{"No"},
}

// Parse maps a raw response to a Label. Matching is case-sensitive and exact,
// except that a single trailing period is tolerated. It never fails.
func (v Vocabulary) Parse(response string) Label {
	if match(v.Affirmative, response) {
		return Affirmative
	}
	if match(v.Negative, response) {
		return Negative
	}
	return Unknown
}

// Tokens returns the first accepted token for each label, used when rendering prompts.
func (v Vocabulary) Tokens() (yes, no string) {
	if len(v.Affirmative) > 0 {
		yes = v.Affirmative[0]
	}
	if len(v.Negative) > 0 {
		no = v.Negative[0]
	}
	return yes, no
}

func match(tokens []string, response string) bool {
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if response == t || response == t+"." {
			return true
		}
	}
	return false
}

// ParseLabel parses a response against DefaultVocabulary.
func ParseLabel(response string) Label {
	return DefaultVocabulary.Parse(response)
}
