package classify

// DefaultPrefix is the instruction placed in front of every sentence.
const DefaultPrefix = "Does this sentence have gender bias? Answer only \"Yes\" or \"No.\"\n"

// Request is the full prompt sent for one sentence.
type Request string

// BuildRequest concatenates the instruction prefix and the sentence. The text is
// never truncated, so the result always ends with text.
func BuildRequest(text, prefix string) Request {
	return Request(prefix + text)
}
