// Package llm provides the classification capabilities biascheck can call:
// Anthropic's Messages API and a local Ollama server.
package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/untoldecay/biascheck/internal/classify"
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

var (
	// ErrAPIKeyRequired is returned when an API key is needed but not provided.
	ErrAPIKeyRequired = errors.New("API key required")
	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrEmptyResponse is returned when a provider answers without any text.
	ErrEmptyResponse = errors.New("unexpected response format")
)

// Config carries everything a provider needs. It is passed explicitly so tests
// can point a provider at a fake server.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int64
}

// Client is a classification capability with a model identity.
type Client interface {
	classify.Classifier
	Model() string
}

// New builds the client for cfg.Provider.
func New(cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderAnthropic:
		return NewAnthropicClient(cfg)
	case ProviderOllama:
		return NewOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownProvider, cfg.Provider, ProviderAnthropic, ProviderOllama)
	}
}
