package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"github.com/untoldecay/biascheck/internal/classify"
)

const defaultOllamaModel = "llama3.2:3b"

// OllamaClient sends each request to /api/generate without streaming.
type OllamaClient struct {
	client *api.Client
	model  string
}

// NewOllamaClient uses cfg.BaseURL when set, otherwise OLLAMA_HOST.
func NewOllamaClient(cfg Config) (*OllamaClient, error) {
	var client *api.Client
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama base url: %w", err)
		}
		client = api.NewClient(u, http.DefaultClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
	}

	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaClient{client: client, model: model}, nil
}

// Model returns the local model name.
func (o *OllamaClient) Model() string { return o.model }

// Classify implements classify.Classifier.
func (o *OllamaClient) Classify(ctx context.Context, req classify.Request) (string, error) {
	stream := false
	gen := &api.GenerateRequest{
		Model:  o.model,
		Prompt: string(req),
		Stream: &stream,
	}

	var resp string
	err := o.client.Generate(ctx, gen, func(r api.GenerateResponse) error {
		resp += r.Response
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}
	return resp, nil
}
