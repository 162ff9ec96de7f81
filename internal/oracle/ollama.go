package oracle

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultOllamaModel   = "llama3"
	DefaultOllamaBaseURL = "http://localhost:11434"

	ollamaTimeout = 5 * time.Minute
)

// Ollama generates text with a local Ollama server.
type Ollama struct {
	client  *api.Client
	baseURL string
	model   string
}

func NewOllama(baseURL, model string) (*Ollama, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid ollama base url %q", baseURL)
	}
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultOllamaModel
	}
	return &Ollama{
		client:  api.NewClient(base, &http.Client{Timeout: ollamaTimeout}),
		baseURL: baseURL,
		model:   model,
	}, nil
}

func (o *Ollama) GenerateContent(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
	}

	var out strings.Builder
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return out.String(), nil
}

func (o *Ollama) Model() string {
	return o.model
}
