package oracle

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
)

// Settings selects and configures a model backend.
type Settings struct {
	Provider      string
	Model         string
	APIKey        string
	OllamaBaseURL string
}

func Providers() []string {
	return []string{ProviderOllama, ProviderGemini, ProviderClaude, ProviderOpenAI}
}

// NormalizeProvider lowercases the name; empty means ollama.
func NormalizeProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProviderOllama
	}
	return name
}

// ModelFor returns the configured model or the provider's default.
func (s Settings) ModelFor() string {
	if m := strings.TrimSpace(s.Model); m != "" {
		return m
	}
	switch NormalizeProvider(s.Provider) {
	case ProviderGemini:
		return DefaultGeminiModel
	case ProviderClaude:
		return DefaultClaudeModel
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderOllama:
		return DefaultOllamaModel
	}
	return ""
}

// NewGenerator builds the backend named by settings.Provider.
func NewGenerator(ctx context.Context, settings Settings) (Generator, error) {
	switch provider := NormalizeProvider(settings.Provider); provider {
	case ProviderOllama:
		return NewOllama(settings.OllamaBaseURL, settings.Model)
	case ProviderGemini:
		return NewGemini(ctx, settings.APIKey, settings.Model)
	case ProviderClaude:
		return NewClaude(settings.APIKey, settings.Model)
	case ProviderOpenAI:
		return NewOpenAI(settings.APIKey, settings.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q (use %s)", provider, strings.Join(Providers(), "/"))
	}
}
