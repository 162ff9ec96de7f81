package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultClaudeModel = "claude-sonnet-4-20250514"

	claudeMaxTokens = 4096
)

// Claude generates text through the Anthropic Messages API.
type Claude struct {
	client anthropic.Client
	model  string
}

func NewClaude(apiKey, model string, opts ...option.RequestOption) (*Claude, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("claude api key is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultClaudeModel
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Claude{client: anthropic.NewClient(opts...), model: model}, nil
}

func (c *Claude) GenerateContent(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: claudeMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, strings.TrimSpace(block.Text))
		}
	}
	if len(parts) == 0 {
		return "", errors.New("claude api returned empty response")
	}
	return strings.Join(parts, "\n"), nil
}

func (c *Claude) Model() string {
	return c.model
}
