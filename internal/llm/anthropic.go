package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"startiq/internal/config"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient completes prompts with Anthropic's Messages API.
type AnthropicClient struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
}

// NewAnthropicClient creates an Anthropic client for the configured model.
func NewAnthropicClient(cfg config.AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required. Set ANTHROPIC_API_KEY environment variable or ai.anthropic.api_key in config file")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic model is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &AnthropicClient{
		client:  &client,
		model:   cfg.Model,
		timeout: config.ParseDuration(cfg.Timeout, defaultTimeout),
	}, nil
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string { return config.ProviderAnthropic }

// Model returns the model identifier.
func (c *AnthropicClient) Model() string { return c.model }

// Complete sends one user message and joins the returned text blocks.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(opts.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(opts.Temperature),
	})
	if err != nil {
		return "", upstream(c.Name(), err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
