package llm

import (
	"context"
	"fmt"
	"time"

	"startiq/internal/config"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenRouterClient talks to any OpenAI-compatible chat completions endpoint,
// OpenRouter by default.
type OpenRouterClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenRouterClient creates a client for the configured endpoint and model.
func NewOpenRouterClient(cfg config.OpenRouterConfig) (*OpenRouterClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required. Set OPENROUTER_API_KEY environment variable or ai.openrouter.api_key in config file")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openrouter model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenRouterClient{
		client:  &client,
		model:   cfg.Model,
		timeout: config.ParseDuration(cfg.Timeout, defaultTimeout),
	}, nil
}

// Name returns the provider name.
func (c *OpenRouterClient) Name() string { return config.ProviderOpenRouter }

// Model returns the model identifier.
func (c *OpenRouterClient) Model() string { return c.model }

// Complete sends the system prompt and prompt as a chat completion.
func (c *OpenRouterClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(opts.Temperature),
		MaxTokens:   openai.Int(int64(opts.MaxTokens)),
	})
	if err != nil {
		return "", upstream(c.Name(), err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
