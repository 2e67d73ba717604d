package llm

import (
	"context"
	"fmt"
	"time"

	"startiq/internal/config"

	"google.golang.org/genai"
)

// GeminiClient completes prompts with Google Gemini.
type GeminiClient struct {
	gClient *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a Gemini client using the Gemini API backend.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://makersuite.google.com/app/apikey")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		gClient: gClient,
		model:   cfg.Model,
		timeout: config.ParseDuration(cfg.Timeout, defaultTimeout),
	}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string { return config.ProviderGemini }

// Model returns the model identifier.
func (c *GeminiClient) Model() string { return c.model }

// Complete generates content with the system prompt as system instruction.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	temperature := float32(opts.Temperature)
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemPrompt}},
		},
		Temperature:     &temperature,
		MaxOutputTokens: int32(opts.MaxTokens),
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.model, contents, genConfig)
	if err != nil {
		return "", upstream(c.Name(), err)
	}

	return resp.Text(), nil
}
