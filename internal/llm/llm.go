package llm

import (
	"context"
	"fmt"
	"time"

	"startiq/internal/config"
	"startiq/internal/core"
	"startiq/internal/observability"
)

// SystemPrompt is sent as the system message with every completion.
const SystemPrompt = "You are a venture analyst providing structured, professional, and exhaustive critiques of startups for investors."

const (
	// DefaultTemperature is used for free-form analysis.
	DefaultTemperature = 0.7
	// DefaultMaxTokens bounds free-form analysis.
	DefaultMaxTokens = 1500
	// FlagMaxTokens bounds flag extraction completions.
	FlagMaxTokens = 300

	defaultTimeout = 60 * time.Second
)

// Options contains options for a single completion
type Options struct {
	Temperature float64 // sampling temperature, sent even when zero
	MaxTokens   int     // completion budget
}

// DefaultOptions returns the options used for analysis and deal-note steps.
func DefaultOptions() Options {
	return Options{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}
}

// FlagOptions returns deterministic, short options for flag extraction.
func FlagOptions() Options {
	return Options{Temperature: 0, MaxTokens: FlagMaxTokens}
}

// OptionsFromConfig returns the configured analysis options, falling back to
// DefaultOptions for unset values.
func OptionsFromConfig(cfg config.AI) Options {
	opts := DefaultOptions()
	if cfg.Temperature != nil {
		opts.Temperature = *cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		opts.MaxTokens = cfg.MaxTokens
	}
	return opts
}

// Completer turns a prompt into completion text.
// Implementations return "" when the model produced no content and wrap
// transport failures in core.UpstreamError.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string, opts Options) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	return f(ctx, prompt, opts)
}

// Provider is a Completer backed by a remote model.
type Provider interface {
	Completer
	Name() string
	Model() string
}

// NewFromConfig creates the provider selected by cfg.Provider.
func NewFromConfig(ctx context.Context, cfg config.AI) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter, "":
		return NewOpenRouterClient(cfg.OpenRouter)
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.Gemini)
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.Anthropic)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}

// New builds the full completion stack from configuration: the selected
// provider, wrapped in a circuit breaker when enabled, then instrumented.
func New(ctx context.Context, cfg *config.Config, metrics *observability.Collector, posthog *observability.PostHogClient) (Completer, error) {
	provider, err := NewFromConfig(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}

	var completer Completer = provider
	if cfg.Breaker.Enabled {
		completer = NewBreakerCompleter(completer, BreakerSettingsFromConfig(provider.Name(), cfg.Breaker))
	}

	return NewInstrumentedCompleter(completer, provider.Name(), provider.Model(), metrics, posthog), nil
}

// withTimeout bounds a single provider call.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// upstream wraps a provider failure.
func upstream(provider string, err error) error {
	return core.NewUpstreamError("llm", fmt.Errorf("%s: %w", provider, err))
}
