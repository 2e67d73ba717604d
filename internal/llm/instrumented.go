package llm

import (
	"context"
	"time"

	"startiq/internal/logger"
	"startiq/internal/observability"
)

// InstrumentedCompleter records latency and outcome of every completion in
// logs, Prometheus and PostHog.
type InstrumentedCompleter struct {
	next     Completer
	provider string
	model    string
	metrics  *observability.Collector
	posthog  *observability.PostHogClient
}

// NewInstrumentedCompleter wraps next. metrics and posthog may be nil.
func NewInstrumentedCompleter(next Completer, provider, model string, metrics *observability.Collector, posthog *observability.PostHogClient) *InstrumentedCompleter {
	return &InstrumentedCompleter{
		next:     next,
		provider: provider,
		model:    model,
		metrics:  metrics,
		posthog:  posthog,
	}
}

// Complete calls the wrapped completer and records the call.
func (ic *InstrumentedCompleter) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	startTime := time.Now()

	result, err := ic.next.Complete(ctx, prompt, opts)

	latency := time.Since(startTime)
	ic.metrics.ObserveLLMCall(ic.provider, latency, err)
	_ = ic.posthog.TrackLLMCall(ctx, ic.provider, ic.model, latency.Milliseconds(), err == nil)

	if err != nil {
		logger.Error("LLM completion failed", err,
			"provider", ic.provider,
			"model", ic.model,
			"latency_ms", latency.Milliseconds())
		return "", err
	}

	logger.Debug("LLM completion",
		"provider", ic.provider,
		"model", ic.model,
		"temperature", opts.Temperature,
		"max_tokens", opts.MaxTokens,
		"prompt_chars", len(prompt),
		"completion_chars", len(result),
		"latency_ms", latency.Milliseconds())

	return result, nil
}
