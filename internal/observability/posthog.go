// Package observability provides product analytics and Prometheus metrics.
package observability

import (
	"context"
	"fmt"
	"log/slog"

	"startiq/internal/config"

	"github.com/posthog/posthog-go"
)

// systemDistinctID is used for events not tied to a user.
const systemDistinctID = "system"

// PostHogClient wraps the PostHog SDK for product analytics.
// A nil or disabled client accepts every call and sends nothing.
type PostHogClient struct {
	client  posthog.Client
	enabled bool
	log     *slog.Logger
}

// EventProperties contains properties for an event
type EventProperties map[string]interface{}

// NewPostHogClient creates a PostHog client. Analytics are disabled when no
// API key is configured.
func NewPostHogClient(cfg config.PostHog) (*PostHogClient, error) {
	if cfg.APIKey == "" {
		return &PostHogClient{
			enabled: false,
			log:     slog.Default(),
		}, nil
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PostHog client: %w", err)
	}

	return &PostHogClient{
		client:  client,
		enabled: true,
		log:     slog.Default(),
	}, nil
}

// IsEnabled returns whether PostHog tracking is enabled
func (p *PostHogClient) IsEnabled() bool {
	return p != nil && p.enabled
}

// Capture sends an event to PostHog
func (p *PostHogClient) Capture(ctx context.Context, distinctID string, event string, properties EventProperties) error {
	if !p.IsEnabled() {
		return nil
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}

	if err := p.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: props,
	}); err != nil {
		p.log.Warn("posthog enqueue failed", "event", event, "error", err.Error())
		return err
	}
	return nil
}

// TrackInsightGenerated tracks an insight lookup for a startup or investor.
func (p *PostHogClient) TrackInsightGenerated(ctx context.Context, kind, entityID string, cached bool, durationMs int64) error {
	return p.Capture(ctx, systemDistinctID, "insight_generated", EventProperties{
		"kind":        kind, // "startup", "investor"
		"entity_id":   entityID,
		"cached":      cached,
		"duration_ms": durationMs,
	})
}

// TrackDealNoteGenerated tracks a deal note request.
func (p *PostHogClient) TrackDealNoteGenerated(ctx context.Context, investorID, startupID, verdict string, cached bool) error {
	return p.Capture(ctx, investorID, "deal_note_generated", EventProperties{
		"startup_id": startupID,
		"verdict":    verdict,
		"cached":     cached,
	})
}

// TrackStartupScored tracks a scoring run. A nil score means scoring failed.
func (p *PostHogClient) TrackStartupScored(ctx context.Context, startupID string, score *int) error {
	props := EventProperties{
		"startup_id": startupID,
		"scored":     score != nil,
	}
	if score != nil {
		props["score"] = *score
	}
	return p.Capture(ctx, systemDistinctID, "startup_scored", props)
}

// TrackUserRegistered tracks a new founder or investor.
func (p *PostHogClient) TrackUserRegistered(ctx context.Context, uid, role string) error {
	return p.Capture(ctx, uid, "user_registered", EventProperties{
		"role": role,
	})
}

// TrackLLMCall tracks LLM API calls for cost and performance monitoring
func (p *PostHogClient) TrackLLMCall(ctx context.Context, provider, model string, latencyMs int64, successful bool) error {
	return p.Capture(ctx, systemDistinctID, "llm_call", EventProperties{
		"provider":   provider,
		"model":      model,
		"latency_ms": latencyMs,
		"successful": successful,
	})
}

// TrackError tracks when an error occurs
func (p *PostHogClient) TrackError(ctx context.Context, errorType string, errorMessage string, component string) error {
	return p.Capture(ctx, systemDistinctID, "error_occurred", EventProperties{
		"error_type":    errorType,
		"error_message": errorMessage,
		"component":     component,
	})
}

// Shutdown flushes pending events and closes the client
func (p *PostHogClient) Shutdown(ctx context.Context) error {
	if !p.IsEnabled() {
		return nil
	}

	return p.client.Close()
}
