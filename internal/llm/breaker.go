package llm

import (
	"context"
	"errors"
	"time"

	"startiq/internal/config"
	"startiq/internal/logger"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures a BreakerCompleter.
type BreakerSettings struct {
	Name             string
	MaxRequests      uint32        // requests allowed while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // how long the breaker stays open
	FailureThreshold uint32        // consecutive failures that open the breaker
}

// DefaultBreakerSettings returns conservative settings for an LLM provider.
func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:             name,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerSettingsFromConfig maps the breaker config section onto settings.
func BreakerSettingsFromConfig(name string, cfg config.Breaker) BreakerSettings {
	s := DefaultBreakerSettings(name)
	if cfg.MaxRequests > 0 {
		s.MaxRequests = cfg.MaxRequests
	}
	if cfg.FailureThreshold > 0 {
		s.FailureThreshold = cfg.FailureThreshold
	}
	s.Interval = config.ParseDuration(cfg.Interval, s.Interval)
	s.Timeout = config.ParseDuration(cfg.Timeout, s.Timeout)
	return s
}

// BreakerCompleter fails fast while the wrapped provider keeps failing.
// It never retries.
type BreakerCompleter struct {
	next Completer
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerCompleter wraps next in a circuit breaker.
func NewBreakerCompleter(next Completer, settings BreakerSettings) *BreakerCompleter {
	threshold := settings.FailureThreshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("LLM circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// A caller cancelling its own request says nothing about the provider.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerCompleter{next: next, cb: cb}
}

// Complete runs the wrapped completion through the breaker. Rejections are
// reported as upstream errors.
func (b *BreakerCompleter) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, prompt, opts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", upstream(b.cb.Name(), err)
		}
		return "", err
	}

	text, _ := result.(string)
	return text, nil
}

// State reports the breaker state.
func (b *BreakerCompleter) State() gobreaker.State {
	return b.cb.State()
}
