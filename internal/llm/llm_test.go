package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"startiq/internal/config"
	"startiq/internal/core"
	"startiq/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
)

func TestOptions(t *testing.T) {
	def := DefaultOptions()
	if def.Temperature != 0.7 || def.MaxTokens != 1500 {
		t.Errorf("Expected default options 0.7/1500, got %+v", def)
	}

	flags := FlagOptions()
	if flags.Temperature != 0 || flags.MaxTokens != 300 {
		t.Errorf("Expected flag options 0/300, got %+v", flags)
	}

	fromCfg := OptionsFromConfig(config.AI{Temperature: config.Float(0.2), MaxTokens: 800})
	if fromCfg.Temperature != 0.2 || fromCfg.MaxTokens != 800 {
		t.Errorf("Expected configured options, got %+v", fromCfg)
	}
	if zero := OptionsFromConfig(config.AI{Temperature: config.Float(0)}); zero.Temperature != 0 {
		t.Errorf("Expected configured zero temperature, got %v", zero.Temperature)
	}
	if got := OptionsFromConfig(config.AI{}); got != DefaultOptions() {
		t.Errorf("Expected defaults for empty config, got %+v", got)
	}
}

func TestNewFromConfig_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := NewFromConfig(ctx, config.AI{Provider: "llama"}); err == nil || !strings.Contains(err.Error(), "unknown LLM provider") {
		t.Errorf("Expected unknown provider error, got %v", err)
	}
	if _, err := NewFromConfig(ctx, config.AI{Provider: config.ProviderOpenRouter}); err == nil || !strings.Contains(err.Error(), "openrouter API key is required") {
		t.Errorf("Expected missing key error, got %v", err)
	}
	if _, err := NewFromConfig(ctx, config.AI{Provider: config.ProviderAnthropic}); err == nil || !strings.Contains(err.Error(), "anthropic API key is required") {
		t.Errorf("Expected missing key error, got %v", err)
	}
	if _, err := NewFromConfig(ctx, config.AI{Provider: config.ProviderGemini}); err == nil || !strings.Contains(err.Error(), "gemini API key is required") {
		t.Errorf("Expected missing key error, got %v", err)
	}
}

func TestNewFromConfig_SelectsProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewFromConfig(ctx, config.AI{
		Provider:  config.ProviderAnthropic,
		Anthropic: config.AnthropicConfig{APIKey: "ak", Model: "claude-haiku-4-5"},
	})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if p.Name() != config.ProviderAnthropic || p.Model() != "claude-haiku-4-5" {
		t.Errorf("Unexpected provider %s/%s", p.Name(), p.Model())
	}
}

// fakeChatServer serves an OpenAI-compatible chat completions endpoint.
func fakeChatServer(t *testing.T, status int, content string, captured *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if captured != nil {
			_ = json.Unmarshal(body, captured)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"bad request","type":"invalid_request_error"}}`))
			return
		}

		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "google/gemma-3-27b-it:free",
			"choices": []any{},
		}
		if content != "" {
			resp["choices"] = []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenRouterClient_Complete(t *testing.T) {
	var captured map[string]any
	server := fakeChatServer(t, http.StatusOK, `["High burn"]`, &captured)

	client, err := NewOpenRouterClient(config.OpenRouterConfig{
		APIKey:  "sk-test",
		Model:   "google/gemma-3-27b-it:free",
		BaseURL: server.URL + "/",
		Timeout: "5s",
	})
	if err != nil {
		t.Fatalf("NewOpenRouterClient failed: %v", err)
	}

	text, err := client.Complete(context.Background(), "find red flags", FlagOptions())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != `["High burn"]` {
		t.Errorf("Expected completion text, got %q", text)
	}

	if captured["model"] != "google/gemma-3-27b-it:free" {
		t.Errorf("Expected model in request, got %v", captured["model"])
	}
	if temp, ok := captured["temperature"]; !ok || temp.(float64) != 0 {
		t.Errorf("Expected explicit zero temperature, got %v", captured["temperature"])
	}
	if captured["max_tokens"].(float64) != 300 {
		t.Errorf("Expected max_tokens 300, got %v", captured["max_tokens"])
	}

	messages := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("Expected system and user messages, got %d", len(messages))
	}
	system := messages[0].(map[string]any)
	if system["role"] != "system" || system["content"] != SystemPrompt {
		t.Errorf("Unexpected system message: %v", system)
	}
}

func TestOpenRouterClient_NoChoices(t *testing.T) {
	server := fakeChatServer(t, http.StatusOK, "", nil)

	client, err := NewOpenRouterClient(config.OpenRouterConfig{APIKey: "sk", Model: "m", BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("NewOpenRouterClient failed: %v", err)
	}

	text, err := client.Complete(context.Background(), "prompt", DefaultOptions())
	if err != nil {
		t.Fatalf("Expected no error for empty choices, got %v", err)
	}
	if text != "" {
		t.Errorf("Expected empty text, got %q", text)
	}
}

func TestOpenRouterClient_UpstreamError(t *testing.T) {
	server := fakeChatServer(t, http.StatusBadRequest, "", nil)

	client, err := NewOpenRouterClient(config.OpenRouterConfig{APIKey: "sk", Model: "m", BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("NewOpenRouterClient failed: %v", err)
	}

	_, err = client.Complete(context.Background(), "prompt", DefaultOptions())
	if !errors.Is(err, core.ErrUpstream) {
		t.Errorf("Expected upstream error, got %v", err)
	}
}

func TestBreakerCompleter_OpensAfterFailures(t *testing.T) {
	var calls int32
	failing := CompleterFunc(func(ctx context.Context, prompt string, opts Options) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", core.NewUpstreamError("llm", errors.New("503"))
	})

	b := NewBreakerCompleter(failing, BreakerSettings{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	})

	for i := 0; i < 2; i++ {
		if _, err := b.Complete(context.Background(), "p", DefaultOptions()); err == nil {
			t.Fatal("Expected failure")
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("Expected open breaker, got %s", b.State())
	}

	_, err := b.Complete(context.Background(), "p", DefaultOptions())
	if !errors.Is(err, core.ErrUpstream) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected open-state upstream error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("Expected open breaker to skip the provider, got %d calls", calls)
	}
}

func TestBreakerCompleter_PassesThrough(t *testing.T) {
	ok := CompleterFunc(func(ctx context.Context, prompt string, opts Options) (string, error) {
		return "echo: " + prompt, nil
	})
	b := NewBreakerCompleter(ok, DefaultBreakerSettings("test"))

	text, err := b.Complete(context.Background(), "hi", DefaultOptions())
	if err != nil || text != "echo: hi" {
		t.Errorf("Expected pass-through, got %q, %v", text, err)
	}
}

func TestBreakerSettingsFromConfig(t *testing.T) {
	s := BreakerSettingsFromConfig("openrouter", config.Breaker{
		MaxRequests:      3,
		Interval:         "2m",
		Timeout:          "10s",
		FailureThreshold: 7,
	})
	if s.Name != "openrouter" || s.MaxRequests != 3 || s.Interval != 2*time.Minute || s.Timeout != 10*time.Second || s.FailureThreshold != 7 {
		t.Errorf("Unexpected settings: %+v", s)
	}

	def := BreakerSettingsFromConfig("x", config.Breaker{})
	if def.FailureThreshold != 5 || def.Timeout != 30*time.Second {
		t.Errorf("Expected defaults, got %+v", def)
	}
}

func TestInstrumentedCompleter(t *testing.T) {
	metrics := observability.NewCollector("llm_test")
	fail := true
	next := CompleterFunc(func(ctx context.Context, prompt string, opts Options) (string, error) {
		if fail {
			return "", core.NewUpstreamError("llm", errors.New("boom"))
		}
		return "ok", nil
	})

	ic := NewInstrumentedCompleter(next, "openrouter", "m", metrics, nil)

	if _, err := ic.Complete(context.Background(), "p", DefaultOptions()); !errors.Is(err, core.ErrUpstream) {
		t.Errorf("Expected upstream error to propagate, got %v", err)
	}
	fail = false
	if text, err := ic.Complete(context.Background(), "p", DefaultOptions()); err != nil || text != "ok" {
		t.Errorf("Expected ok, got %q, %v", text, err)
	}

	if got := testutil.ToFloat64(metrics.LLMCalls.WithLabelValues("openrouter", "error")); got != 1 {
		t.Errorf("Expected 1 failed call, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.LLMCalls.WithLabelValues("openrouter", "success")); got != 1 {
		t.Errorf("Expected 1 successful call, got %v", got)
	}
}
