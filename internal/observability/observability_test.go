package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"startiq/internal/config"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Observations(t *testing.T) {
	c := NewCollector("startiq_test")

	c.ObserveCacheLookup("startup", CacheHit)
	c.ObserveCacheLookup("startup", CacheHit)
	c.ObserveCacheLookup("investor", CacheMiss)
	c.ObserveLLMCall("openrouter", 2*time.Second, nil)
	c.ObserveLLMCall("openrouter", time.Second, errors.New("timeout"))
	c.ObserveDealNote("Invest", false)
	c.ObserveScore(73)

	if got := testutil.ToFloat64(c.CacheLookups.WithLabelValues("startup", CacheHit)); got != 2 {
		t.Errorf("Expected 2 startup hits, got %v", got)
	}
	if got := testutil.ToFloat64(c.CacheLookups.WithLabelValues("investor", CacheMiss)); got != 1 {
		t.Errorf("Expected 1 investor miss, got %v", got)
	}
	if got := testutil.ToFloat64(c.LLMCalls.WithLabelValues("openrouter", "error")); got != 1 {
		t.Errorf("Expected 1 failed LLM call, got %v", got)
	}
	if got := testutil.ToFloat64(c.DealNotes.WithLabelValues("Invest", "false")); got != 1 {
		t.Errorf("Expected 1 deal note, got %v", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("startiq_test")
	c.ObserveHTTP("POST", "/analyse-with-ai", 200, 150*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `startiq_test_http_requests_total{method="POST",route="/analyse-with-ai",status="200"} 1`) {
		t.Errorf("Expected request counter in output, got:\n%s", body)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.ObserveCacheLookup("startup", CacheHit)
	c.ObserveLLMCall("gemini", time.Second, nil)
	c.ObserveHTTP("GET", "/", 200, time.Millisecond)
	c.ObserveDealNote("Consider", true)
	c.ObserveScore(10)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("Expected 404 from nil collector handler, got %d", rec.Code)
	}
}

func TestPostHogClient_DisabledWithoutKey(t *testing.T) {
	client, err := NewPostHogClient(config.PostHog{})
	if err != nil {
		t.Fatalf("NewPostHogClient failed: %v", err)
	}
	if client.IsEnabled() {
		t.Error("Expected client to be disabled without an API key")
	}

	ctx := context.Background()
	if err := client.TrackInsightGenerated(ctx, "startup", "s1", true, 5); err != nil {
		t.Errorf("Expected no error from disabled client, got %v", err)
	}
	if err := client.Shutdown(ctx); err != nil {
		t.Errorf("Expected no error on shutdown, got %v", err)
	}

	var nilClient *PostHogClient
	if err := nilClient.TrackStartupScored(ctx, "s1", nil); err != nil {
		t.Errorf("Expected nil client to be a no-op, got %v", err)
	}
}
