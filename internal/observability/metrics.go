package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes recorded by ObserveCacheLookup.
const (
	CacheHit         = "hit"
	CacheMiss        = "miss"
	CacheStale       = "stale"
	CachePartialHeal = "partial"
)

// Collector holds all Prometheus metrics for the application.
// Every method is safe to call on a nil Collector.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Insight cache metrics
	CacheLookups *prometheus.CounterVec

	// LLM metrics
	LLMCalls    *prometheus.CounterVec
	LLMDuration *prometheus.HistogramVec

	// Domain metrics
	DealNotes *prometheus.CounterVec
	Scores    prometheus.Histogram
}

// NewCollector creates a collector with its own registry, so several
// collectors can coexist in tests.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insight_cache_lookups_total",
				Help:      "Insight cache lookups by kind and outcome",
			},
			[]string{"kind", "result"},
		),
		LLMCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_calls_total",
				Help:      "Total number of LLM completions",
			},
			[]string{"provider", "status"},
		),
		LLMDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_call_duration_seconds",
				Help:      "LLM completion latency in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"provider"},
		),
		DealNotes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deal_notes_total",
				Help:      "Deal notes served by verdict and cache state",
			},
			[]string{"verdict", "cached"},
		),
		Scores: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "startup_score",
				Help:      "Distribution of startup investment scores",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.CacheLookups,
		c.LLMCalls,
		c.LLMDuration,
		c.DealNotes,
		c.Scores,
	)

	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler exposes the collector in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveCacheLookup records an insight cache outcome.
func (c *Collector) ObserveCacheLookup(kind, result string) {
	if c == nil {
		return
	}
	c.CacheLookups.WithLabelValues(kind, result).Inc()
}

// ObserveLLMCall records one completion.
func (c *Collector) ObserveLLMCall(provider string, d time.Duration, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.LLMCalls.WithLabelValues(provider, status).Inc()
	c.LLMDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveDealNote records a served deal note.
func (c *Collector) ObserveDealNote(verdict string, cached bool) {
	if c == nil {
		return
	}
	c.DealNotes.WithLabelValues(verdict, strconv.FormatBool(cached)).Inc()
}

// ObserveScore records a successful score.
func (c *Collector) ObserveScore(score int) {
	if c == nil {
		return
	}
	c.Scores.Observe(float64(score))
}
