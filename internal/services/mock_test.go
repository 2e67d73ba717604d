package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"startiq/internal/core"
	"startiq/internal/llm"
	"startiq/internal/logger"
	"startiq/internal/observability"
	"startiq/internal/persistence"
	"startiq/internal/store"

	"github.com/stretchr/testify/require"
)

// Prompt kinds recognised by MockLLMClient.
const (
	stepStartup    = "startup"
	stepInvestor   = "investor"
	stepRedFlags   = "red_flags"
	stepGreenFlags = "green_flags"
	stepScore      = "score"
	stepHighlights = "highlights"
	stepFit        = "fit"
	stepVerdict    = "verdict"
	stepUnknown    = "unknown"
)

// classifyPrompt identifies which pipeline step produced prompt. Deal-note
// and score prompts embed analysis text, so they are checked first.
func classifyPrompt(prompt string) string {
	switch {
	case strings.Contains(prompt, "give a final recommendation"):
		return stepVerdict
	case strings.Contains(prompt, "highlights why this startup is interesting"):
		return stepHighlights
	case strings.Contains(prompt, "fits the investor's focus"):
		return stepFit
	case strings.Contains(prompt, "final investment score out of 100"):
		return stepScore
	case strings.Contains(prompt, "critical red flags"):
		return stepRedFlags
	case strings.Contains(prompt, `("green flags")`):
		return stepGreenFlags
	case strings.Contains(prompt, "evaluating a startup"):
		return stepStartup
	case strings.Contains(prompt, "evaluating an investor"):
		return stepInvestor
	default:
		return stepUnknown
	}
}

type mockCall struct {
	step   string
	prompt string
	opts   llm.Options
}

// MockLLMClient answers completions per pipeline step and records every call
type MockLLMClient struct {
	mu        sync.Mutex
	responses map[string]string
	errors    map[string]error
	gates     map[string]chan struct{}
	calls     []mockCall
}

func NewMockLLMClient() *MockLLMClient {
	return &MockLLMClient{
		responses: map[string]string{
			stepStartup:    "Strong team, crowded market.",
			stepInvestor:   "Seed-stage fintech investor.",
			stepRedFlags:   `["High burn rate", "Unproven market"]`,
			stepGreenFlags: `["Experienced founders"]`,
			stepScore:      "73",
			stepHighlights: `["Fintech focus match", "Strong traction"]`,
			stepFit:        "- Seed stage\n- Ticket size fits",
			stepVerdict:    `"Invest"`,
		},
		errors: map[string]error{},
		gates:  map[string]chan struct{}{},
	}
}

func (m *MockLLMClient) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	step := classifyPrompt(prompt)

	m.mu.Lock()
	m.calls = append(m.calls, mockCall{step: step, prompt: prompt, opts: opts})
	resp, err, gate := m.responses[step], m.errors[step], m.gates[step]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}

func (m *MockLLMClient) SetResponse(step, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[step] = response
}

func (m *MockLLMClient) SetError(step string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[step] = err
}

// Block makes calls for step wait until the returned channel is closed.
func (m *MockLLMClient) Block(step string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.gates[step] = gate
	return gate
}

func (m *MockLLMClient) CallCount(step string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.step == step {
			n++
		}
	}
	return n
}

func (m *MockLLMClient) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *MockLLMClient) Steps() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	steps := make([]string, len(m.calls))
	for i, c := range m.calls {
		steps[i] = c.step
	}
	return steps
}

func (m *MockLLMClient) LastCall(step string) mockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].step == step {
			return m.calls[i]
		}
	}
	return mockCall{}
}

// countingStore counts writes reaching the store
type countingStore struct {
	store.Store
	mu     sync.Mutex
	writes int
}

func (c *countingStore) Set(ctx context.Context, collection, key string, value any, opts store.SetOptions) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.Store.Set(ctx, collection, key, value, opts)
}

func (c *countingStore) Update(ctx context.Context, collection, key string, patch map[string]any) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.Store.Update(ctx, collection, key, patch)
}

func (c *countingStore) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

func (c *countingStore) ResetWrites() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = 0
}

var fixtureNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	clock   *core.FixedClock
	store   *countingStore
	db      *persistence.StoreDB
	llm     *MockLLMClient
	metrics *observability.Collector
	svc     *Services
}

func newFixture(t *testing.T, singleFlight bool) *fixture {
	t.Helper()

	clock := core.NewFixedClock(fixtureNow)
	counting := &countingStore{Store: store.NewMemoryStore(clock)}
	db := persistence.New(counting)
	mock := NewMockLLMClient()
	metrics := observability.NewCollector("startiq_test")

	svc := New(Dependencies{
		DB:           db,
		LLM:          mock,
		Clock:        clock,
		Metrics:      metrics,
		Logger:       logger.Discard(),
		SingleFlight: singleFlight,
	})

	return &fixture{clock: clock, store: counting, db: db, llm: mock, metrics: metrics, svc: svc}
}

func (f *fixture) seedFounder(t *testing.T, uid, startupID string) {
	t.Helper()
	require.NoError(t, f.db.Users().Register(context.Background(), core.CollectionFounders, uid, "founder", map[string]any{
		"startupID":   startupID,
		"startupName": "Acme",
		"founderName": "Ada",
	}))
}

func (f *fixture) seedInvestor(t *testing.T, investorID string) {
	t.Helper()
	require.NoError(t, f.db.Users().Register(context.Background(), core.CollectionInvestors, investorID, "investor", map[string]any{
		"investorName": "Jane",
		"firmName":     "Seed Co",
	}))
}

func (f *fixture) seedStartupInsight(t *testing.T, startupID string, record core.InsightRecord) {
	t.Helper()
	require.NoError(t, f.db.StartupInsights().Put(context.Background(), startupID, record))
}

func (f *fixture) seedInvestorInsight(t *testing.T, investorID string, record core.InvestorInsightRecord) {
	t.Helper()
	require.NoError(t, f.db.InvestorInsights().Put(context.Background(), investorID, record))
}

func daysAgo(days float64) time.Time {
	return fixtureNow.Add(-time.Duration(days * float64(24*time.Hour)))
}

func intPtr(n int) *int { return &n }
