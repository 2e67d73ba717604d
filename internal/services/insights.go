package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"startiq/internal/core"
	"startiq/internal/llm"
	"startiq/internal/observability"
	"startiq/internal/persistence"
	"startiq/internal/prompts"

	"golang.org/x/sync/singleflight"
)

const (
	kindStartup  = "startup"
	kindInvestor = "investor"
)

// StartupInsightResult is a startup analysis as served to callers
type StartupInsightResult struct {
	StartupID string    `json:"startupID"`
	Insights  string    `json:"insights"`
	RedFlags  []string  `json:"redFlags"`
	CreatedAt time.Time `json:"createdAt"`
	Cached    bool      `json:"cached"`
}

// InvestorInsightResult is an investor analysis as served to callers
type InvestorInsightResult struct {
	InvestorID string    `json:"investorID"`
	Insights   string    `json:"insights"`
	CreatedAt  time.Time `json:"createdAt"`
	Cached     bool      `json:"cached"`
}

// InsightService reads insight records through a seven day cache. Fresh
// records are served as stored, except that a fresh startup record without
// red flags gets its flags filled in place. Missing or stale records are
// regenerated from the profile. Each call writes to the store at most once.
type InsightService struct {
	db      persistence.Database
	llm     llm.Completer
	flags   FlagExtractor
	clock   core.Clock
	opts    llm.Options
	metrics *observability.Collector
	posthog *observability.PostHogClient
	log     *slog.Logger
	group   *singleflight.Group
}

// NewInsightService creates an insight service
func NewInsightService(deps Dependencies, flags FlagExtractor) *InsightService {
	deps = deps.withDefaults()
	if flags == nil {
		flags = NewFlagService(deps)
	}

	s := &InsightService{
		db:      deps.DB,
		llm:     deps.LLM,
		flags:   flags,
		clock:   deps.Clock,
		opts:    deps.Options,
		metrics: deps.Metrics,
		posthog: deps.PostHog,
		log:     deps.Logger,
	}
	if deps.SingleFlight {
		s.group = &singleflight.Group{}
	}
	return s
}

// StartupInsight returns the analysis of a startup, regenerating it when
// missing or stale.
func (s *InsightService) StartupInsight(ctx context.Context, startupID string) (*StartupInsightResult, error) {
	if startupID == "" {
		return nil, core.NewValidationError("startupID", "startupID is required")
	}

	v, err := s.do(ctx, kindStartup+":"+startupID, func(ctx context.Context) (any, error) {
		return s.startupInsight(ctx, startupID)
	})
	if err != nil {
		return nil, err
	}

	result := *v.(*StartupInsightResult)
	result.RedFlags = append([]string{}, result.RedFlags...)
	return &result, nil
}

// InvestorInsight returns the analysis of an investor, regenerating it when
// missing or stale.
func (s *InsightService) InvestorInsight(ctx context.Context, investorID string) (*InvestorInsightResult, error) {
	if investorID == "" {
		return nil, core.NewValidationError("investorID", "investorID is required")
	}

	v, err := s.do(ctx, kindInvestor+":"+investorID, func(ctx context.Context) (any, error) {
		return s.investorInsight(ctx, investorID)
	})
	if err != nil {
		return nil, err
	}

	result := *v.(*InvestorInsightResult)
	return &result, nil
}

// do runs fn once per key when single-flight is enabled. The shared work is
// detached from any one caller's cancellation; each caller still stops
// waiting when its own context is done.
func (s *InsightService) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	if s.group == nil {
		return fn(ctx)
	}

	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.log.Debug("Shared in-flight insight request", "key", key)
		}
		return res.Val, res.Err
	}
}

func (s *InsightService) startupInsight(ctx context.Context, startupID string) (*StartupInsightResult, error) {
	start := time.Now()
	now := s.clock.Now()

	record, err := s.db.StartupInsights().Get(ctx, startupID)
	if err != nil {
		return nil, fmt.Errorf("failed to read startup insights: %w", err)
	}

	if record != nil && core.IsFresh(record.CreatedAt, now) {
		outcome := observability.CacheHit
		if len(record.RedFlags) == 0 {
			outcome = observability.CachePartialHeal
			flags := s.flags.RedFlags(ctx, record.Insights)
			if err := s.db.StartupInsights().PatchRedFlags(ctx, startupID, flags); err != nil {
				return nil, fmt.Errorf("failed to patch red flags: %w", err)
			}
			record.RedFlags = flags
			s.log.Info("Filled missing red flags", "startup_id", startupID, "count", len(flags))
		}

		s.metrics.ObserveCacheLookup(kindStartup, outcome)
		s.track(ctx, kindStartup, startupID, true, start)
		return &StartupInsightResult{
			StartupID: startupID,
			Insights:  record.Insights,
			RedFlags:  record.RedFlags,
			CreatedAt: record.CreatedAt,
			Cached:    true,
		}, nil
	}
	s.metrics.ObserveCacheLookup(kindStartup, missOrStale(record != nil))

	founder, err := s.db.Founders().FindByStartupID(ctx, startupID)
	if err != nil {
		return nil, err
	}
	documents, err := s.db.Documents().Get(ctx, startupID)
	if err != nil {
		return nil, fmt.Errorf("failed to read startup documents: %w", err)
	}

	insights, err := s.llm.Complete(ctx, prompts.Startup(founder.Profile, documents), s.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate startup insights: %w", err)
	}
	flags := s.flags.RedFlags(ctx, insights)

	fresh := core.InsightRecord{
		Insights:  insights,
		RedFlags:  flags,
		CreatedAt: now,
	}
	if err := s.db.StartupInsights().Put(ctx, startupID, fresh); err != nil {
		return nil, fmt.Errorf("failed to save startup insights: %w", err)
	}

	s.log.Info("Generated startup insights",
		"startup_id", startupID,
		"red_flags", len(flags),
		"duration_ms", time.Since(start).Milliseconds())
	s.track(ctx, kindStartup, startupID, false, start)

	return &StartupInsightResult{
		StartupID: startupID,
		Insights:  insights,
		RedFlags:  flags,
		CreatedAt: now,
		Cached:    false,
	}, nil
}

func (s *InsightService) investorInsight(ctx context.Context, investorID string) (*InvestorInsightResult, error) {
	start := time.Now()
	now := s.clock.Now()

	record, err := s.db.InvestorInsights().Get(ctx, investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read investor insights: %w", err)
	}

	if record != nil && core.IsFresh(record.CreatedAt, now) {
		s.metrics.ObserveCacheLookup(kindInvestor, observability.CacheHit)
		s.track(ctx, kindInvestor, investorID, true, start)
		return &InvestorInsightResult{
			InvestorID: investorID,
			Insights:   record.Insights,
			CreatedAt:  record.CreatedAt,
			Cached:     true,
		}, nil
	}
	s.metrics.ObserveCacheLookup(kindInvestor, missOrStale(record != nil))

	investor, err := s.db.Investors().Get(ctx, investorID)
	if err != nil {
		return nil, err
	}

	insights, err := s.llm.Complete(ctx, prompts.Investor(investor.Profile), s.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate investor insights: %w", err)
	}

	fresh := core.InvestorInsightRecord{Insights: insights, CreatedAt: now}
	if err := s.db.InvestorInsights().Put(ctx, investorID, fresh); err != nil {
		return nil, fmt.Errorf("failed to save investor insights: %w", err)
	}

	s.log.Info("Generated investor insights",
		"investor_id", investorID,
		"duration_ms", time.Since(start).Milliseconds())
	s.track(ctx, kindInvestor, investorID, false, start)

	return &InvestorInsightResult{
		InvestorID: investorID,
		Insights:   insights,
		CreatedAt:  now,
		Cached:     false,
	}, nil
}

func (s *InsightService) track(ctx context.Context, kind, entityID string, cached bool, start time.Time) {
	if err := s.posthog.TrackInsightGenerated(ctx, kind, entityID, cached, time.Since(start).Milliseconds()); err != nil {
		s.log.Debug("Failed to track insight event", "error", err.Error())
	}
}

func missOrStale(exists bool) string {
	if exists {
		return observability.CacheStale
	}
	return observability.CacheMiss
}
