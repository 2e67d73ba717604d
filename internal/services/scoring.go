package services

import (
	"context"
	"fmt"
	"log/slog"

	"startiq/internal/core"
	"startiq/internal/extract"
	"startiq/internal/llm"
	"startiq/internal/observability"
	"startiq/internal/persistence"
	"startiq/internal/prompts"
)

// Scorer asks the model for a 0..100 investment score.
type Scorer struct {
	llm  llm.Completer
	opts llm.Options
	log  *slog.Logger
}

// NewScorer creates a scorer
func NewScorer(deps Dependencies) *Scorer {
	deps = deps.withDefaults()
	return &Scorer{llm: deps.LLM, opts: deps.Options, log: deps.Logger}
}

// Score returns the model's score, or nil when the call fails or the reply
// is not an integer in [0, 100]. A missing score is a normal outcome.
func (s *Scorer) Score(ctx context.Context, insights string, redFlags, greenFlags []string) *int {
	raw, err := s.llm.Complete(ctx, prompts.Score(insights, redFlags, greenFlags), s.opts)
	if err != nil {
		s.log.Warn("Scoring failed", "error", err.Error())
		return nil
	}

	score, ok := extract.Score(raw)
	if !ok {
		s.log.Warn("Scoring failed", "error", fmt.Sprintf("invalid score returned: %q", raw))
		return nil
	}
	return &score
}

// ScoreResult is the outcome of scoring a startup
type ScoreResult struct {
	StartupID  string   `json:"startupID"`
	Score      *int     `json:"score"`
	RedFlags   []string `json:"redFlags"`
	GreenFlags []string `json:"greenFlags"`
}

// ScoreService scores a startup from its cached analysis and stores the
// score and green flags on the insight record.
type ScoreService struct {
	db      persistence.Database
	flags   FlagExtractor
	scorer  *Scorer
	metrics *observability.Collector
	posthog *observability.PostHogClient
	log     *slog.Logger
}

// NewScoreService creates a score service
func NewScoreService(deps Dependencies, flags FlagExtractor, scorer *Scorer) *ScoreService {
	deps = deps.withDefaults()
	if flags == nil {
		flags = NewFlagService(deps)
	}
	if scorer == nil {
		scorer = NewScorer(deps)
	}
	return &ScoreService{
		db:      deps.DB,
		flags:   flags,
		scorer:  scorer,
		metrics: deps.Metrics,
		posthog: deps.PostHog,
		log:     deps.Logger,
	}
}

// ScoreStartup scores a startup. The insight record must already exist; its
// createdAt is left untouched.
func (s *ScoreService) ScoreStartup(ctx context.Context, startupID string) (*ScoreResult, error) {
	if startupID == "" {
		return nil, core.NewValidationError("startupID", "startupID is required")
	}

	record, err := s.db.StartupInsights().Get(ctx, startupID)
	if err != nil {
		return nil, fmt.Errorf("failed to read startup insights: %w", err)
	}
	if record == nil {
		return nil, core.NewNotFound("startup insights", startupID)
	}

	green := s.flags.GreenFlags(ctx, record.Insights)
	score := s.scorer.Score(ctx, record.Insights, record.RedFlags, green)

	if err := s.db.StartupInsights().PatchScore(ctx, startupID, green, score); err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}

	if score != nil {
		s.metrics.ObserveScore(*score)
		s.log.Info("Scored startup", "startup_id", startupID, "score", *score)
	}
	if err := s.posthog.TrackStartupScored(ctx, startupID, score); err != nil {
		s.log.Debug("Failed to track score event", "error", err.Error())
	}

	return &ScoreResult{
		StartupID:  startupID,
		Score:      score,
		RedFlags:   record.RedFlags,
		GreenFlags: green,
	}, nil
}
