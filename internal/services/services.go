// Package services implements the insight pipeline: cached analyses, flag
// extraction, scoring, deal notes and registration.
package services

import (
	"log/slog"

	"startiq/internal/core"
	"startiq/internal/llm"
	"startiq/internal/logger"
	"startiq/internal/observability"
	"startiq/internal/persistence"
)

// Dependencies are shared by every service.
type Dependencies struct {
	DB      persistence.Database
	LLM     llm.Completer
	Clock   core.Clock  // defaults to core.SystemClock
	Options llm.Options // analysis and deal-note options; zero means llm.DefaultOptions

	Metrics *observability.Collector     // optional
	PostHog *observability.PostHogClient // optional
	Logger  *slog.Logger                 // defaults to logger.Get()

	// SingleFlight shares one regeneration between concurrent callers for
	// the same entity.
	SingleFlight bool
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Clock == nil {
		d.Clock = core.SystemClock{}
	}
	if d.Options == (llm.Options{}) {
		d.Options = llm.DefaultOptions()
	}
	if d.Logger == nil {
		d.Logger = logger.Get()
	}
	return d
}

// Services groups the pipeline services built from one set of dependencies.
type Services struct {
	Insights  *InsightService
	Flags     *FlagService
	Scores    *ScoreService
	DealNotes *DealNoteService
	Users     *UserService
}

// New wires all services together.
func New(deps Dependencies) *Services {
	deps = deps.withDefaults()

	flags := NewFlagService(deps)
	return &Services{
		Insights:  NewInsightService(deps, flags),
		Flags:     flags,
		Scores:    NewScoreService(deps, flags, NewScorer(deps)),
		DealNotes: NewDealNoteService(deps),
		Users:     NewUserService(deps),
	}
}
