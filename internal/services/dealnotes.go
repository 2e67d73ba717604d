package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"startiq/internal/core"
	"startiq/internal/extract"
	"startiq/internal/llm"
	"startiq/internal/observability"
	"startiq/internal/persistence"
	"startiq/internal/prompts"
)

// DealNoteResult is a deal note as served to callers
type DealNoteResult struct {
	InvestorID string            `json:"investorID"`
	StartupID  string            `json:"startupID"`
	DealNote   core.DealNoteView `json:"dealNote"`
	Cached     bool              `json:"cached"`
}

// DealNoteService composes deal notes. Notes are cached on the investor for
// seven days; risks and the AI score entry are always read from the current
// startup insight record and never stored.
type DealNoteService struct {
	db      persistence.Database
	llm     llm.Completer
	clock   core.Clock
	opts    llm.Options
	metrics *observability.Collector
	posthog *observability.PostHogClient
	log     *slog.Logger
}

// NewDealNoteService creates a deal note service
func NewDealNoteService(deps Dependencies) *DealNoteService {
	deps = deps.withDefaults()
	return &DealNoteService{
		db:      deps.DB,
		llm:     deps.LLM,
		clock:   deps.Clock,
		opts:    deps.Options,
		metrics: deps.Metrics,
		posthog: deps.PostHog,
		log:     deps.Logger,
	}
}

// Generate returns the deal note for investorID and startupID, composing a
// new one when none is cached or the cached one is stale.
func (s *DealNoteService) Generate(ctx context.Context, investorID, startupID string) (*DealNoteResult, error) {
	if investorID == "" || startupID == "" {
		return nil, core.NewValidationError("investorUID", "investorUID and startupID are required")
	}
	now := s.clock.Now()

	cached, err := s.cachedNote(ctx, investorID, startupID)
	if err != nil {
		return nil, err
	}
	if cached != nil && core.IsFresh(cached.CreatedAt, now) {
		startup, err := s.db.StartupInsights().Get(ctx, startupID)
		if err != nil {
			return nil, fmt.Errorf("failed to read startup insights: %w", err)
		}
		return s.result(ctx, investorID, startupID, *cached, startup, true), nil
	}

	investorInsights, err := s.db.InvestorInsights().Get(ctx, investorID)
	if err != nil {
		return nil, fmt.Errorf("failed to read investor insights: %w", err)
	}
	if investorInsights == nil {
		return nil, core.NewNotFound("investor insights", investorID)
	}

	startup, err := s.db.StartupInsights().Get(ctx, startupID)
	if err != nil {
		return nil, fmt.Errorf("failed to read startup insights: %w", err)
	}
	if startup == nil {
		return nil, core.NewNotFound("startup insights", startupID)
	}

	note, err := s.compose(ctx, investorInsights.Insights, startup.Insights)
	if err != nil {
		return nil, err
	}
	note.CreatedAt = now

	if err := s.db.Investors().SaveDealNote(ctx, investorID, startupID, note); err != nil {
		return nil, fmt.Errorf("failed to save deal note: %w", err)
	}

	s.log.Info("Generated deal note",
		"investor_id", investorID,
		"startup_id", startupID,
		"verdict", note.Note)
	return s.result(ctx, investorID, startupID, note, startup, false), nil
}

// cachedNote returns the stored note, or nil when the investor or the note
// does not exist.
func (s *DealNoteService) cachedNote(ctx context.Context, investorID, startupID string) (*core.DealNote, error) {
	investor, err := s.db.Investors().Get(ctx, investorID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read investor: %w", err)
	}

	note, ok := investor.DealNotes[startupID]
	if !ok {
		return nil, nil
	}
	return &note, nil
}

// compose runs highlights, fit and verdict in order. Each step embeds the
// output of the previous ones.
func (s *DealNoteService) compose(ctx context.Context, investorInsights, startupInsights string) (core.DealNote, error) {
	dealContext := prompts.DealNoteContext(investorInsights, startupInsights)

	raw, err := s.llm.Complete(ctx, prompts.Highlights(dealContext), s.opts)
	if err != nil {
		return core.DealNote{}, fmt.Errorf("failed to generate highlights: %w", err)
	}
	highlights := extract.Array(raw, 0)

	raw, err = s.llm.Complete(ctx, prompts.Fit(dealContext), s.opts)
	if err != nil {
		return core.DealNote{}, fmt.Errorf("failed to generate fit: %w", err)
	}
	fit := extract.Array(raw, 0)

	raw, err = s.llm.Complete(ctx, prompts.Verdict(dealContext, highlights, fit), s.opts)
	if err != nil {
		return core.DealNote{}, fmt.Errorf("failed to generate verdict: %w", err)
	}
	verdict := extract.Verdict(raw)
	switch {
	case verdict == "":
		verdict = core.NoVerdict
	case !core.IsKnownVerdict(verdict):
		s.log.Warn("Unexpected deal note verdict", "verdict", verdict)
	}

	return core.DealNote{Note: verdict, Highlights: highlights, Fit: fit}, nil
}

// result merges the durable note with transient fields from startup, which
// may be nil.
func (s *DealNoteService) result(ctx context.Context, investorID, startupID string, note core.DealNote, startup *core.InsightRecord, cached bool) *DealNoteResult {
	risks := []string{}
	scoreText := core.NotAvailable
	if startup != nil {
		risks = append(risks, startup.RedFlags...)
		if startup.Score != nil {
			scoreText = strconv.Itoa(*startup.Score)
		}
	}

	highlights := make([]string, 0, len(note.Highlights)+1)
	highlights = append(highlights, note.Highlights...)
	highlights = append(highlights, "AI Score: "+scoreText)

	fit := note.Fit
	if fit == nil {
		fit = []string{}
	}

	s.metrics.ObserveDealNote(note.Note, cached)
	if err := s.posthog.TrackDealNoteGenerated(ctx, investorID, startupID, note.Note, cached); err != nil {
		s.log.Debug("Failed to track deal note event", "error", err.Error())
	}

	return &DealNoteResult{
		InvestorID: investorID,
		StartupID:  startupID,
		DealNote: core.DealNoteView{
			Note:       note.Note,
			Highlights: highlights,
			Fit:        fit,
			Risks:      risks,
			CreatedAt:  note.CreatedAt,
		},
		Cached: cached,
	}
}
