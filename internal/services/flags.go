package services

import (
	"context"
	"log/slog"

	"startiq/internal/core"
	"startiq/internal/extract"
	"startiq/internal/llm"
	"startiq/internal/prompts"
)

// FlagService extracts up to core.MaxFlags red or green flags from an
// analysis. It never fails: an unusable completion yields an empty list.
type FlagService struct {
	llm llm.Completer
	log *slog.Logger
}

// NewFlagService creates a flag service
func NewFlagService(deps Dependencies) *FlagService {
	deps = deps.withDefaults()
	return &FlagService{llm: deps.LLM, log: deps.Logger}
}

// RedFlags returns the risks named in insights
func (s *FlagService) RedFlags(ctx context.Context, insights string) []string {
	return s.extract(ctx, "red", prompts.RedFlags(insights))
}

// GreenFlags returns the strengths named in insights
func (s *FlagService) GreenFlags(ctx context.Context, insights string) []string {
	return s.extract(ctx, "green", prompts.GreenFlags(insights))
}

func (s *FlagService) extract(ctx context.Context, kind, prompt string) []string {
	raw, err := s.llm.Complete(ctx, prompt, llm.FlagOptions())
	if err != nil {
		s.log.Warn("Flag extraction failed", "kind", kind, "error", err.Error())
		return []string{}
	}

	flags, strategy := extract.Run(extract.DefaultChain, raw, core.MaxFlags)
	s.log.Debug("Extracted flags", "kind", kind, "count", len(flags), "strategy", strategy)
	return flags
}
