package services

import (
	"context"
)

// InsightProvider serves cached startup and investor analyses
type InsightProvider interface {
	StartupInsight(ctx context.Context, startupID string) (*StartupInsightResult, error)
	InvestorInsight(ctx context.Context, investorID string) (*InvestorInsightResult, error)
}

// FlagExtractor derives short risk and strength signals from an analysis
type FlagExtractor interface {
	RedFlags(ctx context.Context, insights string) []string
	GreenFlags(ctx context.Context, insights string) []string
}

// StartupScorer scores a startup and records the result
type StartupScorer interface {
	ScoreStartup(ctx context.Context, startupID string) (*ScoreResult, error)
}

// DealNoteGenerator composes deal notes for an investor and a startup
type DealNoteGenerator interface {
	Generate(ctx context.Context, investorID, startupID string) (*DealNoteResult, error)
}

// UserRegistrar stores founder and investor registrations
type UserRegistrar interface {
	Register(ctx context.Context, uid, role string, profile map[string]any) (*RegisterResult, error)
}
