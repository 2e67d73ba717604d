// Package persistence provides typed repositories for profiles, insight
// records and deal notes on top of the document store.
package persistence

import (
	"context"

	"startiq/internal/core"
)

// FounderRepository reads founder registrations
type FounderRepository interface {
	// FindByStartupID returns the first founder whose profile carries startupID
	FindByStartupID(ctx context.Context, startupID string) (*core.Founder, error)
}

// DocumentRepository reads uploaded startup documents
type DocumentRepository interface {
	// Get returns the raw documents for a startup, or an empty map
	Get(ctx context.Context, startupID string) (map[string]any, error)
}

// InvestorRepository handles investor profiles and their deal notes
type InvestorRepository interface {
	// Get retrieves an investor by ID
	Get(ctx context.Context, investorID string) (*core.Investor, error)

	// SaveDealNote merges one deal note into the investor's note map
	SaveDealNote(ctx context.Context, investorID, startupID string, note core.DealNote) error
}

// UserRepository handles registration writes
type UserRepository interface {
	// Register stores a profile under the collection for role
	Register(ctx context.Context, collection, uid, role string, profile map[string]any) error
}

// StartupInsightRepository handles cached startup analyses
type StartupInsightRepository interface {
	// Get retrieves the record, or nil when none exists
	Get(ctx context.Context, startupID string) (*core.InsightRecord, error)

	// Put replaces the record
	Put(ctx context.Context, startupID string, record core.InsightRecord) error

	// PatchRedFlags replaces only redFlags
	PatchRedFlags(ctx context.Context, startupID string, flags []string) error

	// PatchScore replaces only greenFlags and score
	PatchScore(ctx context.Context, startupID string, greenFlags []string, score *int) error
}

// InvestorInsightRepository handles cached investor analyses
type InvestorInsightRepository interface {
	// Get retrieves the record, or nil when none exists
	Get(ctx context.Context, investorID string) (*core.InvestorInsightRecord, error)

	// Put replaces the record
	Put(ctx context.Context, investorID string, record core.InvestorInsightRecord) error
}

// Database provides access to all repositories
type Database interface {
	Founders() FounderRepository
	Documents() DocumentRepository
	Investors() InvestorRepository
	Users() UserRepository
	StartupInsights() StartupInsightRepository
	InvestorInsights() InvestorInsightRepository

	// Close closes the underlying store
	Close() error

	// Ping verifies the underlying store
	Ping(ctx context.Context) error
}
