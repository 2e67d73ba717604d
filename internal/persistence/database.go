package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"startiq/internal/core"
	"startiq/internal/store"
)

// StoreDB implements Database over a store.Store
type StoreDB struct {
	store            store.Store
	founders         *founderRepo
	documents        *documentRepo
	investors        *investorRepo
	users            *userRepo
	startupInsights  *startupInsightRepo
	investorInsights *investorInsightRepo
}

// New wraps s with typed repositories
func New(s store.Store) *StoreDB {
	return &StoreDB{
		store:            s,
		founders:         &founderRepo{store: s},
		documents:        &documentRepo{store: s},
		investors:        &investorRepo{store: s},
		users:            &userRepo{store: s},
		startupInsights:  &startupInsightRepo{store: s},
		investorInsights: &investorInsightRepo{store: s},
	}
}

func (d *StoreDB) Founders() FounderRepository                 { return d.founders }
func (d *StoreDB) Documents() DocumentRepository               { return d.documents }
func (d *StoreDB) Investors() InvestorRepository               { return d.investors }
func (d *StoreDB) Users() UserRepository                       { return d.users }
func (d *StoreDB) StartupInsights() StartupInsightRepository   { return d.startupInsights }
func (d *StoreDB) InvestorInsights() InvestorInsightRepository { return d.investorInsights }

// Store returns the underlying document store
func (d *StoreDB) Store() store.Store { return d.store }

func (d *StoreDB) Close() error {
	return d.store.Close()
}

func (d *StoreDB) Ping(ctx context.Context) error {
	return d.store.Ping(ctx)
}

// decodeInto converts a document's data into a typed value
func decodeInto(data map[string]any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return nil
}

// storeErr marks a store transport failure as upstream
func storeErr(op string, err error) error {
	return core.NewUpstreamError("store."+op, err)
}
