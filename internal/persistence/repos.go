package persistence

import (
	"context"
	"errors"

	"startiq/internal/core"
	"startiq/internal/store"
)

// founderRepo implements FounderRepository
type founderRepo struct {
	store store.Store
}

func (r *founderRepo) FindByStartupID(ctx context.Context, startupID string) (*core.Founder, error) {
	docs, err := r.store.Query(ctx, core.CollectionFounders, "profile.startupID", startupID, 1)
	if err != nil {
		return nil, storeErr("query", err)
	}
	if len(docs) == 0 {
		return nil, core.NewNotFound("startup", startupID)
	}

	var founder core.Founder
	if err := decodeInto(docs[0].Data, &founder); err != nil {
		return nil, err
	}
	founder.ID = docs[0].ID
	return &founder, nil
}

// documentRepo implements DocumentRepository
type documentRepo struct {
	store store.Store
}

func (r *documentRepo) Get(ctx context.Context, startupID string) (map[string]any, error) {
	doc, err := r.store.Get(ctx, core.CollectionDocuments, startupID)
	if err != nil {
		return nil, storeErr("get", err)
	}
	if !doc.Exists {
		return map[string]any{}, nil
	}
	return doc.Data, nil
}

// investorRepo implements InvestorRepository
type investorRepo struct {
	store store.Store
}

func (r *investorRepo) Get(ctx context.Context, investorID string) (*core.Investor, error) {
	doc, err := r.store.Get(ctx, core.CollectionInvestors, investorID)
	if err != nil {
		return nil, storeErr("get", err)
	}
	if !doc.Exists {
		return nil, core.NewNotFound("investor", investorID)
	}

	var investor core.Investor
	if err := decodeInto(doc.Data, &investor); err != nil {
		return nil, err
	}
	investor.ID = investorID
	return &investor, nil
}

func (r *investorRepo) SaveDealNote(ctx context.Context, investorID, startupID string, note core.DealNote) error {
	if note.Highlights == nil {
		note.Highlights = []string{}
	}
	if note.Fit == nil {
		note.Fit = []string{}
	}

	value := map[string]any{
		"role": core.RoleInvestor,
		"dealNotes": map[string]any{
			startupID: note,
		},
	}
	if err := r.store.Set(ctx, core.CollectionInvestors, investorID, value, store.SetOptions{Merge: true}); err != nil {
		return storeErr("set", err)
	}
	return nil
}

// userRepo implements UserRepository
type userRepo struct {
	store store.Store
}

func (r *userRepo) Register(ctx context.Context, collection, uid, role string, profile map[string]any) error {
	if profile == nil {
		profile = map[string]any{}
	}

	value := map[string]any{
		"role":      role,
		"profile":   profile,
		"createdAt": store.ServerTimestamp(),
	}
	if err := r.store.Set(ctx, collection, uid, value, store.SetOptions{}); err != nil {
		return storeErr("set", err)
	}
	return nil
}

// startupInsightRepo implements StartupInsightRepository
type startupInsightRepo struct {
	store store.Store
}

func (r *startupInsightRepo) Get(ctx context.Context, startupID string) (*core.InsightRecord, error) {
	doc, err := r.store.Get(ctx, core.CollectionStartupInsights, startupID)
	if err != nil {
		return nil, storeErr("get", err)
	}
	if !doc.Exists {
		return nil, nil
	}

	var record core.InsightRecord
	if err := decodeInto(doc.Data, &record); err != nil {
		return nil, err
	}
	if record.RedFlags == nil {
		record.RedFlags = []string{}
	}
	return &record, nil
}

func (r *startupInsightRepo) Put(ctx context.Context, startupID string, record core.InsightRecord) error {
	if record.RedFlags == nil {
		record.RedFlags = []string{}
	}
	if err := r.store.Set(ctx, core.CollectionStartupInsights, startupID, record, store.SetOptions{}); err != nil {
		return storeErr("set", err)
	}
	return nil
}

func (r *startupInsightRepo) PatchRedFlags(ctx context.Context, startupID string, flags []string) error {
	if flags == nil {
		flags = []string{}
	}
	return r.update(ctx, startupID, map[string]any{"redFlags": flags})
}

func (r *startupInsightRepo) PatchScore(ctx context.Context, startupID string, greenFlags []string, score *int) error {
	if greenFlags == nil {
		greenFlags = []string{}
	}
	return r.update(ctx, startupID, map[string]any{
		"greenFlags": greenFlags,
		"score":      score,
	})
}

func (r *startupInsightRepo) update(ctx context.Context, startupID string, patch map[string]any) error {
	err := r.store.Update(ctx, core.CollectionStartupInsights, startupID, patch)
	if errors.Is(err, store.ErrNoDocument) {
		return core.NewNotFound("startup insights", startupID)
	}
	if err != nil {
		return storeErr("update", err)
	}
	return nil
}

// investorInsightRepo implements InvestorInsightRepository
type investorInsightRepo struct {
	store store.Store
}

func (r *investorInsightRepo) Get(ctx context.Context, investorID string) (*core.InvestorInsightRecord, error) {
	doc, err := r.store.Get(ctx, core.CollectionInvestorInsights, investorID)
	if err != nil {
		return nil, storeErr("get", err)
	}
	if !doc.Exists {
		return nil, nil
	}

	var record core.InvestorInsightRecord
	if err := decodeInto(doc.Data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *investorInsightRepo) Put(ctx context.Context, investorID string, record core.InvestorInsightRecord) error {
	if err := r.store.Set(ctx, core.CollectionInvestorInsights, investorID, record, store.SetOptions{}); err != nil {
		return storeErr("set", err)
	}
	return nil
}
