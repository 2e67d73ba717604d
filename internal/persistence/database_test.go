package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"startiq/internal/core"
	"startiq/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) (*StoreDB, *core.FixedClock) {
	t.Helper()
	clock := core.NewFixedClock(testNow)
	return New(store.NewMemoryStore(clock)), clock
}

func TestFoundersFindByStartupID(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	_, err := db.Founders().FindByStartupID(ctx, "s1")
	var nf *core.NotFoundError
	require.True(t, errors.As(err, &nf), "expected NotFoundError, got %v", err)
	assert.Equal(t, "Startup not found", nf.Message())

	require.NoError(t, db.Users().Register(ctx, core.CollectionFounders, "u1", "founder", map[string]any{
		"startupID":   "s1",
		"startupName": "Acme",
		"yearFounded": 2021,
	}))

	founder, err := db.Founders().FindByStartupID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", founder.ID)
	assert.Equal(t, "founder", founder.Role)
	assert.Equal(t, core.Text("Acme"), founder.Profile.StartupName)
	assert.Equal(t, core.Text("2021"), founder.Profile.YearFounded)
	assert.Equal(t, testNow, founder.CreatedAt)
}

func TestDocumentsGet(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	docs, err := db.Documents().Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, docs)

	require.NoError(t, db.Store().Set(ctx, core.CollectionDocuments, "s1", map[string]any{
		"pitchDeck": "deck.pdf",
	}, store.SetOptions{}))

	docs, err = db.Documents().Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "deck.pdf", docs["pitchDeck"])
}

func TestInvestorsSaveDealNoteMerges(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	_, err := db.Investors().Get(ctx, "i1")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, db.Users().Register(ctx, core.CollectionInvestors, "i1", "investor", map[string]any{
		"investorName": "Jane",
	}))

	first := core.DealNote{Note: "Invest", Highlights: []string{"h1"}, Fit: []string{"f1"}, CreatedAt: testNow}
	require.NoError(t, db.Investors().SaveDealNote(ctx, "i1", "s1", first))
	second := core.DealNote{Note: "Consider", CreatedAt: testNow.Add(time.Hour)}
	require.NoError(t, db.Investors().SaveDealNote(ctx, "i1", "s2", second))

	investor, err := db.Investors().Get(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, core.Text("Jane"), investor.Profile.InvestorName)
	require.Len(t, investor.DealNotes, 2)
	assert.Equal(t, first, investor.DealNotes["s1"])
	assert.Equal(t, "Consider", investor.DealNotes["s2"].Note)
	assert.Equal(t, []string{}, investor.DealNotes["s2"].Highlights)
}

func TestStartupInsights(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	repo := db.StartupInsights()

	record, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, record)

	err = repo.PatchRedFlags(ctx, "s1", []string{"x"})
	assert.True(t, errors.Is(err, core.ErrNotFound))

	createdAt := testNow.Add(-48 * time.Hour)
	require.NoError(t, repo.Put(ctx, "s1", core.InsightRecord{Insights: "text", CreatedAt: createdAt}))

	record, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, record.RedFlags)
	assert.Nil(t, record.Score)

	require.NoError(t, repo.PatchRedFlags(ctx, "s1", []string{"burn rate"}))
	score := 73
	require.NoError(t, repo.PatchScore(ctx, "s1", []string{"team"}, &score))

	record, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "text", record.Insights)
	assert.Equal(t, []string{"burn rate"}, record.RedFlags)
	assert.Equal(t, []string{"team"}, record.GreenFlags)
	require.NotNil(t, record.Score)
	assert.Equal(t, 73, *record.Score)
	assert.True(t, createdAt.Equal(record.CreatedAt), "patches must not touch createdAt")

	require.NoError(t, repo.Put(ctx, "s1", core.InsightRecord{Insights: "new", RedFlags: []string{"a"}, CreatedAt: testNow}))
	record, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, record.Score, "full write replaces score")
	assert.Empty(t, record.GreenFlags)
}

func TestInvestorInsights(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)
	repo := db.InvestorInsights()

	record, err := repo.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, repo.Put(ctx, "i1", core.InvestorInsightRecord{Insights: "thesis", CreatedAt: testNow}))
	record, err = repo.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "thesis", record.Insights)
	assert.True(t, testNow.Equal(record.CreatedAt))
}

func TestPing(t *testing.T) {
	db, _ := newTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
	assert.NoError(t, db.Close())
}
