package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgescout/internal/domain"
	"edgescout/internal/rank"
)

type fakeFetcher struct {
	markets []domain.Market
	err     error
}

func (f *fakeFetcher) FetchActiveMarkets(context.Context, int) ([]domain.Market, error) {
	return f.markets, f.err
}

type fakeEvaluator struct {
	decisions map[string]domain.FilterDecision
}

func (f *fakeEvaluator) Evaluate(m domain.Market) domain.FilterDecision {
	if d, ok := f.decisions[m.ID]; ok {
		return d
	}
	return domain.FilterDecision{MarketID: m.ID}
}

type fakeResearcher struct {
	fail  map[string]bool
	calls []string
}

func (f *fakeResearcher) Research(_ context.Context, m domain.Market) (domain.EvidenceRecord, error) {
	f.calls = append(f.calls, m.ID)
	if f.fail[m.ID] {
		return domain.EvidenceRecord{}, errors.New("provider unavailable")
	}
	return domain.EvidenceRecord{
		RecentDevelopments: []string{"update for " + m.ID},
		SourceQuality:      domain.SourceQualityMedium,
	}, nil
}

type fakeJudge struct {
	fail  map[string]bool
	edges map[string]float64
	calls []string
}

func (f *fakeJudge) Judge(_ context.Context, m domain.Market, _ domain.EvidenceRecord) (domain.Decision, error) {
	f.calls = append(f.calls, m.ID)
	if f.fail[m.ID] {
		return domain.Decision{}, errors.New("validation failed")
	}
	edge := f.edges[m.ID]
	outcome := domain.OutcomePass
	if edge > 0.05 {
		outcome = domain.OutcomeYes
	} else if edge < -0.05 {
		outcome = domain.OutcomeNo
	}
	return domain.Decision{
		MarketID:             m.ID,
		EstimatedProbability: m.Probability + edge,
		ConfidenceLevel:      0.7,
		Edge:                 edge,
		Outcome:              outcome,
		ReasoningSummary:     "fixture decision",
	}, nil
}

type recordingStores struct {
	evidence    []string
	decisions   []string
	predictions []string
	upserts     int
}

func (r *recordingStores) Append(_ context.Context, marketID string, _ domain.EvidenceRecord, _ time.Time) error {
	r.evidence = append(r.evidence, marketID)
	return nil
}

func (r *recordingStores) Latest(context.Context, string) (domain.EvidenceRecord, time.Time, error) {
	return domain.EvidenceRecord{}, time.Time{}, domain.ErrNotFound
}

func (r *recordingStores) ListByMarket(context.Context, string, domain.ListOpts) ([]domain.EvidenceRecord, error) {
	return nil, nil
}

type recordingDecisionStore struct{ r *recordingStores }

func (s recordingDecisionStore) Append(_ context.Context, d domain.Decision) error {
	s.r.decisions = append(s.r.decisions, d.MarketID)
	return nil
}

func (s recordingDecisionStore) Latest(context.Context, string) (domain.Decision, error) {
	return domain.Decision{}, domain.ErrNotFound
}

func (s recordingDecisionStore) ListByMarket(context.Context, string, domain.ListOpts) ([]domain.Decision, error) {
	return nil, nil
}

func (s recordingDecisionStore) ListByMinEdge(context.Context, float64, domain.ListOpts) ([]domain.Decision, error) {
	return nil, nil
}

type recordingPredictionStore struct{ r *recordingStores }

func (s recordingPredictionStore) Append(_ context.Context, e domain.PredictionLogEntry) error {
	s.r.predictions = append(s.r.predictions, e.MarketID)
	return nil
}

func (s recordingPredictionStore) ListByMarket(context.Context, string, domain.ListOpts) ([]domain.PredictionLogEntry, error) {
	return nil, nil
}

func (s recordingPredictionStore) Count(context.Context) (int64, error) { return 0, nil }

type recordingMarketStore struct{ r *recordingStores }

func (s recordingMarketStore) Upsert(context.Context, domain.Market) error { return nil }

func (s recordingMarketStore) UpsertBatch(_ context.Context, markets []domain.Market) error {
	s.r.upserts += len(markets)
	return nil
}

func (s recordingMarketStore) GetByID(context.Context, string) (domain.Market, error) {
	return domain.Market{}, domain.ErrNotFound
}

func (s recordingMarketStore) GetBySlug(context.Context, string) (domain.Market, error) {
	return domain.Market{}, domain.ErrNotFound
}

func (s recordingMarketStore) List(context.Context, domain.ListOpts) ([]domain.Market, error) {
	return nil, nil
}

func (s recordingMarketStore) Count(context.Context) (int64, error) { return 0, nil }

var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func testMarket(id string, liquidity, volume float64) domain.Market {
	end := testNow.Add(14 * 24 * time.Hour)
	return domain.Market{
		ID:          id,
		Title:       "Market " + id,
		Probability: 0.40,
		Liquidity:   liquidity,
		Volume24h:   volume,
		EndDate:     &end,
	}
}

func worthyDecision(id string, priority domain.Priority) domain.FilterDecision {
	return domain.FilterDecision{MarketID: id, ResearchWorthy: true, Priority: priority}
}

func defaultCriteria() Criteria {
	return Criteria{
		MinLiquidityUSD:     1000,
		MinVolume24hUSD:     500,
		MinDaysToResolution: 1,
		MaxDaysToResolution: 90,
	}
}

func defaultCaps() Caps {
	return Caps{MaxMarketsToScan: 100, MaxMarketsToResearch: 10, MaxMarketsToJudge: 5}
}

func newTestOrchestrator(t *testing.T, fetcher *fakeFetcher, evaluator *fakeEvaluator, researcher *fakeResearcher, judger *fakeJudge, stores *recordingStores) *Orchestrator {
	t.Helper()
	log := slog.Default()
	opts := []Option{WithClock(func() time.Time { return testNow })}
	if stores != nil {
		opts = append(opts, WithStores(
			recordingMarketStore{stores}, stores,
			recordingDecisionStore{stores}, recordingPredictionStore{stores},
		))
	}
	return NewOrchestrator(
		fetcher, evaluator, researcher, judger,
		rank.NewRanker(log, rank.WithClock(func() time.Time { return testNow })),
		defaultCriteria(), defaultCaps(), log, opts...,
	)
}

func TestRunFullPipeline(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{
		testMarket("m-1", 50000, 4000),
		testMarket("m-2", 20000, 1500),
		testMarket("m-3", 100, 4000), // fails liquidity floor
	}}
	evaluator := &fakeEvaluator{decisions: map[string]domain.FilterDecision{
		"m-1": worthyDecision("m-1", domain.PriorityHigh),
		"m-2": worthyDecision("m-2", domain.PriorityMedium),
	}}
	researcher := &fakeResearcher{}
	judger := &fakeJudge{edges: map[string]float64{"m-1": 0.12, "m-2": -0.08}}
	stores := &recordingStores{}

	o := newTestOrchestrator(t, fetcher, evaluator, researcher, judger, stores)

	opps, err := o.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, opps, 2)

	// High priority researched first.
	assert.Equal(t, []string{"m-1", "m-2"}, researcher.calls)
	assert.Equal(t, []string{"m-1", "m-2"}, judger.calls)

	// Everything persisted.
	assert.Equal(t, 3, stores.upserts)
	assert.Equal(t, []string{"m-1", "m-2"}, stores.evidence)
	assert.Equal(t, []string{"m-1", "m-2"}, stores.decisions)
	assert.Equal(t, []string{"m-1", "m-2"}, stores.predictions)
}

func TestRunFetchErrorAborts(t *testing.T) {
	o := newTestOrchestrator(t,
		&fakeFetcher{err: errors.New("gateway timeout")},
		&fakeEvaluator{}, &fakeResearcher{}, &fakeJudge{}, nil)

	_, err := o.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPipelineAborted))
}

func TestRunEmptyFetchAborts(t *testing.T) {
	o := newTestOrchestrator(t, &fakeFetcher{}, &fakeEvaluator{}, &fakeResearcher{}, &fakeJudge{}, nil)

	_, err := o.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPipelineAborted))
	assert.True(t, errors.Is(err, domain.ErrStageEmpty))
}

func TestRunNoWorthyMarketsAborts(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{testMarket("m-1", 50000, 4000)}}
	o := newTestOrchestrator(t, fetcher, &fakeEvaluator{}, &fakeResearcher{}, &fakeJudge{}, nil)

	_, err := o.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStageEmpty))
}

func TestRunResearchFailureSkipsMarket(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{
		testMarket("m-1", 50000, 4000),
		testMarket("m-2", 20000, 1500),
	}}
	evaluator := &fakeEvaluator{decisions: map[string]domain.FilterDecision{
		"m-1": worthyDecision("m-1", domain.PriorityHigh),
		"m-2": worthyDecision("m-2", domain.PriorityHigh),
	}}
	researcher := &fakeResearcher{fail: map[string]bool{"m-1": true}}
	judger := &fakeJudge{edges: map[string]float64{"m-2": 0.10}}

	o := newTestOrchestrator(t, fetcher, evaluator, researcher, judger, nil)

	opps, err := o.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, "m-2", opps[0].Market.ID)
	assert.Equal(t, []string{"m-2"}, judger.calls)
}

func TestRunAllJudgmentsFailAborts(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{testMarket("m-1", 50000, 4000)}}
	evaluator := &fakeEvaluator{decisions: map[string]domain.FilterDecision{
		"m-1": worthyDecision("m-1", domain.PriorityHigh),
	}}
	judger := &fakeJudge{fail: map[string]bool{"m-1": true}}

	o := newTestOrchestrator(t, fetcher, evaluator, &fakeResearcher{}, judger, nil)

	_, err := o.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPipelineAborted))
	assert.True(t, errors.Is(err, domain.ErrStageEmpty))
}

func TestRunSmallEdgesAreNormalOutcome(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{testMarket("m-1", 50000, 4000)}}
	evaluator := &fakeEvaluator{decisions: map[string]domain.FilterDecision{
		"m-1": worthyDecision("m-1", domain.PriorityHigh),
	}}
	judger := &fakeJudge{edges: map[string]float64{"m-1": 0.01}}

	o := newTestOrchestrator(t, fetcher, evaluator, &fakeResearcher{}, judger, nil)

	opps, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestRunResearchCapKeepsPriorityOrder(t *testing.T) {
	markets := []domain.Market{
		testMarket("m-low", 50000, 4000),
		testMarket("m-high-1", 50000, 4000),
		testMarket("m-med", 50000, 4000),
		testMarket("m-high-2", 50000, 4000),
	}
	fetcher := &fakeFetcher{markets: markets}
	evaluator := &fakeEvaluator{decisions: map[string]domain.FilterDecision{
		"m-low":    worthyDecision("m-low", domain.PriorityLow),
		"m-high-1": worthyDecision("m-high-1", domain.PriorityHigh),
		"m-med":    worthyDecision("m-med", domain.PriorityMedium),
		"m-high-2": worthyDecision("m-high-2", domain.PriorityHigh),
	}}
	researcher := &fakeResearcher{}
	judger := &fakeJudge{edges: map[string]float64{
		"m-high-1": 0.10, "m-high-2": 0.10, "m-med": 0.10,
	}}

	o := NewOrchestrator(fetcher, evaluator, researcher, judger,
		rank.NewRanker(slog.Default(), rank.WithClock(func() time.Time { return testNow })),
		defaultCriteria(),
		Caps{MaxMarketsToScan: 100, MaxMarketsToResearch: 3, MaxMarketsToJudge: 5},
		slog.Default(),
		WithClock(func() time.Time { return testNow }),
	)

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	// High-priority markets first in fetch order, then medium; low is cut.
	assert.Equal(t, []string{"m-high-1", "m-high-2", "m-med"}, researcher.calls)
}

func TestHardFilterResolutionWindow(t *testing.T) {
	far := testNow.Add(200 * 24 * time.Hour)
	soon := testNow.Add(2 * time.Hour)
	noDate := testMarket("m-nodate", 50000, 4000)
	noDate.EndDate = nil

	farMarket := testMarket("m-far", 50000, 4000)
	farMarket.EndDate = &far
	soonMarket := testMarket("m-soon", 50000, 4000)
	soonMarket.EndDate = &soon

	o := newTestOrchestrator(t, &fakeFetcher{}, &fakeEvaluator{}, &fakeResearcher{}, &fakeJudge{}, nil)

	out := o.hardFilter(context.Background(), []domain.Market{
		farMarket, soonMarket, noDate, testMarket("m-ok", 50000, 4000),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "m-ok", out[0].ID)
}
