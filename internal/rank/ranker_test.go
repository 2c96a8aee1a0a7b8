package rank

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgescout/internal/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testRanker(opts ...Option) *Ranker {
	opts = append(opts, WithClock(func() time.Time { return testNow }))
	return NewRanker(slog.Default(), opts...)
}

func marketEndingIn(id string, liquidity float64, d time.Duration) *domain.Market {
	end := testNow.Add(d)
	return &domain.Market{ID: id, Liquidity: liquidity, EndDate: &end}
}

// Fixed regression fixture: edge 0.12 / confidence 0.6 / $50k liquidity /
// 14 days out must produce a composite of 0.6899.
func TestRankWorkedExample(t *testing.T) {
	market := marketEndingIn("mkt-1", 50000, 14*24*time.Hour)
	decisions := []domain.Decision{{
		MarketID:        "mkt-1",
		Edge:            0.12,
		ConfidenceLevel: 0.6,
		Outcome:         domain.OutcomeYes,
	}}

	out := testRanker().Rank(decisions, map[string]*domain.Market{"mkt-1": market})
	require.Len(t, out, 1)

	opp := out[0]
	assert.InDelta(t, 0.60, opp.EdgeScore, 1e-9)
	assert.InDelta(t, 0.60, opp.ConfidenceScore, 1e-9)
	assert.InDelta(t, 0.8494850021680094, opp.LiquidityScore, 1e-9)
	assert.InDelta(t, 1.0, opp.TimeScore, 1e-9)
	assert.InDelta(t, 0.6898970004336019, opp.Score, 1e-9)

	assert.Same(t, market, opp.Market)
	assert.Contains(t, opp.Explanation, "Edge: 12.0% (overpriced)")
	assert.Contains(t, opp.Explanation, "Confidence: 60.0%")
	assert.Contains(t, opp.Explanation, "Liquidity: $50,000")
	assert.Contains(t, opp.Explanation, "Time: 14 days")
	assert.Contains(t, opp.Explanation, "Decision: YES")
}

func TestRankSkipsSmallEdge(t *testing.T) {
	market := marketEndingIn("mkt-1", 50000, 14*24*time.Hour)
	decisions := []domain.Decision{{
		MarketID:        "mkt-1",
		Edge:            0.04,
		ConfidenceLevel: 0.99,
		Outcome:         domain.OutcomeYes,
	}}

	out := testRanker().Rank(decisions, map[string]*domain.Market{"mkt-1": market})
	assert.Empty(t, out)
}

func TestRankSkipsPass(t *testing.T) {
	market := marketEndingIn("mkt-1", 50000, 14*24*time.Hour)
	decisions := []domain.Decision{{
		MarketID:        "mkt-1",
		Edge:            0.30,
		ConfidenceLevel: 0.9,
		Outcome:         domain.OutcomePass,
	}}

	out := testRanker().Rank(decisions, map[string]*domain.Market{"mkt-1": market})
	assert.Empty(t, out)
}

func TestRankSkipsMissingMarket(t *testing.T) {
	decisions := []domain.Decision{{
		MarketID: "ghost",
		Edge:     0.2,
		Outcome:  domain.OutcomeYes,
	}}

	out := testRanker().Rank(decisions, map[string]*domain.Market{})
	assert.Empty(t, out)
}

func TestRankSortsDescendingStable(t *testing.T) {
	markets := map[string]*domain.Market{
		"a": marketEndingIn("a", 50000, 14*24*time.Hour),
		"b": marketEndingIn("b", 50000, 14*24*time.Hour),
		"c": marketEndingIn("c", 50000, 14*24*time.Hour),
	}
	decisions := []domain.Decision{
		{MarketID: "a", Edge: 0.10, ConfidenceLevel: 0.5, Outcome: domain.OutcomeYes},
		{MarketID: "b", Edge: 0.25, ConfidenceLevel: 0.9, Outcome: domain.OutcomeNo},
		{MarketID: "c", Edge: 0.10, ConfidenceLevel: 0.5, Outcome: domain.OutcomeYes},
	}

	out := testRanker().Rank(decisions, markets)
	require.Len(t, out, 3)
	assert.Equal(t, "b", out[0].Market.ID)
	// equal scores keep input order
	assert.Equal(t, "a", out[1].Market.ID)
	assert.Equal(t, "c", out[2].Market.ID)
}

func TestRankCustomMinEdge(t *testing.T) {
	market := marketEndingIn("mkt-1", 50000, 14*24*time.Hour)
	decisions := []domain.Decision{{
		MarketID:        "mkt-1",
		Edge:            -0.08,
		ConfidenceLevel: 0.7,
		Outcome:         domain.OutcomeNo,
	}}

	out := testRanker(WithMinEdge(0.10)).Rank(decisions, map[string]*domain.Market{"mkt-1": market})
	assert.Empty(t, out)

	out = testRanker(WithMinEdge(0.05)).Rank(decisions, map[string]*domain.Market{"mkt-1": market})
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Explanation, "Edge: 8.0% (underpriced)")
	assert.Contains(t, out[0].Explanation, "Decision: NO")
}

func TestScoreEdgeSaturates(t *testing.T) {
	assert.InDelta(t, 0.25, scoreEdge(0.05), 1e-9)
	assert.InDelta(t, 0.5, scoreEdge(-0.10), 1e-9)
	assert.InDelta(t, 1.0, scoreEdge(0.20), 1e-9)
	assert.InDelta(t, 1.0, scoreEdge(0.35), 1e-9)
}

func TestScoreLiquidity(t *testing.T) {
	assert.InDelta(t, 0.0, scoreLiquidity(0), 1e-9)
	assert.InDelta(t, 0.0, scoreLiquidity(-5), 1e-9)
	assert.InDelta(t, 0.0, scoreLiquidity(1000), 1e-9)
	assert.InDelta(t, 0.5, scoreLiquidity(10000), 1e-9)
	assert.InDelta(t, 1.0, scoreLiquidity(100000), 1e-9)
	assert.InDelta(t, 1.0, scoreLiquidity(1000000), 1e-9)
}

func TestScoreTimeBreakpoints(t *testing.T) {
	day := 24 * time.Hour

	cases := []struct {
		name string
		d    time.Duration
		want float64
	}{
		{"one day", 1 * day, 0.5},
		{"four days", 4 * day, 0.75},
		{"seven days", 7 * day, 1.0},
		{"thirty days", 30 * day, 1.0},
		{"sixty days", 60 * day, 0.75},
		{"ninety days", 90 * day, 0.5},
		{"half day", 12 * time.Hour, 0.0},
		{"hundred days", 100 * day, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end := testNow.Add(tc.d)
			assert.InDelta(t, tc.want, scoreTime(&end, testNow), 1e-9)
		})
	}

	t.Run("nil end date", func(t *testing.T) {
		assert.InDelta(t, 0.5, scoreTime(nil, testNow), 1e-9)
	})
	t.Run("resolved", func(t *testing.T) {
		past := testNow.Add(-day)
		assert.InDelta(t, 0.0, scoreTime(&past, testNow), 1e-9)
	})
}

func TestFormatThousands(t *testing.T) {
	assert.Equal(t, "0", formatThousands(0))
	assert.Equal(t, "999", formatThousands(999))
	assert.Equal(t, "1,000", formatThousands(1000))
	assert.Equal(t, "50,000", formatThousands(50000))
	assert.Equal(t, "1,234,568", formatThousands(1234567.6))
	assert.Equal(t, "-2,500", formatThousands(-2500))
}
