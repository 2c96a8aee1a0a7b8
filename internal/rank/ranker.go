// Package rank converts accepted decisions into a composite-scored, sorted
// opportunity list.
package rank

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"edgescout/internal/domain"
)

// Scoring weights for the composite opportunity score.
const (
	edgeWeight       = 0.40
	confidenceWeight = 0.30
	liquidityWeight  = 0.20
	timeWeight       = 0.10
)

// DefaultMinEdge excludes opportunities whose absolute edge is below 5%.
const DefaultMinEdge = 0.05

// Ranker scores and sorts decisions into trade opportunities.
type Ranker struct {
	log     *slog.Logger
	minEdge float64
	now     func() time.Time
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithMinEdge overrides the minimum absolute edge threshold.
func WithMinEdge(minEdge float64) Option {
	return func(r *Ranker) { r.minEdge = minEdge }
}

// WithClock overrides the reference-time source.
func WithClock(now func() time.Time) Option {
	return func(r *Ranker) { r.now = now }
}

// NewRanker builds a Ranker with the default edge threshold.
func NewRanker(log *slog.Logger, opts ...Option) *Ranker {
	r := &Ranker{
		log:     log.With(slog.String("component", "ranker")),
		minEdge: DefaultMinEdge,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank filters and scores decisions against their markets. Decisions whose
// market is missing, whose absolute edge is below the threshold, or whose
// outcome is pass are skipped. The result is sorted by score descending;
// equal scores keep input order.
func (r *Ranker) Rank(decisions []domain.Decision, markets map[string]*domain.Market) []domain.RankedOpportunity {
	now := r.now().UTC()
	r.log.Info("ranking decisions", slog.Int("decisions", len(decisions)), slog.Float64("min_edge", r.minEdge))

	opportunities := make([]domain.RankedOpportunity, 0, len(decisions))
	for i := range decisions {
		d := &decisions[i]

		market, ok := markets[d.MarketID]
		if !ok {
			r.log.Warn("market not found for decision", slog.String("market_id", d.MarketID))
			continue
		}
		if math.Abs(d.Edge) < r.minEdge {
			r.log.Debug("skipping market, edge below threshold",
				slog.String("market_id", d.MarketID), slog.Float64("edge", d.Edge))
			continue
		}
		if d.Outcome == domain.OutcomePass {
			r.log.Debug("skipping market, outcome is pass", slog.String("market_id", d.MarketID))
			continue
		}

		edgeScore := scoreEdge(d.Edge)
		confidenceScore := scoreConfidence(d.ConfidenceLevel)
		liquidityScore := scoreLiquidity(market.Liquidity)
		timeScore := scoreTime(market.EndDate, now)

		composite := edgeScore*edgeWeight +
			confidenceScore*confidenceWeight +
			liquidityScore*liquidityWeight +
			timeScore*timeWeight

		opportunities = append(opportunities, domain.RankedOpportunity{
			Market:          market,
			Decision:        d,
			Score:           composite,
			EdgeScore:       edgeScore,
			ConfidenceScore: confidenceScore,
			LiquidityScore:  liquidityScore,
			TimeScore:       timeScore,
			Explanation:     explanation(market, d, composite, now),
		})
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].Score > opportunities[j].Score
	})

	r.log.Info("ranked opportunities", slog.Int("opportunities", len(opportunities)))
	return opportunities
}

// scoreEdge normalizes the absolute edge linearly, saturating at 20%.
func scoreEdge(edge float64) float64 {
	return math.Min(1.0, math.Abs(edge)/0.20)
}

func scoreConfidence(confidence float64) float64 {
	return clamp01(confidence)
}

// scoreLiquidity scales logarithmically: $1k is 0, $10k about 0.5, $100k is 1.
func scoreLiquidity(liquidity float64) float64 {
	if liquidity <= 0 {
		return 0.0
	}
	return clamp01(math.Log10(liquidity/1000.0) / 2.0)
}

// scoreTime prefers markets resolving in 7 to 30 days. Under a day or past
// 90 days scores zero; an unknown end date is neutral.
func scoreTime(endDate *time.Time, now time.Time) float64 {
	if endDate == nil {
		return 0.5
	}
	if !endDate.After(now) {
		return 0.0
	}
	days := endDate.Sub(now).Hours() / 24

	switch {
	case days >= 7 && days <= 30:
		return 1.0
	case days >= 1 && days < 7:
		return 0.5 + (days-1.0)/6.0*0.5
	case days > 30 && days <= 90:
		return 1.0 - (days-30.0)/60.0*0.5
	default:
		return 0.0
	}
}

func explanation(market *domain.Market, d *domain.Decision, composite float64, now time.Time) string {
	direction := "underpriced"
	if d.Edge > 0 {
		direction = "overpriced"
	}

	timeStr := "unknown"
	if market.EndDate != nil {
		if market.EndDate.After(now) {
			delta := market.EndDate.Sub(now)
			if days := int(delta.Hours() / 24); days > 0 {
				timeStr = fmt.Sprintf("%d days", days)
			} else {
				timeStr = fmt.Sprintf("%d hours", int(delta.Hours()))
			}
		} else {
			timeStr = "resolved"
		}
	}

	return fmt.Sprintf("Score: %.3f | Edge: %.1f%% (%s) | Confidence: %.1f%% | Liquidity: $%s | Time: %s | Decision: %s",
		composite,
		math.Abs(d.Edge)*100,
		direction,
		d.ConfidenceLevel*100,
		formatThousands(market.Liquidity),
		timeStr,
		strings.ToUpper(string(d.Outcome)))
}

// formatThousands renders a dollar amount with comma grouping, no decimals.
func formatThousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
