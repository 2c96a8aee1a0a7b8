// Package pipeline coordinates the research run: fetch, filter, research,
// judge, rank, and the best-effort persistence and reporting around it.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"edgescout/internal/domain"
	"edgescout/internal/notify"
	"edgescout/internal/report"
)

// MarketFetcher retrieves active markets from the market platform.
type MarketFetcher interface {
	FetchActiveMarkets(ctx context.Context, limit int) ([]domain.Market, error)
}

// WorthinessEvaluator scores a market's research worthiness.
type WorthinessEvaluator interface {
	Evaluate(m domain.Market) domain.FilterDecision
}

// Researcher gathers evidence for a market.
type Researcher interface {
	Research(ctx context.Context, m domain.Market) (domain.EvidenceRecord, error)
}

// Judge turns a market plus evidence into a decision.
type Judge interface {
	Judge(ctx context.Context, m domain.Market, evidence domain.EvidenceRecord) (domain.Decision, error)
}

// Ranker orders decisions into tradeable opportunities.
type Ranker interface {
	Rank(decisions []domain.Decision, markets map[string]*domain.Market) []domain.RankedOpportunity
}

// Criteria is the hard pre-filter applied before any scoring.
type Criteria struct {
	MinLiquidityUSD     float64
	MinVolume24hUSD     float64
	MinDaysToResolution float64
	MaxDaysToResolution float64
}

// Caps bound how much work a single run performs.
type Caps struct {
	MaxMarketsToScan     int
	MaxMarketsToResearch int
	MaxMarketsToJudge    int
}

// Orchestrator executes the research pipeline end to end. The scoring stages
// are required; stores, cache, archiver, notifier, and reporter are optional
// best-effort sinks that never fail a run.
type Orchestrator struct {
	fetcher   MarketFetcher
	evaluator WorthinessEvaluator
	research  Researcher
	judge     Judge
	ranker    Ranker

	criteria Criteria
	caps     Caps

	markets     domain.MarketStore
	evidence    domain.EvidenceStore
	decisions   domain.DecisionStore
	predictions domain.PredictionLogStore
	cache       domain.MarketCache
	archiver    domain.RunArchiver
	notifier    *notify.Notifier
	console     *report.ConsoleReporter

	log *slog.Logger
	now func() time.Time
}

// Option configures optional orchestrator sinks.
type Option func(*Orchestrator)

// WithStores wires the persistence sinks.
func WithStores(markets domain.MarketStore, evidence domain.EvidenceStore, decisions domain.DecisionStore, predictions domain.PredictionLogStore) Option {
	return func(o *Orchestrator) {
		o.markets = markets
		o.evidence = evidence
		o.decisions = decisions
		o.predictions = predictions
	}
}

// WithCache wires the market cache refresh.
func WithCache(cache domain.MarketCache) Option {
	return func(o *Orchestrator) { o.cache = cache }
}

// WithArchiver wires run snapshot archival.
func WithArchiver(archiver domain.RunArchiver) Option {
	return func(o *Orchestrator) { o.archiver = archiver }
}

// WithNotifier wires the notification dispatch.
func WithNotifier(notifier *notify.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = notifier }
}

// WithConsoleReporter wires the console table output.
func WithConsoleReporter(console *report.ConsoleReporter) Option {
	return func(o *Orchestrator) { o.console = console }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator builds an Orchestrator from the required stages and
// optional sinks.
func NewOrchestrator(
	fetcher MarketFetcher,
	evaluator WorthinessEvaluator,
	researcher Researcher,
	judger Judge,
	ranker Ranker,
	criteria Criteria,
	caps Caps,
	log *slog.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		fetcher:   fetcher,
		evaluator: evaluator,
		research:  researcher,
		judge:     judger,
		ranker:    ranker,
		criteria:  criteria,
		caps:      caps,
		log:       log.With(slog.String("component", "pipeline")),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one full pipeline pass and returns the ranked opportunities.
// An empty result with a nil error means the run completed but nothing met
// the edge threshold. A non-nil error wraps domain.ErrPipelineAborted.
func (o *Orchestrator) Run(ctx context.Context) ([]domain.RankedOpportunity, error) {
	runID := uuid.New().String()
	startedAt := o.now().UTC()
	log := o.log.With(slog.String("run_id", runID))

	log.InfoContext(ctx, "pipeline run starting")

	// Stage 1: fetch.
	markets, err := o.fetcher.FetchActiveMarkets(ctx, o.caps.MaxMarketsToScan)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w: fetch markets: %w", domain.ErrPipelineAborted, err)
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("pipeline: %w: no markets fetched: %w", domain.ErrPipelineAborted, domain.ErrStageEmpty)
	}
	log.InfoContext(ctx, "markets fetched", slog.Int("count", len(markets)))

	o.persistMarkets(ctx, markets)

	// Stage 2: hard filter.
	filtered := o.hardFilter(ctx, markets)
	log.InfoContext(ctx, "markets passed hard filter",
		slog.Int("in", len(markets)), slog.Int("out", len(filtered)))
	if len(filtered) == 0 {
		return nil, fmt.Errorf("pipeline: %w: no markets passed filter criteria: %w", domain.ErrPipelineAborted, domain.ErrStageEmpty)
	}

	// Stage 3: research worthiness.
	worthy := o.evaluateWorthiness(ctx, filtered)
	log.InfoContext(ctx, "markets passed worthiness evaluation",
		slog.Int("in", len(filtered)), slog.Int("out", len(worthy)))
	if len(worthy) == 0 {
		return nil, fmt.Errorf("pipeline: %w: no markets are research-worthy: %w", domain.ErrPipelineAborted, domain.ErrStageEmpty)
	}

	// Stage 4: evidence gathering.
	researched := o.gatherEvidence(ctx, worthy)
	log.InfoContext(ctx, "markets researched",
		slog.Int("in", len(worthy)), slog.Int("out", len(researched)))
	if len(researched) == 0 {
		return nil, fmt.Errorf("pipeline: %w: no markets were researched: %w", domain.ErrPipelineAborted, domain.ErrStageEmpty)
	}

	// Stage 5: judgment.
	decisions, marketsByID := o.judgeMarkets(ctx, researched)
	log.InfoContext(ctx, "decisions made",
		slog.Int("in", len(researched)), slog.Int("out", len(decisions)))
	if len(decisions) == 0 {
		return nil, fmt.Errorf("pipeline: %w: no decisions were made: %w", domain.ErrPipelineAborted, domain.ErrStageEmpty)
	}

	// Stage 6: ranking. An empty result here is a normal outcome.
	opportunities := o.ranker.Rank(decisions, marketsByID)
	log.InfoContext(ctx, "opportunities ranked",
		slog.Int("in", len(decisions)), slog.Int("out", len(opportunities)))

	o.finishRun(ctx, runID, startedAt, opportunities)

	return opportunities, nil
}

// hardFilter applies the liquidity, volume, and resolution-window criteria.
func (o *Orchestrator) hardFilter(ctx context.Context, markets []domain.Market) []domain.Market {
	now := o.now().UTC()
	out := make([]domain.Market, 0, len(markets))

	for _, m := range markets {
		if m.Liquidity < o.criteria.MinLiquidityUSD {
			o.log.DebugContext(ctx, "market filtered: liquidity below floor",
				slog.String("market_id", m.ID), slog.Float64("liquidity", m.Liquidity))
			continue
		}
		if m.Volume24h < o.criteria.MinVolume24hUSD {
			o.log.DebugContext(ctx, "market filtered: volume below floor",
				slog.String("market_id", m.ID), slog.Float64("volume_24h", m.Volume24h))
			continue
		}
		if days, ok := m.DaysToResolution(now); ok {
			if days < o.criteria.MinDaysToResolution || days > o.criteria.MaxDaysToResolution {
				o.log.DebugContext(ctx, "market filtered: outside resolution window",
					slog.String("market_id", m.ID), slog.Float64("days", days))
				continue
			}
		} else if o.criteria.MinDaysToResolution > 0 {
			o.log.DebugContext(ctx, "market filtered: no end date",
				slog.String("market_id", m.ID))
			continue
		}
		out = append(out, m)
	}
	return out
}

type worthyMarket struct {
	market   domain.Market
	decision domain.FilterDecision
}

// evaluateWorthiness scores each market, keeps the worthy ones sorted by
// priority (high first, stable within a tier), and caps the result.
func (o *Orchestrator) evaluateWorthiness(ctx context.Context, markets []domain.Market) []worthyMarket {
	worthy := make([]worthyMarket, 0, len(markets))

	for _, m := range markets {
		decision, ok := o.safeEvaluate(ctx, m)
		if !ok {
			continue
		}
		if !decision.ResearchWorthy {
			o.log.DebugContext(ctx, "market not research-worthy",
				slog.String("market_id", m.ID),
				slog.String("reasoning", decision.ReasoningSummary))
			continue
		}
		worthy = append(worthy, worthyMarket{market: m, decision: decision})
	}

	sort.SliceStable(worthy, func(i, j int) bool {
		return worthy[i].decision.Priority.Rank() > worthy[j].decision.Priority.Rank()
	})

	if o.caps.MaxMarketsToResearch > 0 && len(worthy) > o.caps.MaxMarketsToResearch {
		worthy = worthy[:o.caps.MaxMarketsToResearch]
	}
	return worthy
}

// safeEvaluate runs the evaluator, turning a panic into a logged skip.
func (o *Orchestrator) safeEvaluate(ctx context.Context, m domain.Market) (decision domain.FilterDecision, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.log.ErrorContext(ctx, "worthiness evaluation panicked",
				slog.String("market_id", m.ID), slog.Any("panic", r))
			ok = false
		}
	}()
	return o.evaluator.Evaluate(m), true
}

type researchedMarket struct {
	market   domain.Market
	evidence domain.EvidenceRecord
}

// gatherEvidence researches each market, skipping failures.
func (o *Orchestrator) gatherEvidence(ctx context.Context, worthy []worthyMarket) []researchedMarket {
	researched := make([]researchedMarket, 0, len(worthy))

	for _, w := range worthy {
		m := w.market
		o.log.InfoContext(ctx, "researching market",
			slog.String("market_id", m.ID), slog.String("title", truncate(m.Title, 50)))

		evidence, err := o.research.Research(ctx, m)
		if err != nil {
			o.log.WarnContext(ctx, "research failed, skipping market",
				slog.String("market_id", m.ID), slog.String("error", err.Error()))
			continue
		}

		if o.evidence != nil {
			if err := o.evidence.Append(ctx, m.ID, evidence, o.now().UTC()); err != nil {
				o.log.WarnContext(ctx, "evidence persist failed",
					slog.String("market_id", m.ID), slog.String("error", err.Error()))
			}
		}

		researched = append(researched, researchedMarket{market: m, evidence: evidence})
	}
	return researched
}

// judgeMarkets evaluates decisions over a capped subset of researched markets
// in discovery order, skipping failures.
func (o *Orchestrator) judgeMarkets(ctx context.Context, researched []researchedMarket) ([]domain.Decision, map[string]*domain.Market) {
	if o.caps.MaxMarketsToJudge > 0 && len(researched) > o.caps.MaxMarketsToJudge {
		researched = researched[:o.caps.MaxMarketsToJudge]
	}

	decisions := make([]domain.Decision, 0, len(researched))
	marketsByID := make(map[string]*domain.Market, len(researched))

	for i := range researched {
		m := researched[i].market
		o.log.InfoContext(ctx, "judging market",
			slog.String("market_id", m.ID), slog.String("title", truncate(m.Title, 50)))

		decision, err := o.judge.Judge(ctx, m, researched[i].evidence)
		if err != nil {
			o.log.WarnContext(ctx, "judgment failed, skipping market",
				slog.String("market_id", m.ID), slog.String("error", err.Error()))
			continue
		}

		o.persistDecision(ctx, m, decision)

		decisions = append(decisions, decision)
		marketsByID[m.ID] = &researched[i].market

		o.log.InfoContext(ctx, "decision made",
			slog.String("market_id", m.ID),
			slog.String("outcome", string(decision.Outcome)),
			slog.Float64("edge", decision.Edge))
	}
	return decisions, marketsByID
}

// persistMarkets upserts fetched markets and refreshes the cache. Failures
// are logged and ignored.
func (o *Orchestrator) persistMarkets(ctx context.Context, markets []domain.Market) {
	if o.markets != nil {
		if err := o.markets.UpsertBatch(ctx, markets); err != nil {
			o.log.WarnContext(ctx, "market persist failed", slog.String("error", err.Error()))
		}
	}
	if o.cache != nil {
		for _, m := range markets {
			if err := o.cache.Set(ctx, m); err != nil {
				o.log.WarnContext(ctx, "market cache refresh failed",
					slog.String("market_id", m.ID), slog.String("error", err.Error()))
				break
			}
		}
	}
}

// persistDecision appends the decision and its prediction-log snapshot.
// Failures are logged and ignored.
func (o *Orchestrator) persistDecision(ctx context.Context, m domain.Market, decision domain.Decision) {
	if o.decisions != nil {
		if err := o.decisions.Append(ctx, decision); err != nil {
			o.log.WarnContext(ctx, "decision persist failed",
				slog.String("market_id", m.ID), slog.String("error", err.Error()))
		}
	}
	if o.predictions != nil {
		entry := domain.PredictionLogEntry{
			MarketID:             decision.MarketID,
			MarketProbability:    m.Probability,
			EstimatedProbability: decision.EstimatedProbability,
			ConfidenceLevel:      decision.ConfidenceLevel,
			Edge:                 decision.Edge,
			Outcome:              decision.Outcome,
			LoggedAt:             o.now().UTC(),
		}
		if err := o.predictions.Append(ctx, entry); err != nil {
			o.log.WarnContext(ctx, "prediction log persist failed",
				slog.String("market_id", m.ID), slog.String("error", err.Error()))
		}
	}
}

// finishRun performs the best-effort reporting tail: console table, run
// archival, and notification.
func (o *Orchestrator) finishRun(ctx context.Context, runID string, startedAt time.Time, opportunities []domain.RankedOpportunity) {
	if o.console != nil {
		o.console.Render(opportunities, o.now().UTC())
	}

	if o.archiver != nil {
		path, err := o.archiver.ArchiveRun(ctx, runID, startedAt, opportunities)
		if err != nil {
			o.log.WarnContext(ctx, "run archival failed", slog.String("error", err.Error()))
		} else {
			o.log.InfoContext(ctx, "run archived", slog.String("path", path))
		}
	}

	if o.notifier != nil && len(opportunities) > 0 {
		title := fmt.Sprintf("Opportunity Report: %d found", len(opportunities))
		message := notify.FormatOpportunities(opportunities, 5)
		if err := o.notifier.Notify(ctx, "opportunities", title, message); err != nil {
			o.log.WarnContext(ctx, "notification failed", slog.String("error", err.Error()))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
