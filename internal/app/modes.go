package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"edgescout/internal/domain"
	"edgescout/internal/filter"
	"edgescout/internal/judge"
	"edgescout/internal/pipeline"
	"edgescout/internal/platform/anthropic"
	"edgescout/internal/platform/perplexity"
	"edgescout/internal/platform/polymarket"
	"edgescout/internal/rank"
	"edgescout/internal/report"
	"edgescout/internal/research"
)

// buildOrchestrator assembles the pipeline stages and sinks from the wired
// dependencies.
func (a *App) buildOrchestrator(deps *Dependencies) *pipeline.Orchestrator {
	gamma := polymarket.NewGammaClient(
		a.cfg.Polymarket.GammaHost,
		a.cfg.Polymarket.ApiTimeout.Duration,
		a.base,
	)

	evaluator := filter.NewEvaluator(a.base)

	researcher := research.NewAgent(
		perplexity.NewClient(perplexity.Config{
			BaseURL:     a.cfg.Perplexity.BaseURL,
			APIKey:      a.cfg.Perplexity.ApiKey,
			Model:       a.cfg.Perplexity.Model,
			Temperature: a.cfg.Perplexity.Temperature,
			MaxTokens:   a.cfg.Perplexity.MaxTokens,
			Timeout:     a.cfg.Perplexity.Timeout.Duration,
		}, deps.ResearchLimiter, a.base),
		a.base,
		research.DefaultPolicy(),
	)

	judger := judge.NewAgent(
		anthropic.NewClient(anthropic.Config{
			BaseURL:     a.cfg.Anthropic.BaseURL,
			APIKey:      a.cfg.Anthropic.ApiKey,
			Model:       a.cfg.Anthropic.Model,
			Temperature: a.cfg.Anthropic.Temperature,
			MaxTokens:   a.cfg.Anthropic.MaxTokens,
			Timeout:     a.cfg.Anthropic.Timeout.Duration,
		}, deps.JudgmentLimiter, a.base),
		a.base,
		judge.DefaultPolicy(),
	)

	ranker := rank.NewRanker(a.base, rank.WithMinEdge(a.cfg.Pipeline.MinEdge))

	opts := []pipeline.Option{
		pipeline.WithStores(deps.MarketStore, deps.EvidenceStore, deps.DecisionStore, deps.PredictionLog),
		pipeline.WithCache(deps.MarketCache),
		pipeline.WithNotifier(deps.Notifier),
	}
	if deps.Archiver != nil {
		opts = append(opts, pipeline.WithArchiver(deps.Archiver))
	}
	if a.cfg.Report.Console {
		opts = append(opts, pipeline.WithConsoleReporter(
			report.NewConsoleReporter(os.Stdout, a.cfg.Report.MaxOpportunities),
		))
	}

	return pipeline.NewOrchestrator(
		gamma,
		evaluator,
		researcher,
		judger,
		ranker,
		pipeline.Criteria{
			MinLiquidityUSD:     a.cfg.Pipeline.MinLiquidityUSD,
			MinVolume24hUSD:     a.cfg.Pipeline.MinVolume24hUSD,
			MinDaysToResolution: float64(a.cfg.Pipeline.MinDaysToResolution),
			MaxDaysToResolution: float64(a.cfg.Pipeline.MaxDaysToResolution),
		},
		pipeline.Caps{
			MaxMarketsToScan:     a.cfg.Pipeline.MaxMarketsToScan,
			MaxMarketsToResearch: a.cfg.Pipeline.MaxMarketsToResearch,
			MaxMarketsToJudge:    a.cfg.Pipeline.MaxMarketsToJudge,
		},
		a.base,
		opts...,
	)
}

// OnceMode executes a single pipeline run, prints the full opportunity report
// to stdout, and returns ErrNoOpportunities when the run found nothing.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting run-once mode")

	orch := a.buildOrchestrator(deps)

	opportunities, err := orch.Run(ctx)
	if err != nil {
		_ = deps.Notifier.Notify(ctx, "error", "Pipeline Run Failed", err.Error())
		return fmt.Errorf("app: pipeline run: %w", err)
	}

	fmt.Println(report.Generate(opportunities, time.Now().UTC(), a.cfg.Report.MaxOpportunities))

	if len(opportunities) == 0 {
		return ErrNoOpportunities
	}
	return nil
}

// ScheduledMode executes one run immediately, then hands the pipeline to the
// scheduler at the configured interval until the context is cancelled.
func (a *App) ScheduledMode(ctx context.Context, deps *Dependencies) error {
	interval := a.cfg.Pipeline.ScanInterval.Duration
	a.logger.InfoContext(ctx, "starting scheduled mode",
		slog.Duration("interval", interval))

	orch := a.buildOrchestrator(deps)

	runFn := func(ctx context.Context) {
		opportunities, err := orch.Run(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			a.logger.ErrorContext(ctx, "scheduled run failed",
				slog.String("error", err.Error()))
			_ = deps.Notifier.Notify(ctx, "error", "Pipeline Run Failed", err.Error())
			return
		}
		a.logger.InfoContext(ctx, "scheduled run complete",
			slog.Int("opportunities", len(opportunities)))
	}

	sched := pipeline.NewScheduler(a.base, deps.LockManager)
	if err := sched.Start(ctx, runFn, interval); err != nil {
		return fmt.Errorf("app: start scheduler: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	// The scheduler first fires after one full interval; the initial run
	// happens here.
	g.Go(func() error {
		runFn(ctx)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		if err := sched.Stop(true); err != nil && !errors.Is(err, domain.ErrSchedulerStopped) {
			a.logger.Warn("scheduler stop", slog.String("error", err.Error()))
		}
		return ctx.Err()
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		a.logger.Info("scheduled mode stopped")
		return context.Canceled
	}
	return err
}

// StatusMode prints a connectivity and scheduler summary to stdout.
func (a *App) StatusMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting status mode")

	fmt.Println("edgescout status")

	marketCount, err := deps.MarketStore.Count(ctx)
	if err != nil {
		fmt.Printf("  postgres:  error (%v)\n", err)
	} else {
		predictionCount, perr := deps.PredictionLog.Count(ctx)
		if perr != nil {
			fmt.Printf("  postgres:  ok (markets=%d)\n", marketCount)
		} else {
			fmt.Printf("  postgres:  ok (markets=%d, predictions=%d)\n", marketCount, predictionCount)
		}
	}

	// Probing the scheduler lock tells us whether a run is in progress
	// somewhere. A successful acquire is released immediately.
	unlock, err := deps.LockManager.Acquire(ctx, pipeline.SchedulerLockKey, 5*time.Second)
	switch {
	case err == nil:
		unlock()
		fmt.Println("  scheduler: idle (no run in progress)")
	case errors.Is(err, domain.ErrLockHeld):
		fmt.Println("  scheduler: run in progress")
	default:
		fmt.Printf("  scheduler: unknown (%v)\n", err)
	}

	if deps.Archiver != nil {
		if runs, err := deps.BlobReader.List(ctx, "runs/"); err == nil {
			fmt.Printf("  archival:  enabled (bucket=%s, runs=%d)\n", a.cfg.S3.Bucket, len(runs))
		} else {
			fmt.Printf("  archival:  enabled (bucket=%s, list error: %v)\n", a.cfg.S3.Bucket, err)
		}
	} else {
		fmt.Println("  archival:  disabled")
	}

	fmt.Printf("  interval:  %s\n", a.cfg.Pipeline.ScanInterval.Duration)
	fmt.Printf("  min edge:  %.0f%%\n", a.cfg.Pipeline.MinEdge*100)

	return nil
}
