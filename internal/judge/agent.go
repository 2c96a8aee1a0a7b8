// Package judge estimates true market probability against the market-implied
// probability and derives a trade recommendation.
package judge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"edgescout/internal/domain"
	"edgescout/internal/jsonblock"
	"edgescout/internal/retry"
)

// Provider is the external judgment call.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DefaultPolicy retries judgment twice with no delay between attempts.
func DefaultPolicy() retry.Policy {
	return retry.Immediate(2)
}

// Agent runs the judgment protocol for one market at a time.
type Agent struct {
	provider Provider
	log      *slog.Logger
	policy   retry.Policy
	now      func() time.Time
}

// Option configures an Agent.
type Option func(*Agent)

// WithClock overrides the decision timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// NewAgent builds a judgment agent with the given retry policy.
func NewAgent(provider Provider, log *slog.Logger, policy retry.Policy, opts ...Option) *Agent {
	a := &Agent{
		provider: provider,
		log:      log.With(slog.String("component", "judge")),
		policy:   policy,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Judge calls the judgment provider with a deterministic prompt built from
// the market and its evidence, validates the response, and builds a Decision.
// Malformed responses are retried immediately; exhausting the budget returns
// an error wrapping domain.ErrProviderExhausted.
func (a *Agent) Judge(ctx context.Context, m domain.Market, evidence domain.EvidenceRecord) (domain.Decision, error) {
	now := a.now().UTC()
	a.log.Info("judging market", slog.String("market_id", m.ID), slog.String("title", truncate(m.Title, 50)))

	prompt := BuildPrompt(m, evidence, TimeToResolution(m.EndDate, now))

	var judgment Judgment
	err := a.policy.Do(ctx, func(ctx context.Context) error {
		text, err := a.provider.Complete(ctx, prompt)
		if err != nil {
			a.log.Warn("judgment provider call failed", slog.String("market_id", m.ID), slog.String("error", err.Error()))
			return err
		}
		obj, err := jsonblock.ExtractObject(text)
		if err != nil {
			a.log.Warn("judgment response not parseable",
				slog.String("market_id", m.ID), slog.String("error", err.Error()))
			a.log.Debug("raw judgment response", slog.String("text", truncate(text, 500)))
			return err
		}
		judgment, err = ValidateJudgment(obj)
		if err != nil {
			a.log.Warn("judgment validation failed", slog.String("market_id", m.ID), slog.String("error", err.Error()))
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Decision{}, fmt.Errorf("judge market %s: %w: %w", m.ID, domain.ErrProviderExhausted, err)
	}

	decision := BuildDecision(m, judgment, a.now().UTC())
	a.log.Info("market judged",
		slog.String("market_id", m.ID),
		slog.Float64("edge", decision.Edge),
		slog.String("outcome", string(decision.Outcome)))
	return decision, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
