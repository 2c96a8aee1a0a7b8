// Package research gathers structured factual evidence about markets from an
// external provider. It performs no reasoning or probability estimation.
package research

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"edgescout/internal/domain"
	"edgescout/internal/jsonblock"
	"edgescout/internal/retry"
)

// Provider is the external evidence-gathering call.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// DefaultPolicy retries evidence gathering three times with exponential
// backoff starting at two seconds.
func DefaultPolicy() retry.Policy {
	return retry.Exponential(3, 2*time.Second, 30*time.Second)
}

// Agent orchestrates the prompt, provider call, extraction, and validation
// for one market at a time.
type Agent struct {
	provider Provider
	log      *slog.Logger
	policy   retry.Policy
}

// NewAgent builds a research agent with the given retry policy.
func NewAgent(provider Provider, log *slog.Logger, policy retry.Policy) *Agent {
	return &Agent{
		provider: provider,
		log:      log.With(slog.String("component", "research")),
		policy:   policy,
	}
}

// Research gathers evidence for a market. Malformed or empty provider
// responses count as failed attempts; exhausting the retry budget returns an
// error wrapping domain.ErrProviderExhausted and the market is skipped for
// this run.
func (a *Agent) Research(ctx context.Context, m domain.Market) (domain.EvidenceRecord, error) {
	a.log.Info("researching market", slog.String("market_id", m.ID), slog.String("title", truncate(m.Title, 50)))

	prompt := BuildPrompt(m)

	var record domain.EvidenceRecord
	err := a.policy.Do(ctx, func(ctx context.Context) error {
		text, err := a.provider.Complete(ctx, prompt)
		if err != nil {
			a.log.Warn("evidence provider call failed", slog.String("market_id", m.ID), slog.String("error", err.Error()))
			return err
		}
		obj, err := jsonblock.ExtractObject(text)
		if err != nil {
			a.log.Warn("evidence response not parseable",
				slog.String("market_id", m.ID), slog.String("error", err.Error()))
			a.log.Debug("raw evidence response", slog.String("text", truncate(text, 500)))
			return err
		}
		record = ValidateEvidence(obj, m.ID, a.log)
		return nil
	})
	if err != nil {
		return domain.EvidenceRecord{}, fmt.Errorf("research market %s: %w: %w", m.ID, domain.ErrProviderExhausted, err)
	}

	a.log.Info("evidence gathered",
		slog.String("market_id", m.ID),
		slog.String("source_quality", string(record.SourceQuality)))
	return record, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
