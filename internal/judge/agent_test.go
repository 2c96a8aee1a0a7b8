package judge

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgescout/internal/domain"
)

type fakeProvider struct {
	responses []string
	calls     int
}

func (f *fakeProvider) Complete(context.Context, string) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no response configured")
}

func newTestAgent(provider Provider) *Agent {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return NewAgent(provider, slog.Default(), DefaultPolicy(), WithClock(func() time.Time { return now }))
}

func TestJudgeSuccess(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		"```json\n{\"estimated_probability\": 0.62, \"confidence_level\": 0.8, \"key_risks\": [\"delay\"], \"reasoning_summary\": \"strong evidence\"}\n```",
	}}
	agent := newTestAgent(provider)

	m := domain.Market{ID: "mkt-1", Probability: 0.50}
	d, err := agent.Judge(context.Background(), m, domain.EvidenceRecord{SourceQuality: domain.SourceQualityHigh})
	require.NoError(t, err)

	assert.InDelta(t, 0.12, d.Edge, 1e-9)
	assert.Equal(t, domain.OutcomeYes, d.Outcome)
	assert.Equal(t, []string{"delay"}, d.KeyRisks)
	assert.Equal(t, 1, provider.calls)
}

func TestJudgeRetriesInvalidThenSucceeds(t *testing.T) {
	provider := &fakeProvider{responses: []string{
		`{"estimated_probability": 1.4, "confidence_level": 0.8, "key_risks": [], "reasoning_summary": "x"}`,
		`{"estimated_probability": 0.40, "confidence_level": 0.9, "key_risks": [], "reasoning_summary": "y"}`,
	}}
	agent := newTestAgent(provider)

	d, err := agent.Judge(context.Background(), domain.Market{ID: "mkt-1", Probability: 0.55}, domain.EvidenceRecord{})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNo, d.Outcome)
	assert.Equal(t, 2, provider.calls)
}

func TestJudgeExhaustsBudget(t *testing.T) {
	provider := &fakeProvider{responses: []string{"not json", "still not json"}}
	agent := newTestAgent(provider)

	_, err := agent.Judge(context.Background(), domain.Market{ID: "mkt-1"}, domain.EvidenceRecord{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProviderExhausted))
	assert.Equal(t, 2, provider.calls)
}
