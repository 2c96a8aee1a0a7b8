package judge

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgescout/internal/domain"
)

func validPayload() map[string]any {
	return map[string]any{
		"estimated_probability": 0.65,
		"confidence_level":      0.7,
		"key_risks":             []any{"regulatory delay", "low turnout"},
		"reasoning_summary":     "Evidence points toward approval.",
	}
}

func TestValidateJudgmentAccepts(t *testing.T) {
	j, err := ValidateJudgment(validPayload())
	require.NoError(t, err)
	assert.InDelta(t, 0.65, j.EstimatedProbability, 1e-9)
	assert.InDelta(t, 0.7, j.ConfidenceLevel, 1e-9)
	assert.Equal(t, []string{"regulatory delay", "low turnout"}, j.KeyRisks)
	assert.Equal(t, "Evidence points toward approval.", j.ReasoningSummary)
}

func TestValidateJudgmentMissingFields(t *testing.T) {
	for _, field := range []string{"estimated_probability", "confidence_level", "key_risks", "reasoning_summary"} {
		data := validPayload()
		delete(data, field)
		_, err := ValidateJudgment(data)
		assert.Error(t, err, "missing %s must fail", field)
	}
}

func TestValidateJudgmentWrongTypes(t *testing.T) {
	data := validPayload()
	data["estimated_probability"] = "0.65"
	_, err := ValidateJudgment(data)
	assert.Error(t, err)

	data = validPayload()
	data["key_risks"] = "just one risk"
	_, err = ValidateJudgment(data)
	assert.Error(t, err)

	data = validPayload()
	data["reasoning_summary"] = 17.0
	_, err = ValidateJudgment(data)
	assert.Error(t, err)
}

func TestValidateJudgmentOutOfRange(t *testing.T) {
	data := validPayload()
	data["estimated_probability"] = 1.2
	_, err := ValidateJudgment(data)
	assert.Error(t, err)

	data = validPayload()
	data["confidence_level"] = -0.1
	_, err = ValidateJudgment(data)
	assert.Error(t, err)
}

func TestValidateJudgmentTruncatesRisksAndReasoning(t *testing.T) {
	risks := make([]any, 0, 15)
	for i := 0; i < 12; i++ {
		risks = append(risks, "risk")
	}
	risks = append(risks, "", nil)

	data := validPayload()
	data["key_risks"] = risks
	data["reasoning_summary"] = strings.Repeat("x", 600)

	j, err := ValidateJudgment(data)
	require.NoError(t, err)
	assert.Len(t, j.KeyRisks, domain.MaxKeyRisks)
	assert.Len(t, j.ReasoningSummary, domain.MaxReasoningChars)
}

func TestBuildDecisionOutcomes(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	market := domain.Market{ID: "mkt-1", Probability: 0.50}

	cases := []struct {
		name       string
		estimated  float64
		confidence float64
		want       domain.Outcome
	}{
		{"positive edge high confidence", 0.60, 0.7, domain.OutcomeYes},
		{"negative edge high confidence", 0.40, 0.7, domain.OutcomeNo},
		{"positive edge low confidence", 0.60, 0.3, domain.OutcomePass},
		{"tiny edge", 0.52, 0.9, domain.OutcomePass},
		{"confidence exactly at threshold", 0.70, 0.4, domain.OutcomePass},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := BuildDecision(market, Judgment{
				EstimatedProbability: tc.estimated,
				ConfidenceLevel:      tc.confidence,
			}, now)
			assert.Equal(t, tc.want, d.Outcome)
			assert.InDelta(t, tc.estimated-0.50, d.Edge, 1e-9)
			assert.Equal(t, "mkt-1", d.MarketID)
			assert.Equal(t, now, d.CreatedAt)
		})
	}
}

func TestBuildDecisionEdgeExactlyAtThreshold(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	market := domain.Market{ID: "mkt-1", Probability: 0}

	d := BuildDecision(market, Judgment{EstimatedProbability: 0.05, ConfidenceLevel: 0.9}, now)
	assert.Equal(t, domain.OutcomePass, d.Outcome)
}
