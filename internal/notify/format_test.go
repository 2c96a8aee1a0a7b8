package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"edgescout/internal/domain"
)

func sampleOpportunity(id, title string, edge float64, outcome domain.Outcome) domain.RankedOpportunity {
	return domain.RankedOpportunity{
		Market: &domain.Market{ID: id, Title: title, Probability: 0.38},
		Decision: &domain.Decision{
			MarketID:             id,
			EstimatedProbability: 0.38 + edge,
			ConfidenceLevel:      0.7,
			Edge:                 edge,
			Outcome:              outcome,
			ReasoningSummary:     "Launch window is confirmed by the operator.",
		},
		Score: 0.81,
	}
}

func TestFormatOpportunities(t *testing.T) {
	out := FormatOpportunities([]domain.RankedOpportunity{
		sampleOpportunity("m-1", "Will the launch happen in Q1?", 0.12, domain.OutcomeYes),
		sampleOpportunity("m-2", "Will the bill pass this session?", -0.08, domain.OutcomeNo),
	}, 5)

	assert.Contains(t, out, "1. Will the launch happen in Q1?")
	assert.Contains(t, out, "2. Will the bill pass this session?")
	assert.Contains(t, out, "Edge: +12.0%")
	assert.Contains(t, out, "Edge: -8.0%")
	assert.Contains(t, out, "Decision: YES")
	assert.Contains(t, out, "Decision: NO")
	assert.Contains(t, out, "Confidence: 70.0%")
	assert.Contains(t, out, "Launch window is confirmed by the operator.")
}

func TestFormatOpportunitiesTopN(t *testing.T) {
	opps := []domain.RankedOpportunity{
		sampleOpportunity("m-1", "First", 0.1, domain.OutcomeYes),
		sampleOpportunity("m-2", "Second", 0.1, domain.OutcomeYes),
		sampleOpportunity("m-3", "Third", 0.1, domain.OutcomeYes),
	}

	out := FormatOpportunities(opps, 2)
	assert.Contains(t, out, "1. First")
	assert.Contains(t, out, "2. Second")
	assert.NotContains(t, out, "Third")
}

func TestFormatOpportunitiesEmpty(t *testing.T) {
	assert.Equal(t, "No trade opportunities found this run.", FormatOpportunities(nil, 5))
}

func TestFormatOpportunitiesLongRationaleTruncated(t *testing.T) {
	opp := sampleOpportunity("m-1", "Long one", 0.1, domain.OutcomeYes)
	opp.Decision.ReasoningSummary = strings.Repeat("a", 300)

	out := FormatOpportunities([]domain.RankedOpportunity{opp}, 1)
	assert.Contains(t, out, strings.Repeat("a", maxRationaleChars-3)+"...")
	assert.NotContains(t, out, strings.Repeat("a", maxRationaleChars))
}

func TestFormatOpportunityMissingDecision(t *testing.T) {
	out := FormatOpportunities([]domain.RankedOpportunity{
		{Market: &domain.Market{ID: "m-1", Title: "Bare market"}, Score: 0.5},
	}, 1)
	assert.Contains(t, out, "Bare market")
	assert.Contains(t, out, "Score: 0.500")
}
