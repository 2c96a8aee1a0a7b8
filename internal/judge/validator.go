package judge

import (
	"fmt"
	"strings"
	"time"

	"edgescout/internal/domain"
)

// Judgment is a validated judgment provider payload. Exactly these four
// fields are required; anything missing, wrongly typed, or out of range fails
// validation.
type Judgment struct {
	EstimatedProbability float64
	ConfidenceLevel      float64
	KeyRisks             []string
	ReasoningSummary     string
}

// ValidateJudgment checks an untrusted judgment payload against the required
// schema and numeric ranges.
func ValidateJudgment(data map[string]any) (Judgment, error) {
	prob, err := numericInUnitRange(data, "estimated_probability")
	if err != nil {
		return Judgment{}, err
	}
	conf, err := numericInUnitRange(data, "confidence_level")
	if err != nil {
		return Judgment{}, err
	}

	rawRisks, ok := data["key_risks"]
	if !ok {
		return Judgment{}, fmt.Errorf("judge: missing required field %q", "key_risks")
	}
	riskItems, ok := rawRisks.([]any)
	if !ok {
		return Judgment{}, fmt.Errorf("judge: key_risks must be a list")
	}

	rawReasoning, ok := data["reasoning_summary"]
	if !ok {
		return Judgment{}, fmt.Errorf("judge: missing required field %q", "reasoning_summary")
	}
	reasoning, ok := rawReasoning.(string)
	if !ok {
		return Judgment{}, fmt.Errorf("judge: reasoning_summary must be a string")
	}

	risks := make([]string, 0, len(riskItems))
	for _, item := range riskItems {
		if item == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(item))
		if s == "" {
			continue
		}
		risks = append(risks, s)
		if len(risks) == domain.MaxKeyRisks {
			break
		}
	}

	reasoning = strings.TrimSpace(reasoning)
	if len(reasoning) > domain.MaxReasoningChars {
		reasoning = reasoning[:domain.MaxReasoningChars]
	}

	return Judgment{
		EstimatedProbability: prob,
		ConfidenceLevel:      conf,
		KeyRisks:             risks,
		ReasoningSummary:     reasoning,
	}, nil
}

func numericInUnitRange(data map[string]any, field string) (float64, error) {
	raw, ok := data[field]
	if !ok {
		return 0, fmt.Errorf("judge: missing required field %q", field)
	}
	v, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("judge: %s must be numeric", field)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("judge: %s %v out of range [0,1]", field, v)
	}
	return v, nil
}

// BuildDecision derives the edge and recommendation for a market from a
// validated judgment. A recommendation requires an edge beyond 5% in either
// direction and confidence above 0.4; everything else is a pass.
func BuildDecision(m domain.Market, j Judgment, now time.Time) domain.Decision {
	edge := j.EstimatedProbability - m.Probability

	outcome := domain.OutcomePass
	if edge > 0.05 && j.ConfidenceLevel > 0.4 {
		outcome = domain.OutcomeYes
	} else if edge < -0.05 && j.ConfidenceLevel > 0.4 {
		outcome = domain.OutcomeNo
	}

	return domain.Decision{
		MarketID:             m.ID,
		EstimatedProbability: j.EstimatedProbability,
		ConfidenceLevel:      j.ConfidenceLevel,
		Edge:                 edge,
		Outcome:              outcome,
		KeyRisks:             j.KeyRisks,
		ReasoningSummary:     j.ReasoningSummary,
		CreatedAt:            now,
	}
}
