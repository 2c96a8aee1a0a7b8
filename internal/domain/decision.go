package domain

import "time"

// Outcome is the trading recommendation derived from a judgment.
type Outcome string

const (
	OutcomeYes  Outcome = "yes"
	OutcomeNo   Outcome = "no"
	OutcomePass Outcome = "pass"
)

// Decision is an immutable judgment result for one market. Edge is the signed
// difference between the estimated and the market-implied probability.
type Decision struct {
	MarketID             string
	EstimatedProbability float64
	ConfidenceLevel      float64
	Edge                 float64
	Outcome              Outcome
	KeyRisks             []string
	ReasoningSummary     string
	CreatedAt            time.Time
}

// MaxKeyRisks caps the risk list carried by a Decision.
const MaxKeyRisks = 10

// MaxReasoningChars caps the reasoning summary carried by a Decision.
const MaxReasoningChars = 500
