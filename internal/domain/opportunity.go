package domain

import "time"

// RankedOpportunity pairs a market with its decision and a composite ranking
// score. Market and Decision are shared references, not copies.
type RankedOpportunity struct {
	Market          *Market
	Decision        *Decision
	Score           float64
	EdgeScore       float64
	ConfidenceScore float64
	LiquidityScore  float64
	TimeScore       float64
	Explanation     string
}

// PredictionLogEntry is one append-only row of the prediction accuracy trail.
type PredictionLogEntry struct {
	MarketID             string
	MarketProbability    float64
	EstimatedProbability float64
	ConfidenceLevel      float64
	Edge                 float64
	Outcome              Outcome
	LoggedAt             time.Time
}
