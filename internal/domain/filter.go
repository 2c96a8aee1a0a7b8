package domain

// Priority classifies how strongly a market merits downstream research.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank maps a priority to an integer suitable for descending sorts.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// FilterDecision is the outcome of the research-worthiness heuristic for one
// market. Produced once per filtering pass and never mutated.
type FilterDecision struct {
	MarketID            string
	ResearchWorthy      bool
	Priority            Priority
	ReasoningSummary    string
	InfoDependenceScore float64
	EfficiencyRiskScore float64
	RandomnessRiskScore float64
}
