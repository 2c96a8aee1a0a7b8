package domain

import "time"

// Market represents a Polymarket prediction market as normalized at ingestion.
// Probability is always clamped to [0,1] before a Market enters the pipeline.
type Market struct {
	ID          string
	Title       string
	Description string
	Probability float64
	Liquidity   float64
	Volume24h   float64
	EndDate     *time.Time // nil when the upstream record carries no resolution date
	Category    string
	Slug        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DaysToResolution returns the number of days between now and the market's
// end date. The second return is false when no end date is known.
func (m Market) DaysToResolution(now time.Time) (float64, bool) {
	if m.EndDate == nil {
		return 0, false
	}
	return m.EndDate.Sub(now).Hours() / 24, true
}

// Resolved reports whether the market's end date has already passed.
func (m Market) Resolved(now time.Time) bool {
	return m.EndDate != nil && m.EndDate.Before(now)
}
