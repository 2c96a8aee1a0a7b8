package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"edgescout/internal/domain"
)

// flexFloat unmarshals from a JSON number or a numeric string, since Gamma
// sends amounts both ways ("12345.6" and 12345.6).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = flexFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexID unmarshals from a JSON string or number into a string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// stringList unmarshals from a JSON array of strings or from a JSON-encoded
// array embedded in a string, e.g. "[\"Yes\",\"No\"]".
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		*l = nil
		return nil
	}
	*l = items
	return nil
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
// Field spellings vary across API versions, so aliases are decoded separately
// and reconciled in ToDomainMarket.
type APIMarket struct {
	ID            flexID     `json:"id"`
	Question      string     `json:"question"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Outcomes      stringList `json:"outcomes"`
	OutcomePrices stringList `json:"outcomePrices"`
	BestBid       flexFloat  `json:"bestBid"`
	BestAsk       flexFloat  `json:"bestAsk"`
	Liquidity     flexFloat  `json:"liquidity"`
	Volume24h     flexFloat  `json:"volume24h"`
	Volume24hAlt  flexFloat  `json:"volume_24h"`
	Volume24hr    flexFloat  `json:"volume24hr"`
	EndDate       string     `json:"endDate"`
	EndDateAlt    string     `json:"end_date"`
	Slug          string     `json:"slug"`
	Category      string     `json:"category"`
}

// ToDomainMarket converts a Gamma APIMarket to a domain.Market. Markets
// without an id yield ok=false and are skipped by the caller. Probability is
// clamped to [0,1].
func (m *APIMarket) ToDomainMarket() (domain.Market, bool) {
	if m.ID == "" {
		return domain.Market{}, false
	}

	title := m.Question
	if title == "" {
		title = m.Title
	}
	if title == "" {
		title = "Unknown Market"
	}

	description := m.Description
	if description == "" {
		description = m.Question
	}

	volume := float64(m.Volume24h)
	if volume == 0 {
		volume = float64(m.Volume24hAlt)
	}
	if volume == 0 {
		volume = float64(m.Volume24hr)
	}

	return domain.Market{
		ID:          string(m.ID),
		Title:       title,
		Description: description,
		Probability: clamp01(m.extractProbability()),
		Liquidity:   float64(m.Liquidity),
		Volume24h:   volume,
		EndDate:     parseEndDate(firstNonEmpty(m.EndDate, m.EndDateAlt)),
		Category:    m.Category,
		Slug:        m.Slug,
	}, true
}

// extractProbability picks the Yes-outcome price when the outcome labels make
// it identifiable, falls back to the first price, then to the bid/ask
// midpoint, and finally to 0.5.
func (m *APIMarket) extractProbability() float64 {
	if len(m.OutcomePrices) == 0 {
		if m.BestBid != 0 && m.BestAsk != 0 {
			return (float64(m.BestBid) + float64(m.BestAsk)) / 2.0
		}
		return 0.5
	}

	for i, outcome := range m.Outcomes {
		if outcome == "Yes" && i < len(m.OutcomePrices) {
			if p, err := strconv.ParseFloat(m.OutcomePrices[i], 64); err == nil {
				return p
			}
			break
		}
	}

	if p, err := strconv.ParseFloat(m.OutcomePrices[0], 64); err == nil {
		return p
	}
	return 0.5
}

// endDateFormats are tried in order after RFC 3339 fails.
var endDateFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseEndDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t
	}
	for _, layout := range endDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
