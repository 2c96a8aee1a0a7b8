// Package filter decides which markets deserve expensive downstream research.
// The evaluation is pure: no I/O, fully deterministic given a market and a
// reference time.
package filter

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"edgescout/internal/domain"
)

const (
	worthyThreshold   = 0.6
	highThreshold     = 0.8
	mediumThreshold   = 0.65
	flagHighThreshold = 0.7
	flagLowThreshold  = 0.3
)

// Evaluator scores markets on five dimensions and yields a worthiness verdict.
type Evaluator struct {
	log *slog.Logger
	now func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock overrides the reference-time source.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// NewEvaluator builds an Evaluator using the wall clock.
func NewEvaluator(log *slog.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{
		log: log.With(slog.String("component", "filter")),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores one market for research-worthiness.
func (e *Evaluator) Evaluate(m domain.Market) domain.FilterDecision {
	now := e.now().UTC()

	infoDependence := scoreInformationDependence(m, now)
	infoAccessibility := scoreInformationAccessibility(m)
	efficiencyRisk := scoreEfficiencyRisk(m)
	timeSufficiency := scoreTimeSufficiency(m, now)
	randomnessRisk := scoreRandomnessRisk(m, now)

	score := infoDependence*0.30 +
		infoAccessibility*0.25 +
		(1.0-efficiencyRisk)*0.20 +
		timeSufficiency*0.15 +
		(1.0-randomnessRisk)*0.10

	worthy := score >= worthyThreshold

	priority := domain.PriorityLow
	switch {
	case score >= highThreshold:
		priority = domain.PriorityHigh
	case score >= mediumThreshold:
		priority = domain.PriorityMedium
	}

	decision := domain.FilterDecision{
		MarketID:            m.ID,
		ResearchWorthy:      worthy,
		Priority:            priority,
		ReasoningSummary:    reasoning(score, worthy, infoDependence, infoAccessibility, efficiencyRisk, timeSufficiency, randomnessRisk),
		InfoDependenceScore: infoDependence,
		EfficiencyRiskScore: efficiencyRisk,
		RandomnessRiskScore: randomnessRisk,
	}

	e.log.Debug("market evaluated",
		slog.String("market_id", m.ID),
		slog.Bool("research_worthy", worthy),
		slog.String("priority", string(priority)),
		slog.Float64("score", score))

	return decision
}

// scoreInformationDependence measures how much the outcome depends on
// discoverable information rather than chance. Higher is better.
func scoreInformationDependence(m domain.Market, now time.Time) float64 {
	text := marketText(m, true)

	highCount := countMatches(text, highInfoKeywords)
	lowCount := countMatches(text, lowInfoKeywords)

	var base float64
	switch {
	case highCount > 0 && lowCount == 0:
		base = 0.8
	case highCount > 0:
		base = 0.6
	case lowCount > 0:
		base = 0.2
	default:
		base = 0.5
	}

	var timeBonus float64
	if m.EndDate != nil {
		if days, _ := m.DaysToResolution(now); m.EndDate.After(now) {
			switch {
			case days >= 7:
				timeBonus = 0.1
			case days >= 3:
				timeBonus = 0.05
			default:
				timeBonus = -0.1
			}
		} else {
			timeBonus = -0.2
		}
	}

	var probBonus float64
	if m.Probability >= 0.1 && m.Probability <= 0.9 {
		probBonus = 0.05
	}

	return clamp01(base + timeBonus + probBonus)
}

// scoreInformationAccessibility measures whether the information that decides
// the market is publicly reachable. Higher is better.
func scoreInformationAccessibility(m domain.Market) float64 {
	text := marketText(m, true)

	highCount := countMatches(text, highAccessKeywords)
	lowCount := countMatches(text, lowAccessKeywords)

	var base float64
	switch {
	case highCount > 0 && lowCount == 0:
		base = 0.8
	case highCount > 0:
		base = 0.6
	case lowCount > 0:
		base = 0.3
	default:
		base = 0.5
	}

	var liquidityBonus float64
	switch {
	case m.Liquidity >= 10000:
		liquidityBonus = 0.1
	case m.Liquidity >= 5000:
		liquidityBonus = 0.05
	}

	var volumeBonus float64
	switch {
	case m.Volume24h >= 1000:
		volumeBonus = 0.1
	case m.Volume24h >= 500:
		volumeBonus = 0.05
	}

	return clamp01(base + liquidityBonus + volumeBonus)
}

// scoreEfficiencyRisk measures the risk that the market already prices in all
// available information. Higher is worse.
func scoreEfficiencyRisk(m domain.Market) float64 {
	var liquidityRisk float64
	switch {
	case m.Liquidity >= 50000:
		liquidityRisk = 0.8
	case m.Liquidity >= 20000:
		liquidityRisk = 0.6
	case m.Liquidity >= 10000:
		liquidityRisk = 0.4
	case m.Liquidity >= 5000:
		liquidityRisk = 0.3
	default:
		liquidityRisk = 0.2
	}

	var volumeRisk float64
	switch {
	case m.Volume24h >= 5000:
		volumeRisk = 0.3
	case m.Volume24h >= 2000:
		volumeRisk = 0.2
	case m.Volume24h >= 1000:
		volumeRisk = 0.1
	}

	category := strings.ToLower(m.Category)
	categoryRisk := 0.1
	if containsAny(category, efficientCryptoCategories) {
		categoryRisk = 0.2
	} else if containsAny(category, efficientSportsCategories) {
		categoryRisk = 0.3
	}

	var probRisk float64
	if m.Probability < 0.05 || m.Probability > 0.95 {
		probRisk = 0.2
	}

	risk := liquidityRisk*0.40 + volumeRisk*0.30 + categoryRisk*0.20 + probRisk*0.10
	return clamp01(risk)
}

// scoreTimeSufficiency measures whether enough time remains for research and
// new information to emerge. Optimal window 7 to 30 days.
func scoreTimeSufficiency(m domain.Market, now time.Time) float64 {
	if m.EndDate == nil {
		return 0.5
	}
	if !m.EndDate.After(now) {
		return 0.0
	}
	days, _ := m.DaysToResolution(now)

	switch {
	case days >= 7 && days <= 30:
		return 1.0
	case days >= 3 && days < 7:
		return 0.6 + (days-3.0)/4.0*0.4
	case days > 30 && days <= 90:
		return 1.0 - (days-30.0)/60.0*0.5
	case days >= 1 && days < 3:
		return 0.3 + (days-1.0)/2.0*0.3
	case days > 90:
		return 0.4
	default:
		return 0.2
	}
}

// scoreRandomnessRisk measures the risk that the outcome is chance rather than
// something researchable. Higher is worse.
func scoreRandomnessRisk(m domain.Market, now time.Time) float64 {
	text := marketText(m, false)

	count := countMatches(text, randomnessKeywords)

	var base float64
	switch {
	case count >= 2:
		base = 0.8
	case count == 1:
		base = 0.5
	default:
		base = 0.2
	}

	var probRisk float64
	if m.Probability >= 0.45 && m.Probability <= 0.55 {
		probRisk = 0.2
	}

	var timeRisk float64
	if m.EndDate != nil && m.EndDate.After(now) {
		days, _ := m.DaysToResolution(now)
		switch {
		case days < 1:
			timeRisk = 0.3
		case days < 3:
			timeRisk = 0.1
		}
	}

	return clamp01(base + probRisk + timeRisk)
}

func reasoning(score float64, worthy bool, infoDependence, infoAccessibility, efficiencyRisk, timeSufficiency, randomnessRisk float64) string {
	reasons := make([]string, 0, 6)

	if worthy {
		reasons = append(reasons, "Research-worthy")
	} else {
		reasons = append(reasons, "Not research-worthy")
	}

	if infoDependence >= flagHighThreshold {
		reasons = append(reasons, "high info dependence")
	} else if infoDependence <= flagLowThreshold {
		reasons = append(reasons, "low info dependence")
	}

	if infoAccessibility >= flagHighThreshold {
		reasons = append(reasons, "accessible information")
	} else if infoAccessibility <= flagLowThreshold {
		reasons = append(reasons, "limited information access")
	}

	if efficiencyRisk >= flagHighThreshold {
		reasons = append(reasons, "high efficiency risk")
	} else if efficiencyRisk <= flagLowThreshold {
		reasons = append(reasons, "lower efficiency risk")
	}

	if timeSufficiency >= flagHighThreshold {
		reasons = append(reasons, "sufficient time")
	} else if timeSufficiency <= flagLowThreshold {
		reasons = append(reasons, "limited time")
	}

	if randomnessRisk >= flagHighThreshold {
		reasons = append(reasons, "high randomness risk")
	} else if randomnessRisk <= flagLowThreshold {
		reasons = append(reasons, "lower randomness risk")
	}

	return fmt.Sprintf("Score: %.2f. ", score) + strings.Join(reasons, ", ") + "."
}

// marketText assembles the lower-cased text searched for keywords. Category is
// excluded from the randomness check.
func marketText(m domain.Market, withCategory bool) string {
	parts := []string{strings.ToLower(m.Title), strings.ToLower(m.Description)}
	if withCategory {
		parts = append(parts, strings.ToLower(m.Category))
	}
	return strings.Join(parts, " ")
}

func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
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
