// Package report renders pipeline results for operators: a detailed text
// report and a compact console table.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"edgescout/internal/domain"
	"edgescout/internal/judge"
)

// DefaultMaxOpportunities caps how many opportunities a report includes.
const DefaultMaxOpportunities = 10

const divider = "--------------------------------------------------------------------------------"
const banner = "================================================================================"

// Generate builds the full opportunity report: header, summary statistics,
// and a detailed section per opportunity. Pass maxN <= 0 to use the default
// cap.
func Generate(opportunities []domain.RankedOpportunity, generatedAt time.Time, maxN int) string {
	if maxN <= 0 {
		maxN = DefaultMaxOpportunities
	}
	if len(opportunities) > maxN {
		opportunities = opportunities[:maxN]
	}

	sections := []string{
		header(len(opportunities), generatedAt),
		summary(opportunities),
		detail(opportunities, generatedAt),
	}
	return strings.Join(sections, "\n\n")
}

func header(count int, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString(banner + "\n")
	b.WriteString("  PREDICTION MARKET RESEARCH - OPPORTUNITY REPORT\n")
	b.WriteString(banner + "\n")
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Opportunities Found: %d\n", count)
	b.WriteString(banner)
	return b.String()
}

func summary(opportunities []domain.RankedOpportunity) string {
	if len(opportunities) == 0 {
		return "No opportunities found."
	}

	total := len(opportunities)
	var yesCount, noCount int
	var sumScore, sumEdge, sumConfidence, totalLiquidity float64

	for _, opp := range opportunities {
		sumScore += opp.Score
		if opp.Decision != nil {
			switch opp.Decision.Outcome {
			case domain.OutcomeYes:
				yesCount++
			case domain.OutcomeNo:
				noCount++
			}
			sumEdge += math.Abs(opp.Decision.Edge)
			sumConfidence += opp.Decision.ConfidenceLevel
		}
		if opp.Market != nil {
			totalLiquidity += opp.Market.Liquidity
		}
	}

	n := float64(total)
	var b strings.Builder
	b.WriteString("SUMMARY STATISTICS\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Total Opportunities: %d\n", total)
	fmt.Fprintf(&b, "  - YES Recommendations: %d\n", yesCount)
	fmt.Fprintf(&b, "  - NO Recommendations: %d\n\n", noCount)
	b.WriteString("Average Metrics:\n")
	fmt.Fprintf(&b, "  - Score: %.3f\n", sumScore/n)
	fmt.Fprintf(&b, "  - Edge: %.1f%%\n", sumEdge/n*100)
	fmt.Fprintf(&b, "  - Confidence: %.1f%%\n", sumConfidence/n*100)
	fmt.Fprintf(&b, "  - Total Liquidity: $%s", formatThousands(totalLiquidity))
	return b.String()
}

func detail(opportunities []domain.RankedOpportunity, now time.Time) string {
	if len(opportunities) == 0 {
		return "No opportunities to display."
	}

	sections := []string{"RANKED OPPORTUNITIES", divider}
	for i, opp := range opportunities {
		sections = append(sections, formatOpportunity(i+1, opp, now), "")
	}
	return strings.Join(sections, "\n")
}

func formatOpportunity(rank int, opp domain.RankedOpportunity, now time.Time) string {
	m := opp.Market
	d := opp.Decision
	if m == nil || d == nil {
		return fmt.Sprintf("[%d] (incomplete opportunity)", rank)
	}

	edgeDirection := "UNDERPRICED"
	edgeSign := ""
	if d.Edge > 0 {
		edgeDirection = "OVERPRICED"
		edgeSign = "+"
	}

	category := m.Category
	if category == "" {
		category = "N/A"
	}

	lines := []string{
		fmt.Sprintf("[%d] %s", rank, m.Title),
		fmt.Sprintf("    Market ID: %s", m.ID),
		fmt.Sprintf("    Category: %s", category),
		"",
		fmt.Sprintf("    SCORE: %.3f (Edge: %.2f | Conf: %.2f | Liq: %.2f | Time: %.2f)",
			opp.Score, opp.EdgeScore, opp.ConfidenceScore, opp.LiquidityScore, opp.TimeScore),
		"",
		"    KEY METRICS:",
		fmt.Sprintf("      Market Probability: %.1f%%", m.Probability*100),
		fmt.Sprintf("      Estimated Probability: %.1f%%", d.EstimatedProbability*100),
		fmt.Sprintf("      Edge: %s%.1f%% (%.1f%% %s)", edgeSign, d.Edge*100, math.Abs(d.Edge)*100, edgeDirection),
		fmt.Sprintf("      Confidence: %.1f%%", d.ConfidenceLevel*100),
		fmt.Sprintf("      Liquidity: $%s", formatThousands(m.Liquidity)),
		fmt.Sprintf("      Volume (24h): $%s", formatThousands(m.Volume24h)),
		fmt.Sprintf("      Time to Resolution: %s", judge.TimeToResolution(m.EndDate, now)),
		"",
		fmt.Sprintf("    DECISION: %s", strings.ToUpper(string(d.Outcome))),
		"",
		"    REASONING:",
		fmt.Sprintf("      %s", d.ReasoningSummary),
	}

	if len(d.KeyRisks) > 0 {
		lines = append(lines, "", "    KEY RISKS:")
		risks := d.KeyRisks
		if len(risks) > 5 {
			risks = risks[:5]
		}
		for _, risk := range risks {
			lines = append(lines, fmt.Sprintf("      - %s", risk))
		}
	}

	return strings.Join(lines, "\n")
}

// formatThousands renders a float as a whole number with comma separators.
func formatThousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}
