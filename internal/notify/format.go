package notify

import (
	"fmt"
	"strings"

	"edgescout/internal/domain"
)

const maxRationaleChars = 200

// FormatOpportunities renders a plain-text digest of ranked opportunities for
// delivery through the notification channels. Only the top n entries are
// included; pass n <= 0 to include everything.
func FormatOpportunities(opportunities []domain.RankedOpportunity, n int) string {
	if len(opportunities) == 0 {
		return "No trade opportunities found this run."
	}
	if n > 0 && len(opportunities) > n {
		opportunities = opportunities[:n]
	}

	var b strings.Builder
	for i, opp := range opportunities {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatOpportunity(i+1, opp))
	}
	return b.String()
}

func formatOpportunity(rank int, opp domain.RankedOpportunity) string {
	title := "Unknown Market"
	marketProb := 0.0
	if opp.Market != nil {
		title = opp.Market.Title
		marketProb = opp.Market.Probability
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s\n", rank, title)

	if opp.Decision != nil {
		d := opp.Decision
		fmt.Fprintf(&b, "   Market: %.1f%% | Estimate: %.1f%% | Edge: %+.1f%%\n",
			marketProb*100, d.EstimatedProbability*100, d.Edge*100)
		fmt.Fprintf(&b, "   Confidence: %.1f%% | Decision: %s | Score: %.3f\n",
			d.ConfidenceLevel*100, strings.ToUpper(string(d.Outcome)), opp.Score)
		if rationale := truncateRationale(d.ReasoningSummary); rationale != "" {
			fmt.Fprintf(&b, "   %s\n", rationale)
		}
	} else {
		fmt.Fprintf(&b, "   Score: %.3f\n", opp.Score)
	}
	return b.String()
}

func truncateRationale(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxRationaleChars {
		return s
	}
	return s[:maxRationaleChars-3] + "..."
}
