package judge

import (
	"fmt"
	"strings"
	"time"

	"edgescout/internal/domain"
)

// TimeToResolution renders the remaining time as a human-readable string:
// "N days, H hours", "H hours, M minutes", "M minutes", "resolved", or
// "unknown" when no end date is set.
func TimeToResolution(endDate *time.Time, now time.Time) string {
	if endDate == nil {
		return "unknown"
	}
	if !endDate.After(now) {
		return "resolved"
	}

	delta := endDate.Sub(now)
	days := int(delta.Hours()) / 24
	hours := int(delta.Hours()) % 24

	switch {
	case days > 0:
		return fmt.Sprintf("%d days, %d hours", days, hours)
	case hours > 0:
		minutes := int(delta.Minutes()) % 60
		return fmt.Sprintf("%d hours, %d minutes", hours, minutes)
	default:
		return fmt.Sprintf("%d minutes", int(delta.Minutes()))
	}
}

// BuildPrompt renders the deterministic judgment prompt with market facts and
// the gathered evidence.
func BuildPrompt(m domain.Market, evidence domain.EvidenceRecord, timeToResolution string) string {
	var b strings.Builder
	b.WriteString("You are a conservative probability estimator for prediction markets. Your task is to estimate the TRUE probability of a market outcome based on available evidence, then compare it to the current market probability.\n\n")
	b.WriteString("MARKET INFORMATION:\n")
	fmt.Fprintf(&b, "Question: %s\n", m.Title)
	fmt.Fprintf(&b, "Description: %s\n", m.Description)
	fmt.Fprintf(&b, "Current Market Probability: %.1f%%\n", m.Probability*100)
	fmt.Fprintf(&b, "Liquidity: $%.0f\n", m.Liquidity)
	fmt.Fprintf(&b, "Time to Resolution: %s\n\n", timeToResolution)
	b.WriteString("EVIDENCE:\n")
	b.WriteString(renderEvidence(evidence))
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("1. Estimate the TRUE probability of a YES outcome (0.0 to 1.0)\n")
	b.WriteString("2. Assess your confidence in this estimate (0.0 to 1.0)\n")
	b.WriteString("3. Calculate the edge (true_probability - market_probability)\n")
	b.WriteString("4. Make a decision: \"yes\" if edge > 0.05, \"no\" if edge < -0.05, \"pass\" otherwise\n")
	b.WriteString("5. Identify key risks that could affect the outcome\n")
	b.WriteString("6. Provide a brief reasoning summary\n\n")
	b.WriteString("CRITICAL RULES:\n")
	b.WriteString("- Be CONSERVATIVE in probability estimates\n")
	b.WriteString("- Express UNCERTAINTY when evidence is weak\n")
	b.WriteString("- REJECT weak evidence - if evidence quality is \"low\" or evidence is insufficient, use confidence < 0.5\n")
	b.WriteString("- If source_quality is \"low\" or evidence lists are mostly empty, be very conservative\n")
	b.WriteString("- Edge must be significant (>5%) to recommend \"yes\" or \"no\"\n")
	b.WriteString("- Always identify risks, even for high-confidence estimates\n\n")
	b.WriteString("Return ONLY valid JSON (no markdown, no code blocks, no explanatory text). Use this exact structure:\n\n")
	b.WriteString(`{
  "estimated_probability": 0.65,
  "confidence_level": 0.7,
  "key_risks": ["risk 1", "risk 2", ...],
  "reasoning_summary": "Brief summary of your reasoning (max 200 words)"
}`)
	b.WriteString("\n\nAll probabilities must be between 0.0 and 1.0. Be conservative.")
	return b.String()
}

// maxPromptItems caps how many items of each evidence list reach the prompt.
const maxPromptItems = 10

// renderEvidence lays evidence out as labeled sections ending with the source
// quality line, plus a warning when the substantive lists are all empty.
func renderEvidence(e domain.EvidenceRecord) string {
	var lines []string

	section := func(header string, items []string) {
		if len(items) == 0 {
			return
		}
		lines = append(lines, header)
		if len(items) > maxPromptItems {
			items = items[:maxPromptItems]
		}
		for _, item := range items {
			lines = append(lines, "  - "+item)
		}
		lines = append(lines, "")
	}

	section("RECENT DEVELOPMENTS:", e.RecentDevelopments)
	section("EVIDENCE SUPPORTING YES:", e.EvidenceYes)
	section("EVIDENCE SUPPORTING NO:", e.EvidenceNo)
	section("OFFICIAL SIGNALS:", e.OfficialSignals)
	section("TIMELINE CONSTRAINTS:", e.TimelineConstraint)

	lines = append(lines, fmt.Sprintf("SOURCE QUALITY: %s", strings.ToUpper(string(e.SourceQuality))))

	if len(e.RecentDevelopments) == 0 && len(e.EvidenceYes) == 0 && len(e.EvidenceNo) == 0 {
		lines = append(lines, "WARNING: Limited evidence available. Be very conservative.")
	}

	return strings.Join(lines, "\n")
}
