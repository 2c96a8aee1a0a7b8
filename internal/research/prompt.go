package research

import (
	"fmt"
	"strings"

	"edgescout/internal/domain"
)

// BuildPrompt renders the deterministic evidence-gathering prompt for a
// market. The provider is instructed to return facts only, as pure JSON.
func BuildPrompt(m domain.Market) string {
	endDateLine := ""
	if m.EndDate != nil {
		endDateLine = fmt.Sprintf("Resolution Date: %s", m.EndDate.UTC().Format("2006-01-02 15:04:05 UTC"))
	}

	var b strings.Builder
	b.WriteString("Research the following prediction market question and provide ONLY factual evidence. Do NOT estimate probabilities or make predictions.\n\n")
	fmt.Fprintf(&b, "MARKET QUESTION: %s\n\n", m.Title)
	fmt.Fprintf(&b, "DESCRIPTION: %s\n\n", m.Description)
	b.WriteString(endDateLine)
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("1. Gather recent developments relevant to this question\n")
	b.WriteString("2. List factual evidence that would support a YES outcome\n")
	b.WriteString("3. List factual evidence that would support a NO outcome\n")
	b.WriteString("4. Identify any official signals (announcements, statements, etc.)\n")
	b.WriteString("5. Note timeline constraints or deadlines\n")
	b.WriteString("6. Assess the quality of available sources\n\n")
	b.WriteString("CRITICAL: Provide ONLY evidence and facts. NO reasoning, NO probability estimates, NO conclusions.\n\n")
	b.WriteString("Return your response as valid JSON only (no markdown, no code blocks, no explanatory text). Use this exact structure:\n\n")
	b.WriteString(`{
  "recent_developments": ["fact 1", "fact 2", ...],
  "evidence_yes": ["evidence supporting yes", ...],
  "evidence_no": ["evidence supporting no", ...],
  "official_signals": ["official statement or announcement", ...],
  "timeline_constraints": ["deadline or time constraint", ...],
  "source_quality": "high|medium|low"
}`)
	b.WriteString("\n\nIf information is unavailable, use empty arrays [] or \"unknown\" for source_quality. Do not fabricate sources or evidence.")
	return b.String()
}
