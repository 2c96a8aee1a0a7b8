package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"edgescout/internal/domain"
)

// ConsoleReporter prints a compact table of ranked opportunities.
type ConsoleReporter struct {
	out  io.Writer
	maxN int
}

// NewConsoleReporter creates a reporter writing to out. Pass maxN <= 0 to use
// the default cap.
func NewConsoleReporter(out io.Writer, maxN int) *ConsoleReporter {
	if maxN <= 0 {
		maxN = DefaultMaxOpportunities
	}
	return &ConsoleReporter{out: out, maxN: maxN}
}

// Render prints the opportunity table followed by a one-line summary.
func (r *ConsoleReporter) Render(opportunities []domain.RankedOpportunity, now time.Time) {
	if len(opportunities) == 0 {
		fmt.Fprintf(r.out, "[%s] no opportunities found\n", now.UTC().Format("15:04:05"))
		return
	}
	if len(opportunities) > r.maxN {
		opportunities = opportunities[:r.maxN]
	}

	fmt.Fprintf(r.out, "\n[%s] %d opportunities\n", now.UTC().Format("15:04:05"), len(opportunities))

	table := tablewriter.NewWriter(r.out)
	table.Header("#", "Market", "Mkt %", "Est %", "Edge", "Conf", "Score", "Decision")

	for i, opp := range opportunities {
		title := "?"
		marketProb := "-"
		if opp.Market != nil {
			title = truncateTitle(opp.Market.Title, 48)
			marketProb = fmt.Sprintf("%.1f", opp.Market.Probability*100)
		}

		estProb, edge, conf, decision := "-", "-", "-", "-"
		if opp.Decision != nil {
			estProb = fmt.Sprintf("%.1f", opp.Decision.EstimatedProbability*100)
			edge = fmt.Sprintf("%+.1f%%", opp.Decision.Edge*100)
			conf = fmt.Sprintf("%.0f%%", opp.Decision.ConfidenceLevel*100)
			decision = strings.ToUpper(string(opp.Decision.Outcome))
		}

		table.Append(
			fmt.Sprintf("%d", i+1),
			title,
			marketProb,
			estProb,
			edge,
			conf,
			fmt.Sprintf("%.3f", opp.Score),
			decision,
		)
	}

	table.Render()
}

func truncateTitle(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
