package briefing

import (
	"fmt"
	"strings"

	"github.com/wonny/clientintel/internal/contracts"
)

// RenderMarkdown formats a briefing as a markdown report
func RenderMarkdown(b *contracts.Briefing) string {
	var sb strings.Builder
	rec := b.Performance

	fmt.Fprintf(&sb, "## %s (%s) — Company Briefing\n\n", b.Company, b.Ticker)

	sb.WriteString("### Stock Performance\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|---|---|\n")
	fmt.Fprintf(&sb, "| **Price** | $%.2f |\n", rec.Price())
	fmt.Fprintf(&sb, "| **Change** | %s (%s) |\n", signedDollars(rec.Change()), rec.ChangePercent())
	fmt.Fprintf(&sb, "| **Day Range** | $%.2f – $%.2f |\n", rec.Low(), rec.High())
	fmt.Fprintf(&sb, "| **Volume** | %.2fM shares |\n", rec.VolumeMillions())
	fmt.Fprintf(&sb, "| **Trading Day** | %s |\n\n", valueOr(rec.LatestTradingDay(), "N/A"))

	sb.WriteString("### Recent News\n")
	if len(b.News) == 0 {
		sb.WriteString("_No recent news articles found._\n")
	}
	for i, a := range b.News {
		fmt.Fprintf(&sb, "%d. [%s](%s) — %s\n", i+1, a.Title, a.URL, a.Source)
	}

	sb.WriteString("\n### Analysis\n")
	sb.WriteString(analysisText(b.Insights))
	sb.WriteString("\n\n---\n")
	fmt.Fprintf(&sb, "*Sources: %s*", strings.Join(b.Sources, ", "))

	return sb.String()
}

// signedDollars renders +$5.00 or -$1.25
func signedDollars(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("+$%.2f", v)
}

func analysisText(insights *contracts.Insights) string {
	switch {
	case insights == nil || insights.Status == contracts.InsightsDisabled:
		return "_Narrative analysis disabled._"
	case insights.Status != contracts.InsightsOK || insights.Summary == "":
		return "_Narrative analysis unavailable._"
	}
	return insights.Summary
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
