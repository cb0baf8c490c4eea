package briefing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clientintel/internal/contracts"
)

func sampleBriefing(t *testing.T) *contracts.Briefing {
	t.Helper()
	rec, err := contracts.NewPerformanceRecord(*msftQuote())
	require.NoError(t, err)

	return &contracts.Briefing{
		Company:     "Microsoft",
		Ticker:      "MSFT",
		GeneratedAt: time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC),
		Performance: rec,
		News: []contracts.Article{
			{Title: "Microsoft beats", Source: "Reuters", URL: "https://reuters.com/a"},
			{Title: "Azure grows", Source: "CNBC", URL: "https://cnbc.com/b"},
		},
		Sources:  []string{contracts.SourceAlphaVantage, contracts.SourceNewsAPI, contracts.SourceGemini},
		Insights: &contracts.Insights{Status: contracts.InsightsOK, Summary: "Shares rose on cloud strength."},
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleBriefing(t))

	assert.True(t, strings.HasPrefix(md, "## Microsoft (MSFT) — Company Briefing\n\n### Stock Performance\n"))
	assert.Contains(t, md, "| **Price** | $300.00 |")
	assert.Contains(t, md, "| **Change** | +$5.00 (1.6949%) |")
	assert.Contains(t, md, "| **Day Range** | $294.00 – $302.00 |")
	assert.Contains(t, md, "| **Volume** | 20.00M shares |")
	assert.Contains(t, md, "| **Trading Day** | 2024-05-01 |")
	assert.Contains(t, md, "1. [Microsoft beats](https://reuters.com/a) — Reuters\n2. [Azure grows](https://cnbc.com/b) — CNBC\n")
	assert.Contains(t, md, "### Analysis\nShares rose on cloud strength.\n")
	assert.True(t, strings.HasSuffix(md, "---\n*Sources: Alpha Vantage, NewsAPI, Gemini*"))
}

func TestRenderMarkdown_Degraded(t *testing.T) {
	b := sampleBriefing(t)
	b.News = nil
	b.Insights = &contracts.Insights{Status: contracts.InsightsUnavailable}

	md := RenderMarkdown(b)
	assert.Contains(t, md, "_No recent news articles found._")
	assert.Contains(t, md, "_Narrative analysis unavailable._")

	b.Insights = nil
	assert.Contains(t, RenderMarkdown(b), "_Narrative analysis disabled._")
}

func TestSignedDollars(t *testing.T) {
	assert.Equal(t, "+$5.00", signedDollars(5))
	assert.Equal(t, "+$0.00", signedDollars(0))
	assert.Equal(t, "-$1.25", signedDollars(-1.25))
}
