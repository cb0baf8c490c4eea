package narrative

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wonny/clientintel/internal/contracts"
)

// PromptHeadlines is how many headlines the prompt includes
const PromptHeadlines = 5

// BuildPrompt renders the analyst prompt for one company
func BuildPrompt(company string, rec *contracts.PerformanceRecord, articles []contracts.Article) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a financial analyst. Analyze the following data for %s:\n\n", company)

	b.WriteString("STOCK PERFORMANCE:\n")
	fmt.Fprintf(&b, "Stock: %s\n", rec.Symbol())
	fmt.Fprintf(&b, "Price: $%.2f\n", rec.Price())
	fmt.Fprintf(&b, "Change: %s\n", rec.ChangePercent())
	fmt.Fprintf(&b, "Day Range: $%.2f - $%.2f\n", rec.Low(), rec.High())
	fmt.Fprintf(&b, "Volume: %.2fM shares\n", rec.VolumeMillions())
	fmt.Fprintf(&b, "Trading Day: %s\n\n", orNA(rec.LatestTradingDay()))

	b.WriteString("RECENT NEWS:\n")
	if len(articles) == 0 {
		b.WriteString("- No recent news articles found.\n")
	}
	for i, a := range articles {
		if i == PromptHeadlines {
			break
		}
		fmt.Fprintf(&b, "- %s (%s)\n", a.Title, a.Source)
	}

	b.WriteString("\nProvide a concise 3-4 sentence analysis covering:\n")
	b.WriteString("1. Current stock performance and trading activity\n")
	b.WriteString("2. Key themes from recent news\n")
	b.WriteString("3. Brief outlook or considerations for investors\n\n")
	b.WriteString("Be professional, factual, and balanced. No buy/sell recommendations.")

	return b.String()
}

// NewInsights builds the fact part of an insights bundle with the given status and no summary
func NewInsights(status, company string, rec *contracts.PerformanceRecord, articles []contracts.Article, now time.Time) *contracts.Insights {
	movement := "negative"
	if rec.Change() > 0 {
		movement = "positive"
	}

	return &contracts.Insights{
		Status:        status,
		Company:       company,
		Symbol:        rec.Symbol(),
		Price:         rec.Price(),
		ChangePercent: rec.ChangePercent(),
		Timestamp:     now,
		NewsCount:     len(articles),
		KeyMetrics: contracts.KeyMetrics{
			PriceMovement:  movement,
			VolumeMillions: round2(rec.VolumeMillions()),
			Volatility:     round2(rec.DayRangePercent()),
		},
	}
}

// Summarizer produces insights bundles. A failed generation yields an "unavailable"
// bundle rather than an error.
type Summarizer struct {
	generator *Retrier
	now       func() time.Time
}

// NewSummarizer creates a Summarizer over a retried generator
func NewSummarizer(generator *Retrier) *Summarizer {
	return &Summarizer{generator: generator, now: time.Now}
}

// Source returns the provenance name recorded when a summary is produced
func (s *Summarizer) Source() string {
	return s.generator.Name()
}

// Summarize generates the narrative for the given facts
func (s *Summarizer) Summarize(ctx context.Context, company string, rec *contracts.PerformanceRecord, articles []contracts.Article) *contracts.Insights {
	text, err := s.generator.Generate(ctx, BuildPrompt(company, rec, articles))
	if err != nil {
		insights := NewInsights(contracts.InsightsUnavailable, company, rec, articles, s.now())
		insights.Error = err.Error()
		return insights
	}

	insights := NewInsights(contracts.InsightsOK, company, rec, articles, s.now())
	insights.Summary = text
	return insights
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
