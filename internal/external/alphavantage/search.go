package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/clientintel/internal/contracts"
)

type symbolSearchResponse struct {
	envelope
	BestMatches []map[string]string `json:"bestMatches"`
}

// SearchTicker resolves a company name to ticker candidates in provider order.
// No matches is a normal result with Found=false.
func (c *Client) SearchTicker(ctx context.Context, company string) (*contracts.TickerResult, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, fmt.Errorf("%w: empty company name", contracts.ErrProviderError)
	}

	params := url.Values{}
	params.Set("function", "SYMBOL_SEARCH")
	params.Set("keywords", company)

	var resp symbolSearchResponse
	if err := c.httpClient.GetJSON(ctx, c.queryURL(params), &resp); err != nil {
		return nil, fmt.Errorf("%w: symbol search for %q: %w", contracts.ErrProviderError, company, err)
	}

	if msg := resp.problem(); msg != "" && len(resp.BestMatches) == 0 {
		return nil, fmt.Errorf("%w: symbol search for %q: %s", contracts.ErrProviderError, company, msg)
	}

	result := buildTickerResult(company, resp.BestMatches)
	c.logger.WithFields(map[string]interface{}{
		"query": company,
		"found": result.Found,
		"count": len(result.Suggestions),
	}).Debug("Symbol search completed")

	return result, nil
}

func buildTickerResult(query string, matches []map[string]string) *contracts.TickerResult {
	if len(matches) == 0 {
		return &contracts.TickerResult{
			Found:       false,
			Query:       query,
			Suggestions: []contracts.TickerMatch{},
			Message:     fmt.Sprintf("No ticker found for '%s'.", query),
		}
	}

	suggestions := make([]contracts.TickerMatch, 0, contracts.MaxTickerSuggestions)
	for _, m := range matches {
		if len(suggestions) == contracts.MaxTickerSuggestions {
			break
		}
		suggestions = append(suggestions, contracts.TickerMatch{
			Symbol: m["1. symbol"],
			Name:   m["2. name"],
			Type:   m["3. type"],
			Region: m["4. region"],
		})
	}

	best := suggestions[0]
	return &contracts.TickerResult{
		Found:       true,
		Query:       query,
		Ticker:      best.Symbol,
		Name:        best.Name,
		Type:        best.Type,
		Region:      best.Region,
		Suggestions: suggestions,
		Message:     fmt.Sprintf("Found ticker '%s' for '%s'", best.Symbol, best.Name),
	}
}
