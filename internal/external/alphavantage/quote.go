package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/wonny/clientintel/internal/contracts"
)

// Global Quote field names
const (
	fieldSymbol        = "01. symbol"
	fieldOpen          = "02. open"
	fieldHigh          = "03. high"
	fieldLow           = "04. low"
	fieldPrice         = "05. price"
	fieldVolume        = "06. volume"
	fieldTradingDay    = "07. latest trading day"
	fieldPreviousClose = "08. previous close"
	fieldChange        = "09. change"
	fieldChangePercent = "10. change percent"
)

type globalQuoteResponse struct {
	envelope
	GlobalQuote map[string]string `json:"Global Quote"`
}

// FetchQuote returns the normalized quote for ticker. Not retried.
// Every failure wraps contracts.ErrDataUnavailable.
func (c *Client) FetchQuote(ctx context.Context, ticker string) (*contracts.PerformanceRecord, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", contracts.ErrDataUnavailable)
	}

	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", ticker)

	var resp globalQuoteResponse
	if err := c.httpClient.GetJSON(ctx, c.queryURL(params), &resp); err != nil {
		return nil, fmt.Errorf("%w: quote for %s: %w", contracts.ErrDataUnavailable, ticker, err)
	}

	if msg := resp.problem(); msg != "" && len(resp.GlobalQuote) == 0 {
		return nil, fmt.Errorf("%w: quote for %s: %s", contracts.ErrDataUnavailable, ticker, msg)
	}

	rec, err := parseGlobalQuote(ticker, resp.GlobalQuote)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": rec.Symbol(),
		"price":  rec.Price(),
	}).Debug("Quote fetched")

	return rec, nil
}

// parseGlobalQuote converts the string fields of a Global Quote.
// A missing numeric field counts as 0; a present but non-numeric one is an error.
func parseGlobalQuote(ticker string, fields map[string]string) (*contracts.PerformanceRecord, error) {
	if len(fields) == 0 || strings.TrimSpace(fields[fieldPrice]) == "" {
		return nil, fmt.Errorf("%w: no valid quote for %q", contracts.ErrDataUnavailable, ticker)
	}

	p := fieldParser{fields: fields}
	q := contracts.Quote{
		Symbol:           p.str(fieldSymbol, ticker),
		Price:            p.float(fieldPrice),
		Change:           p.float(fieldChange),
		ChangePercent:    p.str(fieldChangePercent, "0%"),
		Open:             p.float(fieldOpen),
		High:             p.float(fieldHigh),
		Low:              p.float(fieldLow),
		PreviousClose:    p.float(fieldPreviousClose),
		Volume:           p.int(fieldVolume),
		LatestTradingDay: p.str(fieldTradingDay, ""),
	}
	if p.err != nil {
		return nil, fmt.Errorf("%w: quote for %q: %w", contracts.ErrDataUnavailable, ticker, p.err)
	}

	return contracts.NewPerformanceRecord(q)
}

// fieldParser keeps the first parse error so the caller checks once
type fieldParser struct {
	fields map[string]string
	err    error
}

func (p *fieldParser) str(key, def string) string {
	if v, ok := p.fields[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (p *fieldParser) float(key string) float64 {
	v, ok := p.fields[key]
	if !ok || p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		p.err = fmt.Errorf("field %q: %w", key, err)
		return 0
	}
	return f
}

func (p *fieldParser) int(key string) int64 {
	v, ok := p.fields[key]
	if !ok || p.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		p.err = fmt.Errorf("field %q: %w", key, err)
		return 0
	}
	return n
}
