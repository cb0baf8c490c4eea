package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/clientintel/internal/archive"
	"github.com/wonny/clientintel/internal/contracts"
)

type fakeTickers struct{}

func (fakeTickers) SearchTicker(ctx context.Context, company string) (*contracts.TickerResult, error) {
	if company == "Nowhere Corp" {
		return &contracts.TickerResult{Query: company, Suggestions: []contracts.TickerMatch{}, Message: "No ticker found for 'Nowhere Corp'."}, nil
	}
	return &contracts.TickerResult{Found: true, Query: company, Ticker: "MSFT", Name: "Microsoft Corporation", Suggestions: []contracts.TickerMatch{}}, nil
}

type fakeQuotes struct{}

func (fakeQuotes) Name() string { return contracts.SourceAlphaVantage }

func (fakeQuotes) FetchQuote(ctx context.Context, ticker string) (*contracts.PerformanceRecord, error) {
	if ticker == "ZZZZ" {
		return nil, contracts.ErrDataUnavailable
	}
	return contracts.NewPerformanceRecord(contracts.Quote{
		Symbol: ticker, Price: 300, Change: 5, ChangePercent: "1.6949%",
		Open: 295, High: 302, Low: 294, Volume: 20_000_000, LatestTradingDay: "2024-05-01",
	})
}

type newsCall struct {
	Query string
	Mode  contracts.NewsMode
}

type fakeNews struct {
	mu    sync.Mutex
	calls []newsCall
	err   error
}

func (f *fakeNews) Fetch(ctx context.Context, query string, mode contracts.NewsMode) ([]contracts.Article, error) {
	f.mu.Lock()
	f.calls = append(f.calls, newsCall{query, mode})
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []contracts.Article{{Title: query + " headline", Source: "Reuters", URL: "https://reuters.com/x"}}, nil
}

type fakeBriefer struct {
	quotes fakeQuotes
	delay  time.Duration
}

func (f fakeBriefer) GenerateBriefing(ctx context.Context, company, ticker string) (*contracts.Briefing, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	rec, err := f.quotes.FetchQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if company == "" {
		company = ticker
	}
	return &contracts.Briefing{
		ID:          "id-" + ticker,
		Company:     company,
		Ticker:      ticker,
		GeneratedAt: time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC),
		Performance: rec,
		News:        []contracts.Article{},
		Sources:     []string{contracts.SourceAlphaVantage},
		Insights:    &contracts.Insights{Status: contracts.InsightsDisabled, Symbol: ticker},
	}, nil
}

func (f fakeBriefer) Insights(ctx context.Context, company string, rec *contracts.PerformanceRecord, articles []contracts.Article) *contracts.Insights {
	return &contracts.Insights{
		Status:    contracts.InsightsDisabled,
		Company:   company,
		Symbol:    rec.Symbol(),
		Price:     rec.Price(),
		NewsCount: len(articles),
	}
}

type memoryArchive struct {
	mu    sync.Mutex
	items map[string]*contracts.Briefing
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{items: make(map[string]*contracts.Briefing)}
}

func (m *memoryArchive) Save(ctx context.Context, b *contracts.Briefing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[b.ID] = b
	return nil
}

func (m *memoryArchive) Recent(ctx context.Context, ticker string, limit int) ([]archive.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []archive.Summary{}
	for _, b := range m.items {
		if ticker != "" && b.Ticker != ticker {
			continue
		}
		out = append(out, archive.Summary{ID: b.ID, Company: b.Company, Ticker: b.Ticker, GeneratedAt: b.GeneratedAt})
	}
	return out, nil
}

func (m *memoryArchive) Get(ctx context.Context, id string) (*contracts.Briefing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, archive.ErrNotFound
	}
	return b, nil
}

func testServices() (Services, *fakeNews, *memoryArchive) {
	news := &fakeNews{}
	arch := newMemoryArchive()
	return Services{
		Tickers:   fakeTickers{},
		Quotes:    fakeQuotes{},
		News:      news,
		Briefings: fakeBriefer{},
		Archive:   arch,
	}, news, arch
}
