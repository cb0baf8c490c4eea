package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/clientintel/internal/briefing"
	"github.com/wonny/clientintel/internal/contracts"
)

// ErrUnknownTool is returned for a tool name not in the catalogue
var ErrUnknownTool = errors.New("unknown tool")

// ErrInvalidArguments is returned when a tool's arguments do not decode or are incomplete
var ErrInvalidArguments = errors.New("invalid tool arguments")

// ToolSpec describes one callable tool
type ToolSpec struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Arguments   []string `json:"arguments"`
}

type toolFunc func(ctx context.Context, args json.RawMessage) (interface{}, error)

// Toolbox dispatches named tool calls onto the briefing services
// ⭐ SSOT: the tool catalogue is defined here
type Toolbox struct {
	svc   Services
	specs []ToolSpec
	funcs map[string]toolFunc
}

// NewToolbox builds the tool catalogue over svc
func NewToolbox(svc Services) *Toolbox {
	t := &Toolbox{svc: svc, funcs: make(map[string]toolFunc)}

	t.register(ToolSpec{"search_ticker_symbol", "Search for a company's stock ticker symbol by name.", []string{"company_name"}}, t.searchTicker)
	t.register(ToolSpec{"get_stock_performance", "Fetch real-time stock performance data for a ticker.", []string{"stock_ticker"}}, t.stockPerformance)
	t.register(ToolSpec{"get_financial_news", "Latest financial news from premium outlets.", []string{"company_name"}}, t.newsTool(contracts.ModeCurated))
	t.register(ToolSpec{"get_general_news", "Latest general news for a company from all sources.", []string{"company_name"}}, t.newsTool(contracts.ModeBroad))
	t.register(ToolSpec{"get_google_news", "Recent news from the Google News RSS feed. No API key required.", []string{"query"}}, t.googleNews)
	t.register(ToolSpec{"summarize_company_insights", "Narrative analysis over supplied stock data and articles.", []string{"stock_data", "news_articles", "company_name"}}, t.summarize)
	t.register(ToolSpec{"generate_company_briefing", "Full company briefing: quote, news cascade and analysis.", []string{"company_name", "stock_ticker"}}, t.generateBriefing)
	t.register(ToolSpec{"list_tools", "List the available tools.", []string{}}, t.listTools)

	return t
}

func (t *Toolbox) register(spec ToolSpec, fn toolFunc) {
	t.specs = append(t.specs, spec)
	t.funcs[spec.Name] = fn
}

// Specs returns the catalogue in registration order
func (t *Toolbox) Specs() []ToolSpec {
	out := make([]ToolSpec, len(t.specs))
	copy(out, t.specs)
	return out
}

// Call runs tool name with JSON arguments
func (t *Toolbox) Call(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	fn, ok := t.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	return fn(ctx, args)
}

func decodeArgs(args json.RawMessage, dest interface{}) error {
	if err := json.Unmarshal(args, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArguments, name)
	}
	return nil
}

func (t *Toolbox) searchTicker(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args struct {
		CompanyName string `json:"company_name"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("company_name", args.CompanyName); err != nil {
		return nil, err
	}
	return t.svc.Tickers.SearchTicker(ctx, args.CompanyName)
}

func (t *Toolbox) stockPerformance(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args struct {
		StockTicker string `json:"stock_ticker"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("stock_ticker", args.StockTicker); err != nil {
		return nil, err
	}
	return t.svc.Quotes.FetchQuote(ctx, strings.ToUpper(strings.TrimSpace(args.StockTicker)))
}

func (t *Toolbox) newsTool(mode contracts.NewsMode) toolFunc {
	return func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
		var args struct {
			CompanyName string `json:"company_name"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if err := required("company_name", args.CompanyName); err != nil {
			return nil, err
		}
		return t.svc.News.Fetch(ctx, args.CompanyName, mode)
	}
}

func (t *Toolbox) googleNews(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("query", args.Query); err != nil {
		return nil, err
	}
	return t.svc.News.Fetch(ctx, args.Query, contracts.ModeSyndication)
}

func (t *Toolbox) summarize(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args struct {
		StockData    *contracts.PerformanceRecord `json:"stock_data"`
		NewsArticles []contracts.Article          `json:"news_articles"`
		CompanyName  string                       `json:"company_name"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.StockData == nil {
		return nil, fmt.Errorf("%w: stock_data is required", ErrInvalidArguments)
	}
	if err := required("company_name", args.CompanyName); err != nil {
		return nil, err
	}
	if args.NewsArticles == nil {
		args.NewsArticles = []contracts.Article{}
	}
	return t.svc.Briefings.Insights(ctx, args.CompanyName, args.StockData, args.NewsArticles), nil
}

func (t *Toolbox) generateBriefing(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args struct {
		CompanyName string `json:"company_name"`
		StockTicker string `json:"stock_ticker"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("stock_ticker", args.StockTicker); err != nil {
		return nil, err
	}

	b, err := t.svc.Briefings.GenerateBriefing(ctx, args.CompanyName, args.StockTicker)
	if err != nil {
		return nil, err
	}
	if t.svc.Archive != nil {
		// archiving is best effort for tool callers
		_ = t.svc.Archive.Save(ctx, b)
	}
	return BriefingResponse{Briefing: b, FormattedBriefing: briefing.RenderMarkdown(b)}, nil
}

func (t *Toolbox) listTools(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	return t.Specs(), nil
}
