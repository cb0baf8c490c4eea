package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/internal/external/htmltext"
	"github.com/wonny/clientintel/pkg/httputil"
	"github.com/wonny/clientintel/pkg/logger"
)

// DefaultBaseURL is the public NewsAPI endpoint
const DefaultBaseURL = "https://newsapi.org"

// DefaultDomains is the financial-press allowlist used in curated mode
var DefaultDomains = []string{"reuters.com", "bloomberg.com", "wsj.com", "ft.com", "cnbc.com"}

// broadWindow is how far back broad mode searches
const broadWindow = 30 * 24 * time.Hour

// Client queries NewsAPI's /v2/everything endpoint
// ⭐ SSOT: NewsAPI calls happen only in this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
	domains    []string
	now        func() time.Time
}

// NewClient creates a new NewsAPI client
func NewClient(httpClient *httputil.Client, apiKey, baseURL string, domains []string, log *logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: NEWS_API_KEY", contracts.ErrConfigurationMissing)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if len(domains) == 0 {
		domains = DefaultDomains
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("newsapi"),
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		domains:    domains,
		now:        time.Now,
	}, nil
}

// Name returns the provenance name recorded in briefings
func (c *Client) Name() string {
	return contracts.SourceNewsAPI
}

type everythingResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// FetchNews searches articles in curated or broad mode
func (c *Client) FetchNews(ctx context.Context, query string, mode contracts.NewsMode, limit int) ([]contracts.Article, error) {
	params, err := c.params(query, mode, limit)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v2/everything?%s", c.baseURL, params.Encode())

	var resp everythingResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, classify(err)
	}

	if resp.Status != "ok" {
		msg := resp.Message
		if msg == "" {
			msg = "unknown"
		}
		return nil, fmt.Errorf("%w: NewsAPI error: %s", contracts.ErrProviderError, msg)
	}

	articles := make([]contracts.Article, 0, limit)
	for _, a := range resp.Articles {
		if len(articles) == limit {
			break
		}
		article := contracts.Article{
			Title:       strings.TrimSpace(a.Title),
			Source:      strings.TrimSpace(a.Source.Name),
			URL:         strings.TrimSpace(a.URL),
			PublishedAt: strings.TrimSpace(a.PublishedAt),
			Description: htmltext.PlainText(a.Description),
		}
		if !article.Valid() {
			continue
		}
		articles = append(articles, article)
	}

	c.logger.WithFields(map[string]interface{}{
		"mode":     string(mode),
		"query":    query,
		"returned": len(resp.Articles),
		"kept":     len(articles),
	}).Debug("NewsAPI search completed")

	return articles, nil
}

func (c *Client) params(query string, mode contracts.NewsMode, limit int) (url.Values, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", contracts.ErrProviderError)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", contracts.ErrProviderError)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("apiKey", c.apiKey)

	switch mode {
	case contracts.ModeCurated:
		params.Set("domains", strings.Join(c.domains, ","))
	case contracts.ModeBroad:
		params.Set("from", c.now().Add(-broadWindow).Format("2006-01-02"))
	default:
		return nil, fmt.Errorf("%w: NewsAPI does not support mode %q", contracts.ErrProviderError, mode)
	}

	return params, nil
}

// classify wraps a transport failure, pulling NewsAPI's JSON error message when present
func classify(err error) error {
	var statusErr *httputil.StatusError
	if !errors.As(err, &statusErr) {
		return fmt.Errorf("%w: %w", contracts.ErrProviderError, err)
	}

	msg := statusErr.Body
	var body everythingResponse
	if json.Unmarshal([]byte(statusErr.Body), &body) == nil && body.Message != "" {
		msg = body.Message
	}

	if httputil.IsRateLimitStatus(statusErr.StatusCode) {
		return fmt.Errorf("%w: %w: %s", contracts.ErrProviderError, contracts.ErrRateLimited, msg)
	}
	return fmt.Errorf("%w: NewsAPI status %d: %s", contracts.ErrProviderError, statusErr.StatusCode, msg)
}
