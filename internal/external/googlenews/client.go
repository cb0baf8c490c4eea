package googlenews

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/internal/external/htmltext"
	"github.com/wonny/clientintel/pkg/httputil"
	"github.com/wonny/clientintel/pkg/logger"
)

// DefaultBaseURL is the public Google News host
const DefaultBaseURL = "https://news.google.com"

// DefaultUserAgent identifies the client to the feed, which rejects bare Go clients
const DefaultUserAgent = "Mozilla/5.0 (compatible; ClientIntel/1.0)"

// MaxItems bounds one feed read
const MaxItems = 10

// Client reads the Google News RSS search feed. No credentials required.
// ⭐ SSOT: Google News feed reads happen only in this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new feed client. The User-Agent is applied to httpClient.
func NewClient(httpClient *httputil.Client, baseURL, userAgent string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		httpClient: httpClient.WithUserAgent(userAgent),
		logger:     log.WithComponent("googlenews"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the provenance name recorded in briefings
func (c *Client) Name() string {
	return contracts.SourceGoogleNews
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Source      string `xml:"source"`
}

// FetchNews reads up to limit feed items for query. Only syndication mode is supported.
func (c *Client) FetchNews(ctx context.Context, query string, mode contracts.NewsMode, limit int) ([]contracts.Article, error) {
	if mode != contracts.ModeSyndication {
		return nil, fmt.Errorf("%w: Google News does not support mode %q", contracts.ErrProviderError, mode)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", contracts.ErrProviderError)
	}
	if limit <= 0 || limit > MaxItems {
		limit = MaxItems
	}

	body, err := c.httpClient.GetBody(ctx, c.searchURL(query))
	if err != nil {
		return nil, fmt.Errorf("%w: google news feed: %w", contracts.ErrProviderError, err)
	}

	articles, err := parseFeed(body, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: google news feed: %w", contracts.ErrProviderError, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"query": query,
		"kept":  len(articles),
	}).Debug("Google News feed read")

	return articles, nil
}

func (c *Client) searchURL(query string) string {
	return fmt.Sprintf("%s/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en", c.baseURL, url.QueryEscape(query))
}

// parseFeed keeps items that have both a title and a link, in feed order
func parseFeed(body []byte, limit int) ([]contracts.Article, error) {
	var feed rssFeed
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("invalid RSS: %w", err)
	}

	articles := make([]contracts.Article, 0, limit)
	for _, item := range feed.Channel.Items {
		if len(articles) == limit {
			break
		}

		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		source := strings.TrimSpace(item.Source)
		if source == "" {
			source = contracts.SourceGoogleNews
		}

		articles = append(articles, contracts.Article{
			Title:       title,
			Source:      source,
			URL:         link,
			PublishedAt: strings.TrimSpace(item.PubDate),
			Description: htmltext.PlainText(item.Description),
		})
	}

	return articles, nil
}
