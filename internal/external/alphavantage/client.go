package alphavantage

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/pkg/httputil"
	"github.com/wonny/clientintel/pkg/logger"
)

// DefaultBaseURL is the public Alpha Vantage endpoint
const DefaultBaseURL = "https://www.alphavantage.co"

// Client handles communication with the Alpha Vantage API
// ⭐ SSOT: Alpha Vantage calls happen only in this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
}

// NewClient creates a new Alpha Vantage client.
// The shared httputil client should carry the provider rate limiter.
func NewClient(httpClient *httputil.Client, apiKey, baseURL string, log *logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: ALPHA_VANTAGE_API_KEY", contracts.ErrConfigurationMissing)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("alphavantage"),
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// Name returns the provenance name recorded in briefings
func (c *Client) Name() string {
	return contracts.SourceAlphaVantage
}

// envelope holds the fields Alpha Vantage uses to report problems with HTTP 200
type envelope struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// problem returns the provider's own error text, if any
func (e envelope) problem() string {
	switch {
	case e.ErrorMessage != "":
		return e.ErrorMessage
	case e.Note != "":
		return e.Note
	case e.Information != "":
		return e.Information
	}
	return ""
}

func (c *Client) queryURL(params url.Values) string {
	params.Set("apikey", c.apiKey)
	return fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())
}
