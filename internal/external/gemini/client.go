package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/pkg/logger"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// statusResourceExhausted is the API status string for quota failures
const statusResourceExhausted = "RESOURCE_EXHAUSTED"

// contentGenerator is the slice of *genai.Models this client uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client makes single narrative generation attempts against Gemini.
// Retrying is the caller's job.
// ⭐ SSOT: Gemini calls happen only in this client
type Client struct {
	models contentGenerator
	model  string
	logger *logger.Logger
}

// NewClient creates a Gemini API client
func NewClient(ctx context.Context, apiKey, model string, log *logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY", contracts.ErrConfigurationMissing)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newClient(client.Models, model, log), nil
}

func newClient(models contentGenerator, model string, log *logger.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		models: models,
		model:  model,
		logger: log.WithComponent("gemini"),
	}
}

// Name returns the provenance name recorded in briefings
func (c *Client) Name() string {
	return contracts.SourceGemini
}

// Model returns the configured model identifier
func (c *Client) Model() string {
	return c.model
}

// Generate makes one generation attempt. Quota failures wrap contracts.ErrRateLimited.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.4),
	})
	if err != nil {
		if isRateLimit(err) {
			return "", fmt.Errorf("%w: gemini: %w", contracts.ErrRateLimited, err)
		}
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}

	c.logger.WithFields(map[string]interface{}{
		"model": c.model,
		"chars": len(text),
	}).Debug("Narrative generated")

	return text, nil
}

// isRateLimit recognizes quota errors whether the SDK returns the error by value or pointer
func isRateLimit(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == statusResourceExhausted
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Status == statusResourceExhausted
	}
	return strings.Contains(err.Error(), statusResourceExhausted)
}
