package language

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/repofit/repofit-backend/internal/model"
)

// Client talks to the language API over HTTP. One instance is shared
// across requests; resty's client is safe for concurrent use.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for the given base URL. The per-request
// deadline comes from the caller's context, so no client timeout is
// set beyond a generous transport ceiling.
func NewClient(baseURL, apiKey string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)
	if apiKey != "" {
		c.SetHeader("X-Api-Key", apiKey)
	}
	return &Client{http: c}
}

type documentRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	DocumentSentiment model.Sentiment `json:"documentSentiment"`
}

type entitiesResponse struct {
	Entities []model.Entity `json:"entities"`
}

type classifyResponse struct {
	Categories []model.ContentCategory `json:"categories"`
}

// AnalyzeSentiment implements Analyzer.
func (c *Client) AnalyzeSentiment(ctx context.Context, text string) (model.Sentiment, error) {
	var out sentimentResponse
	if err := c.post(ctx, "/v1/documents:analyzeSentiment", text, &out); err != nil {
		return model.Sentiment{}, fmt.Errorf("analyze sentiment: %w", err)
	}
	return out.DocumentSentiment, nil
}

// AnalyzeEntities implements Analyzer.
func (c *Client) AnalyzeEntities(ctx context.Context, text string) ([]model.Entity, error) {
	var out entitiesResponse
	if err := c.post(ctx, "/v1/documents:analyzeEntities", text, &out); err != nil {
		return nil, fmt.Errorf("analyze entities: %w", err)
	}
	return out.Entities, nil
}

// ClassifyText implements Analyzer.
func (c *Client) ClassifyText(ctx context.Context, text string) ([]model.ContentCategory, error) {
	var out classifyResponse
	if err := c.post(ctx, "/v1/documents:classifyText", text, &out); err != nil {
		return nil, fmt.Errorf("classify text: %w", err)
	}
	return out.Categories, nil
}

func (c *Client) post(ctx context.Context, path, text string, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&documentRequest{Text: text}).
		SetResult(out).
		Post(path)
	if err != nil {
		return err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// HealthPing implements health.HealthPinger for the language API.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/v1/health")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("language api status %d", resp.StatusCode())
	}
	return nil
}
