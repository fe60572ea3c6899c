// Package generate is the client for the remote text-generation
// service, an external collaborator specified only at this interface.
package generate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/repofit/repofit-backend/internal/language"
	"github.com/repofit/repofit-backend/internal/model"
)

// Request carries everything the generation service needs to draft a
// tailored project description.
type Request struct {
	RepoURL     string     `json:"repoUrl"`
	RepoSummary string     `json:"repoSummary"`
	JobPosting  string     `json:"jobPosting"`
	Tone        model.Tone `json:"tone,omitempty"`
	Descriptors []string   `json:"descriptors,omitempty"`
	Signals     []string   `json:"signals,omitempty"`
}

// Generator drafts a Markdown project description.
type Generator interface {
	GenerateDescription(ctx context.Context, req Request) (string, error)
}

// Client is the resty-backed Generator.
type Client struct {
	http *resty.Client
}

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

type generateResponse struct {
	Markdown string `json:"markdown"`
}

// GenerateDescription implements Generator. Non-2xx statuses become
// *language.APIError so the shared transient classifier applies.
func (c *Client) GenerateDescription(ctx context.Context, req Request) (string, error) {
	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&req).
		SetResult(&out).
		Post("/v1/descriptions:generate")
	if err != nil {
		return "", fmt.Errorf("generate description: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", fmt.Errorf("generate description: %w",
			&language.APIError{StatusCode: resp.StatusCode(), Body: resp.String()})
	}
	return out.Markdown, nil
}

// HealthPing implements health.HealthPinger for the generation API.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/v1/health")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("generation api status %d", resp.StatusCode())
	}
	return nil
}
