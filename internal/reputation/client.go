// Package reputation provides domain trust scores for the deliverability
// probe: an HTTP client for the external reputation service and a Redis
// cache in front of it.
package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ignite/deliverability-engine/internal/pkg/httpretry"
)

// Oracle returns a 0-100 trust score for a domain.
type Oracle interface {
	ScoreDomain(ctx context.Context, domain string) (float64, error)
}

// scoreResponse is the body of GET /v1/domains/{domain}/score.
type scoreResponse struct {
	Domain string   `json:"domain"`
	Score  *float64 `json:"score"`
}

// Client calls the external reputation service.
type Client struct {
	baseURL string
	apiKey  string
	http    httpretry.HTTPDoer
}

// NewClient creates a reputation client. doer is usually a
// *httpretry.RetryClient.
func NewClient(baseURL, apiKey string, doer httpretry.HTTPDoer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    doer,
	}
}

// ScoreDomain fetches the trust score for domain.
func (c *Client) ScoreDomain(ctx context.Context, domain string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v1/domains/%s/score", c.baseURL, url.PathEscape(domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build reputation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("reputation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("reputation service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode reputation response: %w", err)
	}
	if out.Score == nil {
		return 0, fmt.Errorf("reputation response for %s has no score", domain)
	}
	if *out.Score < 0 || *out.Score > 100 {
		return 0, fmt.Errorf("reputation score %.2f for %s out of range", *out.Score, domain)
	}
	return *out.Score, nil
}
