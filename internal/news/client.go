package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client fetches articles from the upstream news provider.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewClient builds a news client for the given Newsdata.io-compatible endpoint.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch queries the provider and returns its decoded response body.
func (c *Client) Fetch(ctx context.Context, query, language string) (map[string]any, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("news: parse endpoint: %w", err)
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("q", query)
	if language != "" {
		params.Set("language", language)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("news: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("news: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news: provider returned status %d", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("news: decode response: %w", err)
	}
	return payload, nil
}
