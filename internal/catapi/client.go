// Package catapi fetches breed images from The Cat API and seeds the cats collection.
package catapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public Cat API.
const DefaultBaseURL = "https://api.thecatapi.com"

// Client is a minimal Cat API client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a client. apiKey may be empty; the API then serves a reduced quota.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type imageResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// BreedImage returns the URL of one image for breedID, or "" when the API has none.
func (c *Client) BreedImage(ctx context.Context, breedID string) (string, error) {
	q := url.Values{}
	q.Set("breed_ids", breedID)
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/images/search?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("cat API request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cat API request failed: %s", resp.Status)
	}

	var results []imageResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("failed to decode cat API response: %w", err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].URL, nil
}
