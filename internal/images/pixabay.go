package images

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://pixabay.com/api/"
	apiTimeout     = 30 * time.Second
)

// Client queries the Pixabay image-search API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Pixabay client. An empty API key disables lookups;
// every Resolve call then returns "".
func NewClient(apiKey string, logger *zap.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: apiTimeout},
		logger:     logger,
	}
}

type searchResponse struct {
	Hits []struct {
		WebformatURL string `json:"webformatURL"`
	} `json:"hits"`
}

// Resolve returns a photo URL for the query, or "" when nothing was
// found or the lookup failed. With wantRandom a larger result page is
// requested and a random hit chosen; otherwise the first hit of a small
// page wins. Never returns an error: an absent image degrades the
// message, it does not fail it.
func (c *Client) Resolve(ctx context.Context, query string, wantRandom bool) string {
	if query == "" || c.apiKey == "" {
		return ""
	}

	perPage := 3
	if wantRandom {
		perPage = 20
	}

	reqURL := fmt.Sprintf("%s?key=%s&q=%s&image_type=photo&orientation=horizontal&safesearch=true&per_page=%d",
		c.baseURL, c.apiKey, url.QueryEscape(query), perPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Warn("Pixabay request build failed", zap.Error(err))
		return ""
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Pixabay request failed", zap.Error(err), zap.String("query", query))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Pixabay returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("query", query),
		)
		return ""
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Warn("Pixabay response decode failed", zap.Error(err))
		return ""
	}

	if len(result.Hits) == 0 {
		return ""
	}
	if wantRandom {
		return result.Hits[rand.Intn(len(result.Hits))].WebformatURL
	}
	return result.Hits[0].WebformatURL
}
