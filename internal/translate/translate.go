package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://translate.googleapis.com/translate_a/single"
	apiTimeout     = 15 * time.Second

	// ErrorMarker is the value suggested to the user when the lookup
	// failed; the user can always type a translation by hand.
	ErrorMarker = "Error"
)

// Client performs best-effort word translation into Ukrainian using the
// public Google Translate endpoint
type Client struct {
	baseURL    string
	target     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a translation client
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		target:     "uk",
		httpClient: &http.Client{Timeout: apiTimeout},
		logger:     logger,
	}
}

// Translate returns the best-effort translation of text, or ErrorMarker
// when the service could not be reached or the answer was unreadable.
// It never returns an error.
func (c *Client) Translate(ctx context.Context, text string) string {
	reqURL := c.baseURL + "?client=gtx&sl=auto&tl=" + c.target + "&dt=t&q=" + url.QueryEscape(text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Warn("translate request build failed", zap.Error(err))
		return ErrorMarker
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("translate request failed", zap.Error(err))
		return ErrorMarker
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("translate returned non-OK status", zap.Int("status", resp.StatusCode))
		return ErrorMarker
	}

	// The endpoint answers with nested arrays:
	// [[["переклад","source",...],...],...]
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || len(payload) == 0 {
		c.logger.Warn("translate response decode failed", zap.Error(err))
		return ErrorMarker
	}

	var sentences [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &sentences); err != nil {
		return ErrorMarker
	}

	var sb strings.Builder
	for _, sentence := range sentences {
		if len(sentence) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(sentence[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}

	translated := strings.TrimSpace(sb.String())
	if translated == "" {
		return ErrorMarker
	}
	return translated
}
