package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"
	apiTimeout     = 60 * time.Second
)

// Client manages interactions with the Gemini generative-text API.
// Requests are dispatched with the keyring's current credential; quota
// failures rotate to the next one and retry, bounded by the key count.
type Client struct {
	keys       *Keyring
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Gemini API client over the given keyring
func NewClient(keys *Keyring, logger *zap.Logger) *Client {
	return &Client{
		keys:       keys,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: apiTimeout},
		logger:     logger,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// quotaError marks a failure classified as rate-limit/quota; only these
// trigger key rotation.
type quotaError struct {
	msg string
}

func (e *quotaError) Error() string { return e.msg }

// Generate sends a prompt (with an optional system instruction) and
// returns the free-text answer. On a quota failure the keyring advances
// and the request is retried, up to len(keys)+1 total attempts; any other
// failure propagates immediately.
func (c *Client) Generate(ctx context.Context, prompt, systemInstruction string) (string, error) {
	if c.keys.Len() == 0 {
		return "", ErrNoKeys
	}

	maxAttempts := c.keys.Len() + 1
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, err := c.generateOnce(ctx, prompt, systemInstruction)
		if err == nil {
			return text, nil
		}

		var qe *quotaError
		if !errors.As(err, &qe) {
			return "", err
		}

		c.logger.Warn("Gemini quota error, rotating key",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
		)
		c.keys.Rotate()
	}

	return "", ErrKeysExhausted
}

func (c *Client) generateOnce(ctx context.Context, prompt, systemInstruction string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if systemInstruction != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}}
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.keys.Current())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if isQuotaFailure(resp.StatusCode, body) {
		return "", &quotaError{msg: fmt.Sprintf("quota exceeded (status %d)", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	return strings.TrimSpace(response.Candidates[0].Content.Parts[0].Text), nil
}

// isQuotaFailure classifies rate-limit/quota failures, which are the only
// retryable class
func isQuotaFailure(status int, body []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "resource_exhausted") ||
		strings.Contains(lower, "quota") ||
		strings.Contains(lower, "exhausted")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
