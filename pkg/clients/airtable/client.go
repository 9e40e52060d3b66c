package airtable

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.airtable.com"

// Client defines the interface for interacting with Airtable API
type Client interface {
	// CreateRecord stores one record in table and returns the id Airtable
	// assigned to it, or "" when the response carries none.
	CreateRecord(ctx context.Context, table string, fields any) (string, error)
}

// APIError is returned when Airtable answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("error from Airtable API (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("error from Airtable API (%d): %s", e.StatusCode, e.Body)
}

type clientImpl struct {
	apiKey     string
	baseID     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*clientImpl)

func WithBaseURL(u string) Option {
	return func(c *clientImpl) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientImpl) { c.httpClient = hc }
}

// WithRequestsPerSecond throttles outbound calls. Airtable allows five
// requests per second per base.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *clientImpl) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewClient creates a new Airtable client
func NewClient(apiKey, baseID string, opts ...Option) Client {
	c := &clientImpl{
		apiKey:     apiKey,
		baseID:     baseID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(5, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *clientImpl) CreateRecord(ctx context.Context, table string, fields any) (string, error) {
	endpoint := fmt.Sprintf("%s/v0/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(table))

	// Format data for Airtable API
	payload := map[string]any{
		"records": []map[string]any{
			{"fields": fields},
		},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error creating payload: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("error waiting for Airtable rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error creating Airtable record: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", parseAPIError(resp.StatusCode, body)
	}

	var response struct {
		Records []struct {
			ID string `json:"id"`
		} `json:"records"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		// Stored, but the id is unreadable; the caller falls back to its own.
		log.Warn().Err(err).Str("table", table).Msg("unparseable Airtable create response")
		return "", nil
	}

	var id string
	if len(response.Records) > 0 {
		id = response.Records[0].ID
	}
	log.Debug().Str("table", table).Str("record_id", id).Msg("created Airtable record")
	return id, nil
}

// parseAPIError reads both error shapes Airtable uses:
// {"error":{"type":"...","message":"..."}} and {"error":"NOT_FOUND"}.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return apiErr
	}

	var detailed struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detailed); err == nil {
		apiErr.Type = detailed.Type
		apiErr.Message = detailed.Message
		return apiErr
	}

	var code string
	if err := json.Unmarshal(envelope.Error, &code); err == nil {
		apiErr.Type = code
	}
	return apiErr
}
