package resend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.resend.com"

// Email is one outbound message.
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// Client defines the interface for interacting with Resend API
type Client interface {
	SendEmail(ctx context.Context, email Email) error
}

// APIError is returned when Resend answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("error from Resend API (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("error from Resend API (%d): %s", e.StatusCode, e.Body)
}

type clientImpl struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*clientImpl)

func WithBaseURL(u string) Option {
	return func(c *clientImpl) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientImpl) { c.httpClient = hc }
}

// NewClient creates a new Resend client
func NewClient(apiKey string, opts ...Option) Client {
	c := &clientImpl{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *clientImpl) SendEmail(ctx context.Context, email Email) error {
	jsonPayload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("error creating payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		var response struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &response); err == nil {
			apiErr.Name = response.Name
			apiErr.Message = response.Message
		}
		return apiErr
	}

	log.Debug().Str("subject", email.Subject).Msg("sent notification email")
	return nil
}
