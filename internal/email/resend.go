package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Message is a single outbound email
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	ReplyTo string   `json:"reply_to,omitempty"`
	HTML    string   `json:"html"`
}

// Sender delivers a message. Implementations make at most one delivery attempt.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ProviderError is a rejection reported by the delivery provider
type ProviderError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("email provider error %d (%s): %s", e.StatusCode, e.Name, e.Message)
	}
	return fmt.Sprintf("email provider error %d: %s", e.StatusCode, e.Message)
}

// ErrNotConfigured is returned by Send when no API key is set
var ErrNotConfigured = errors.New("email provider is not configured")

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// ResendClient talks to a Resend-compatible HTTP API
type ResendClient struct {
	client *resty.Client
	apiKey string
}

func NewResendClient(apiKey, baseURL string, timeout time.Duration) *ResendClient {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")

	return &ResendClient{client: client, apiKey: apiKey}
}

// Send posts msg to the provider and returns the provider's message id
func (r *ResendClient) Send(ctx context.Context, msg Message) (string, error) {
	if r.apiKey == "" {
		return "", ErrNotConfigured
	}

	var result sendResponse
	var apiErr errorResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(r.apiKey).
		SetBody(msg).
		SetResult(&result).
		SetError(&apiErr).
		Post("/emails")

	if err != nil {
		return "", fmt.Errorf("email request failed: %w", err)
	}

	if resp.IsError() {
		message := apiErr.Message
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		return "", &ProviderError{
			StatusCode: resp.StatusCode(),
			Name:       apiErr.Name,
			Message:    message,
		}
	}

	return result.ID, nil
}
