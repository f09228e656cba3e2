// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

// Package speech is the HTTP client for the external speech-to-text engine.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/docuflow/meet-service/internal/domain"
	"github.com/docuflow/meet-service/internal/logging"
)

const (
	// DefaultClientTimeout is the default HTTP client timeout. Transcription
	// requests are long-running, so it is generous.
	DefaultClientTimeout = 10 * time.Minute

	// Default retry configuration
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 1 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// transcriptionsPath is the engine endpoint that accepts a recording URL and
// returns the transcript synchronously.
const transcriptionsPath = "/v1/transcriptions"

// Config holds the configuration for the speech engine client.
type Config struct {
	// BaseURL of the engine deployment.
	BaseURL string
	// Optional OAuth2 client-credentials settings. When ClientID is empty
	// the client talks to the engine unauthenticated.
	TokenURL     string
	ClientID     string
	ClientSecret string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: retry configuration
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// Client talks to the speech-to-text engine over HTTP.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure that Client implements the domain interface.
var _ domain.SpeechToText = (*Client)(nil)

// NewClient creates a new speech engine client.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = DefaultBackoffMultiplier
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
	}

	if config.ClientID != "" {
		oauthConfig := &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.TokenURL,
		}
		httpClient = &http.Client{
			Timeout: config.Timeout,
			Transport: &oauth2.Transport{
				Base:   http.DefaultTransport,
				Source: oauthConfig.TokenSource(context.Background()),
			},
		}
	}

	return &Client{
		httpClient: httpClient,
		config:     config,
	}
}

// transcriptionRequest is the engine's request payload.
type transcriptionRequest struct {
	RecordingURL string `json:"recording_url"`
}

// transcriptionResponse is the engine's response payload.
type transcriptionResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcribe implements the domain.SpeechToText interface.
func (c *Client) Transcribe(ctx context.Context, recordingURL string) (*domain.SpeechResult, error) {
	ctx = logging.AppendCtx(ctx, slog.String("recording_url", recordingURL))

	resp, err := c.doRequest(ctx, http.MethodPost, transcriptionsPath, transcriptionRequest{
		RecordingURL: recordingURL,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.WarnContext(ctx, "error closing response body", logging.ErrKey, err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("speech engine returned status %d: %s", resp.StatusCode, string(body))
	}

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode speech engine response: %w", err)
	}

	return &domain.SpeechResult{
		Text:     result.Text,
		Language: result.Language,
	}, nil
}

// shouldRetry determines if an error or HTTP status code should be retried.
// Network errors, server errors (5xx), and rate limits (429) are retried;
// client errors are not.
func shouldRetry(statusCode int, err error) bool {
	if err != nil {
		return true
	}
	if statusCode >= 500 && statusCode < 600 {
		return true
	}
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return false
}

// calculateBackoff calculates the backoff duration for a retry attempt with
// jitter to avoid thundering herds.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return c.config.InitialBackoff
	}

	backoff := float64(c.config.InitialBackoff) * math.Pow(c.config.BackoffMultiplier, float64(attempt))
	if time.Duration(backoff) > c.config.MaxBackoff {
		backoff = float64(c.config.MaxBackoff)
	}

	// jitter of up to ±25%
	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoffWithJitter := time.Duration(backoff + jitter)
	if backoffWithJitter < c.config.InitialBackoff {
		backoffWithJitter = c.config.InitialBackoff
	}

	return backoffWithJitter
}

// doRequest performs an HTTP request to the engine with retry logic.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := c.config.BaseURL + path
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt - 1)
			slog.WarnContext(ctx, "retrying speech engine request",
				"attempt", attempt,
				"backoff", backoff.String(),
				logging.ErrKey, lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err == nil && !shouldRetry(resp.StatusCode, nil) {
			return resp, nil
		}

		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}

		lastErr = fmt.Errorf("speech engine returned status %d", resp.StatusCode)
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.WarnContext(ctx, "error closing response body", logging.ErrKey, closeErr)
		}
	}

	return nil, fmt.Errorf("speech engine request failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}
