package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
	"time"
)

const (
	defaultHTTPTimeout    = 5 * time.Minute
	defaultColdStartDelay = 3 * time.Minute
	defaultResetDelay     = 5 * time.Second
	defaultMaxAttempts    = 5
)

// Config captures the runtime settings required to talk to the transcription endpoint.
type Config struct {
	EndpointURL    string
	BearerToken    string
	TimeoutSeconds int
}

// Client wraps a hosted Whisper transcription endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client

	maxAttempts    int
	coldStartDelay time.Duration
	resetDelay     time.Duration
	sleeper        func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMaxAttempts overrides the bounded retry count.
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithRetryDelays overrides the cold-start and connection-reset wait times.
func WithRetryDelays(coldStart, reset time.Duration) Option {
	return func(c *Client) {
		if coldStart > 0 {
			c.coldStartDelay = coldStart
		}
		if reset > 0 {
			c.resetDelay = reset
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a transcription client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			EndpointURL:    strings.TrimSpace(cfg.EndpointURL),
			BearerToken:    strings.TrimSpace(cfg.BearerToken),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:     &http.Client{Timeout: timeout},
		maxAttempts:    defaultMaxAttempts,
		coldStartDelay: defaultColdStartDelay,
		resetDelay:     defaultResetDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Chunk is a single transcribed span in window-relative seconds.
type Chunk struct {
	Timestamp [2]float64 `json:"timestamp"`
	Text      string     `json:"text"`
}

// Result is the endpoint's transcription payload for one audio window.
type Result struct {
	Chunks []Chunk `json:"chunks"`
	Text   string  `json:"text"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("whisper request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Transcribe sends raw audio bytes to the endpoint and returns the parsed
// transcription. A 502 means the endpoint is scaled to zero and needs time to
// start, so the client waits out the cold start before retrying. Connection
// resets retry after a short delay. Both retries are bounded.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (Result, error) {
	var empty Result
	if c.cfg.EndpointURL == "" {
		return empty, errors.New("whisper transcribe: endpoint url required")
	}
	if len(audio) == 0 {
		return empty, errors.New("whisper transcribe: empty audio")
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		result, err := c.sendOnce(ctx, audio)
		if err == nil {
			return result, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(err)
		if !retry || attempt == c.maxAttempts {
			return empty, err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return empty, err
		}
	}
	return empty, fmt.Errorf("whisper transcribe: failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// HealthCheck verifies the endpoint configuration without sending audio.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.EndpointURL == "" {
		return errors.New("whisper health: endpoint url required")
	}
	return nil
}

func (c *Client) sendOnce(ctx context.Context, audio []byte) (Result, error) {
	var result Result
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.EndpointURL, bytes.NewReader(audio))
	if err != nil {
		return result, fmt.Errorf("whisper request: new request: %w", err)
	}
	if c.cfg.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	}
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("whisper request: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("whisper request: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return result, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("whisper request: decode response: %w", err)
	}
	return result, nil
}

func (c *Client) retryDelay(err error) (time.Duration, bool) {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusBadGateway {
			return c.coldStartDelay, true
		}
		return 0, false
	}
	if errors.Is(err, syscall.ECONNRESET) || strings.Contains(err.Error(), "connection reset") {
		return c.resetDelay, true
	}
	return 0, false
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
