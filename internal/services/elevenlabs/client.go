package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout    = 10 * time.Minute
	defaultRateLimitDelay = 5 * time.Minute
	defaultMaxAttempts    = 3
	defaultBaseURL        = "https://api.elevenlabs.io/v1"
	defaultModel          = "eleven_multilingual_v2"
)

// Config captures the runtime settings required to talk to the ElevenLabs API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the ElevenLabs text-to-speech API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	maxAttempts    int
	rateLimitDelay time.Duration
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

// WithRateLimitDelay overrides the wait applied after a 429 response.
func WithRateLimitDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.rateLimitDelay = delay
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a text-to-speech client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:     &http.Client{Timeout: timeout},
		maxAttempts:    defaultMaxAttempts,
		rateLimitDelay: defaultRateLimitDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	return client
}

// PauseTag returns the inline break markup ElevenLabs honors inside plain
// text, with the duration expressed in seconds.
func PauseTag(pauseMs int) string {
	seconds := strconv.FormatFloat(float64(pauseMs)/1000, 'f', -1, 64)
	return fmt.Sprintf(` <break time="%ss"/> `, seconds)
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("elevenlabs request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type synthesisRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize renders the text with the given voice and returns MP3 bytes.
// A 429 means the account hit its concurrency or quota limit, so the client
// waits out the rate limit window before retrying. The retry is bounded.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("elevenlabs synthesize: text required")
	}
	if strings.TrimSpace(voiceID) == "" {
		return nil, errors.New("elevenlabs synthesize: voice id required")
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("elevenlabs synthesize: api key required")
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		audio, err := c.sendOnce(ctx, text, voiceID)
		if err == nil {
			return audio, nil
		}
		lastErr = err

		var statusErr *httpStatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests || attempt == c.maxAttempts {
			return nil, err
		}
		if err := c.sleep(ctx, c.rateLimitDelay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("elevenlabs synthesize: failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// HealthCheck verifies the API key is present.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("elevenlabs health: api key required")
	}
	return nil
}

func (c *Client) sendOnce(ctx context.Context, text, voiceID string) ([]byte, error) {
	payload := synthesisRequest{Text: text, ModelID: c.cfg.Model}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: encode body: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/text-to-speech/" + voiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: new request: %w", err)
	}
	req.Header.Set("xi-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
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
