package azuretts

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout  = 10 * time.Minute
	defaultOutputFormat = "audio-24khz-96kbitrate-mono-mp3"
)

// Config captures the runtime settings required to talk to the Azure speech service.
type Config struct {
	APIKey         string
	Region         string
	TimeoutSeconds int
}

// Client wraps the Azure Cognitive Services text-to-speech REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	endpoint   string
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

// WithEndpoint overrides the region-derived endpoint (useful for tests).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if strings.TrimSpace(endpoint) != "" {
			c.endpoint = strings.TrimSpace(endpoint)
		}
	}
}

// NewClient constructs a speech synthesis client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			Region:         strings.TrimSpace(cfg.Region),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.endpoint == "" && client.cfg.Region != "" {
		client.endpoint = fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", client.cfg.Region)
	}
	return client
}

// BuildSSML joins segment texts into one SSML document with a pause before
// the first segment and after every segment, matching the pause length the
// timestamp mapper later detects.
func BuildSSML(texts []string, voiceName, language string, pauseMs int) string {
	var b strings.Builder
	b.WriteString(`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xmlns:mstts="https://www.w3.org/2001/mstts"`)
	fmt.Fprintf(&b, ` xml:lang=%q>`, language)
	fmt.Fprintf(&b, `<voice name=%q>`, voiceName)
	fmt.Fprintf(&b, `<break time="%dms"/>`, pauseMs)
	for _, text := range texts {
		_ = xml.EscapeText(&b, []byte(text))
		fmt.Fprintf(&b, `<break time="%dms"/>`, pauseMs)
	}
	b.WriteString(`</voice></speak>`)
	return b.String()
}

// Synthesize renders the SSML document and returns MP3 bytes.
func (c *Client) Synthesize(ctx context.Context, ssml string) ([]byte, error) {
	if strings.TrimSpace(ssml) == "" {
		return nil, errors.New("azure synthesize: ssml required")
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("azure synthesize: api key required")
	}
	if c.endpoint == "" {
		return nil, errors.New("azure synthesize: region required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("azure request: new request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", defaultOutputFormat)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure request: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure request: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure request: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// HealthCheck verifies the subscription key and region are present.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("azure health: api key required")
	}
	if c.endpoint == "" {
		return errors.New("azure health: region required")
	}
	return nil
}
