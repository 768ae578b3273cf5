package modelserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Endpoint paths relative to the server base URL.
const (
	EndpointOrientation = "document-orientation"
	EndpointUnwarp      = "image-unwarping"
	EndpointOCR         = "ocr"
	EndpointHealth      = "health"
)

// maxResponseSize bounds a response body. Unwarped rasters of large scans
// are the biggest payloads.
const maxResponseSize = 512 * 1024 * 1024

// fileTypeImage marks the request file as an image rather than a PDF.
const fileTypeImage = 1

// Client talks to the model server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends key as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the response wrapper of every endpoint.
type envelope struct {
	ErrorCode int             `json:"errorCode"`
	ErrorMsg  string          `json:"errorMsg"`
	Result    json.RawMessage `json:"result"`
}

// request is the body of every inference call.
type request struct {
	File     string `json:"file"`
	FileType int    `json:"fileType"`
}

// Ping checks that the server is up.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(EndpointHealth), nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model server unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Drain for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Endpoint: EndpointHealth, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// infer sends the image at path to endpoint and returns the raw result.
func (c *Client) infer(ctx context.Context, endpoint, path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Page paths come from directory discovery
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	body, err := json.Marshal(request{
		File:     base64.StdEncoding.EncodeToString(data),
		FileType: fileTypeImage,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	c.logger.Debug("calling model server", "endpoint", endpoint, "image", path, "bytes", len(data))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model server %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("model server %s: failed to read response: %w", endpoint, err)
	}

	c.logger.Debug("model server replied", "endpoint", endpoint, "status", resp.StatusCode, "elapsed", time.Since(start))

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		if decodeErr == nil && env.ErrorMsg != "" {
			apiErr.Code = env.ErrorCode
			apiErr.Message = env.ErrorMsg
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, endpoint, decodeErr)
	}
	if env.ErrorCode != 0 {
		return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Code: env.ErrorCode, Message: env.ErrorMsg}
	}
	return env.Result, nil
}

func (c *Client) url(endpoint string) string {
	return c.baseURL + "/" + endpoint
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
