package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/paymentdata/client-go/internal/apierrors"
)

const (
	// ProductionKeysURL serves the root signing keys for live tokens.
	ProductionKeysURL = "https://payments.developers.google.com/paymentmethodtoken/keys.json"
	// TestKeysURL serves the root signing keys for the test environment.
	TestKeysURL = "https://payments.developers.google.com/paymentmethodtoken/test/keys.json"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the base backoff delay.
	DefaultRetryDelay = time.Second

	// maxResponseSize caps the key directory body.
	maxResponseSize = 1 << 20

	defaultUserAgent = "paymentdata-client-go"
)

// Config holds the key directory client configuration.
type Config struct {
	// URL of the key directory. Required.
	URL string
	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
	// Timeout for a single request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// MaxRetries after the first attempt. Zero uses DefaultMaxRetries and a
	// negative value disables retries.
	MaxRetries int
	// RetryDelay is the base backoff delay. Defaults to DefaultRetryDelay.
	RetryDelay time.Duration
	// RetryOn lists the HTTP status codes to retry. Defaults to 408, 429
	// and the 5xx gateway codes.
	RetryOn []int
	// UserAgent sent with every request.
	UserAgent string
}

// Client fetches key directory documents over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	retryOn    []int
	retry      *RetryConfig
	userAgent  string
}

// Option configures the client created by New.
type Option func(*Config)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithRetries sets the number of retries. Zero disables retries.
func WithRetries(retries int) Option {
	return func(c *Config) {
		if retries <= 0 {
			retries = -1
		}
		c.MaxRetries = retries
	}
}

// WithRetryDelay sets the base backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Config) {
		c.RetryDelay = d
	}
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
func WithRetryOn(statusCodes []int) Option {
	return func(c *Config) {
		c.RetryOn = statusCodes
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// New creates a client for keysURL using functional options.
func New(keysURL string, opts ...Option) (*Client, error) {
	cfg := Config{URL: keysURL}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewClient(cfg)
}

// NewClient creates a client from an explicit configuration.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("key directory URL is required")
	}

	c := &Client{
		url:        cfg.URL,
		httpClient: cfg.HTTPClient,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		retryOn:    cfg.RetryOn,
		userAgent:  cfg.UserAgent,
	}

	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	switch {
	case c.maxRetries == 0:
		c.maxRetries = DefaultMaxRetries
	case c.maxRetries < 0:
		c.maxRetries = 0
	}
	if c.retryDelay <= 0 {
		c.retryDelay = DefaultRetryDelay
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}

	c.retry = DefaultRetryConfig()
	c.retry.MaxRetries = c.maxRetries
	c.retry.BaseDelay = c.retryDelay
	c.retry.RetryableOn = c.isRetryable

	return c, nil
}

// URL returns the key directory URL.
func (c *Client) URL() string {
	return c.url
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) isRetryable(statusCode int) bool {
	if len(c.retryOn) > 0 {
		return slices.Contains(c.retryOn, statusCode)
	}
	return transientStatus(statusCode)
}

// response is a successful HTTP answer.
type response struct {
	body   []byte
	header http.Header
}

// get performs a GET against the directory URL, retrying transient
// failures with backoff. Context cancellation stops retries immediately.
func (c *Client) get(ctx context.Context) (*response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx)
		if err == nil {
			return resp, nil
		}

		if !c.retry.ShouldRetry(attempt, err) || ctx.Err() != nil {
			var netErr *apierrors.NetworkError
			if errors.As(err, &netErr) {
				netErr.Attempt = attempt + 1
			}
			return nil, err
		}
		if werr := c.retry.Wait(ctx, attempt, err); werr != nil {
			return nil, &apierrors.NetworkError{Err: werr, URL: c.url, Attempt: attempt + 1}
		}
	}
}

func (c *Client) attempt(ctx context.Context) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apierrors.NetworkError{Err: err, URL: c.url}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, &apierrors.NetworkError{Err: fmt.Errorf("read body: %w", err), URL: c.url}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseErrorResponse(c.url, resp.StatusCode, resp.Header, body)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", apierrors.ErrInvalidDirectory, maxResponseSize)
	}

	return &response{body: body, header: resp.Header}, nil
}

func parseErrorResponse(url string, statusCode int, header http.Header, body []byte) error {
	var errResp struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}

	apiErr := &apierrors.APIError{
		StatusCode: statusCode,
		URL:        url,
		RetryAfter: parseRetryAfter(header.Get("Retry-After"), time.Now()),
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch e := errResp.Error.(type) {
		case string:
			apiErr.Message = e
		case map[string]any:
			if msg, ok := e["message"].(string); ok {
				apiErr.Message = msg
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = errResp.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}
