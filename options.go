package paymentdata

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/paymentdata/client-go/internal/api"
	"github.com/paymentdata/client-go/internal/clock"
	"github.com/paymentdata/client-go/internal/crypto"
)

const (
	// ProductionKeysURL serves the signing keys for live tokens.
	ProductionKeysURL = api.ProductionKeysURL
	// TestKeysURL serves the signing keys for the test environment.
	TestKeysURL = api.TestKeysURL
)

// ProtocolVersion identifies the signing and encryption scheme of a token.
type ProtocolVersion = crypto.ProtocolVersion

// Protocol versions.
const (
	ECv1            = crypto.ECv1
	ECv2            = crypto.ECv2
	ECv2SigningOnly = crypto.ECv2SigningOnly
)

// KeyProvider supplies root signing keys as DER SubjectPublicKeyInfo bytes.
// Implementations must be safe for concurrent use.
type KeyProvider = crypto.KeyProvider

// Clock reports the current time. It drives key expiration and cache
// freshness.
type Clock = clock.Clock

// recipientConfig holds configuration for a Recipient.
type recipientConfig struct {
	keyDirectoryURL  string
	keyDirectoryJSON []byte
	keyProvider      KeyProvider
	httpClient       *http.Client
	timeout          time.Duration
	retries          int
	retryOn          []int
	clock            Clock
	logger           *slog.Logger
	registerer       prometheus.Registerer
	limiter          *rate.Limiter
	defaultKeyTTL    time.Duration
	keyFetchTimeout  time.Duration
}

func defaultConfig() *recipientConfig {
	return &recipientConfig{
		keyDirectoryURL: ProductionKeysURL,
		retries:         api.DefaultMaxRetries,
	}
}

// Option configures a Recipient.
type Option func(*recipientConfig)

// WithTestEnvironment verifies tokens against the test signing keys.
func WithTestEnvironment() Option {
	return func(c *recipientConfig) {
		c.keyDirectoryURL = TestKeysURL
	}
}

// WithKeyDirectoryURL sets the signing key directory URL.
// Default: ProductionKeysURL
func WithKeyDirectoryURL(url string) Option {
	return func(c *recipientConfig) {
		c.keyDirectoryURL = url
	}
}

// WithKeyDirectoryJSON serves signing keys from a fixed key directory
// document instead of fetching them.
func WithKeyDirectoryJSON(data []byte) Option {
	return func(c *recipientConfig) {
		c.keyDirectoryJSON = data
	}
}

// WithKeyProvider replaces the signing key cache entirely. The directory,
// transport and cache options are ignored.
func WithKeyProvider(p KeyProvider) Option {
	return func(c *recipientConfig) {
		c.keyProvider = p
	}
}

// WithHTTPClient sets a custom HTTP client for the key directory.
func WithHTTPClient(client *http.Client) Option {
	return func(c *recipientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the timeout of a single key directory request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *recipientConfig) {
		c.timeout = timeout
	}
}

// WithRetries sets the number of retries for key directory requests. Zero
// disables retries.
// Default: 3
func WithRetries(count int) Option {
	return func(c *recipientConfig) {
		c.retries = count
	}
}

// WithRetryOn sets the HTTP status codes that trigger a retry.
// Default: [408, 429, 500, 502, 503, 504]
func WithRetryOn(statusCodes []int) Option {
	return func(c *recipientConfig) {
		c.retryOn = statusCodes
	}
}

// WithClock sets the time source for key expiration and cache freshness.
func WithClock(clk Clock) Option {
	return func(c *recipientConfig) {
		c.clock = clk
	}
}

// WithLogger sets the structured logger. Attributes naming key material or
// payloads are redacted before reaching it.
func WithLogger(logger *slog.Logger) Option {
	return func(c *recipientConfig) {
		c.logger = logger
	}
}

// WithMetricsRegisterer registers the signing key cache metrics.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *recipientConfig) {
		c.registerer = reg
	}
}

// WithRefreshRateLimit allows at most burst key directory refreshes, one
// more per interval. While throttled, lookups are served from the previous
// generation when there is one.
func WithRefreshRateLimit(interval time.Duration, burst int) Option {
	return func(c *recipientConfig) {
		if interval <= 0 || burst <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), burst)
	}
}

// WithDefaultKeyTTL sets how long fetched signing keys stay fresh when the
// directory response carries no max-age.
// Default: 7 days
func WithDefaultKeyTTL(ttl time.Duration) Option {
	return func(c *recipientConfig) {
		c.defaultKeyTTL = ttl
	}
}

// WithKeyFetchTimeout bounds one key directory refresh, retries included.
// Default: 2 minutes
func WithKeyFetchTimeout(timeout time.Duration) Option {
	return func(c *recipientConfig) {
		c.keyFetchTimeout = timeout
	}
}
