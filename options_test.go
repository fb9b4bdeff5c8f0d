package paymentdata

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/paymentdata/client-go/internal/api"
	"github.com/paymentdata/client-go/internal/clock"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.keyDirectoryURL != ProductionKeysURL {
		t.Errorf("keyDirectoryURL = %s, want %s", cfg.keyDirectoryURL, ProductionKeysURL)
	}
	if cfg.retries != api.DefaultMaxRetries {
		t.Errorf("retries = %d, want %d", cfg.retries, api.DefaultMaxRetries)
	}
	if cfg.limiter != nil {
		t.Error("limiter should be nil by default")
	}
}

func TestWithTestEnvironment(t *testing.T) {
	cfg := defaultConfig()
	WithTestEnvironment()(cfg)
	if cfg.keyDirectoryURL != TestKeysURL {
		t.Errorf("keyDirectoryURL = %s, want %s", cfg.keyDirectoryURL, TestKeysURL)
	}
}

func TestWithKeyDirectoryURL(t *testing.T) {
	cfg := defaultConfig()
	WithKeyDirectoryURL("https://keys.example/keys.json")(cfg)
	if cfg.keyDirectoryURL != "https://keys.example/keys.json" {
		t.Errorf("keyDirectoryURL = %s", cfg.keyDirectoryURL)
	}
}

func TestWithHTTPClient(t *testing.T) {
	cfg := defaultConfig()
	customClient := &http.Client{Timeout: 99 * time.Second}
	WithHTTPClient(customClient)(cfg)
	if cfg.httpClient != customClient {
		t.Error("httpClient was not set")
	}
}

func TestTransportOptions(t *testing.T) {
	cfg := defaultConfig()
	WithTimeout(5 * time.Second)(cfg)
	WithRetries(0)(cfg)
	WithRetryOn([]int{503})(cfg)

	if cfg.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.timeout)
	}
	if cfg.retries != 0 {
		t.Errorf("retries = %d, want 0", cfg.retries)
	}
	if len(cfg.retryOn) != 1 || cfg.retryOn[0] != 503 {
		t.Errorf("retryOn = %v, want [503]", cfg.retryOn)
	}
}

func TestCacheOptions(t *testing.T) {
	cfg := defaultConfig()
	reg := prometheus.NewRegistry()
	clk := clock.NewMock(time.Unix(0, 0))
	logger := slog.Default()

	WithMetricsRegisterer(reg)(cfg)
	WithClock(clk)(cfg)
	WithLogger(logger)(cfg)
	WithDefaultKeyTTL(time.Hour)(cfg)
	WithKeyFetchTimeout(10 * time.Second)(cfg)
	WithKeyDirectoryJSON([]byte(`{"keys":[]}`))(cfg)

	if cfg.registerer != reg {
		t.Error("registerer was not set")
	}
	if cfg.clock != clk {
		t.Error("clock was not set")
	}
	if cfg.logger != logger {
		t.Error("logger was not set")
	}
	if cfg.defaultKeyTTL != time.Hour {
		t.Errorf("defaultKeyTTL = %v, want 1h", cfg.defaultKeyTTL)
	}
	if cfg.keyFetchTimeout != 10*time.Second {
		t.Errorf("keyFetchTimeout = %v, want 10s", cfg.keyFetchTimeout)
	}
	if string(cfg.keyDirectoryJSON) != `{"keys":[]}` {
		t.Errorf("keyDirectoryJSON = %s", cfg.keyDirectoryJSON)
	}
}

func TestWithRefreshRateLimit(t *testing.T) {
	cfg := defaultConfig()
	WithRefreshRateLimit(time.Minute, 2)(cfg)
	if cfg.limiter == nil {
		t.Fatal("limiter was not set")
	}
	if cfg.limiter.Burst() != 2 {
		t.Errorf("Burst() = %d, want 2", cfg.limiter.Burst())
	}

	WithRefreshRateLimit(0, 1)(cfg)
	if cfg.limiter != nil {
		t.Error("non-positive interval should disable the limiter")
	}
}

func TestNew_AppliesOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New("merchant:1",
		WithKeyDirectoryJSON([]byte(`{"keys":[]}`)),
		WithMetricsRegisterer(reg),
		WithRefreshRateLimit(time.Minute, 1),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if r.cache == nil {
		t.Fatal("cache was not built")
	}
	if err := r.PrefetchKeys(t.Context()); err != nil {
		t.Fatalf("PrefetchKeys() error = %v", err)
	}
	if n, err := testutil.GatherAndCount(reg, "paymentdata_signing_key_refreshes_total"); err != nil || n != 1 {
		t.Errorf("refresh series = %d, %v; want 1", n, err)
	}
}
