package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paymentdata/client-go/internal/apierrors"
	"github.com/paymentdata/client-go/internal/tokentest"
)

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.MaxRetries, DefaultMaxRetries)
	}
	if cfg.BaseDelay != DefaultRetryDelay {
		t.Errorf("BaseDelay = %v, want %v", cfg.BaseDelay, DefaultRetryDelay)
	}
	if cfg.MaxDelay != DefaultMaxRetryDelay {
		t.Errorf("MaxDelay = %v, want %v", cfg.MaxDelay, DefaultMaxRetryDelay)
	}
	if cfg.Multiplier != 2.0 || cfg.Jitter != 0.2 {
		t.Errorf("Multiplier, Jitter = %v, %v, want 2, 0.2", cfg.Multiplier, cfg.Jitter)
	}
}

func TestRetryConfig_ShouldRetry(t *testing.T) {
	cfg := DefaultRetryConfig()
	netErr := &apierrors.NetworkError{Err: errors.New("connection reset")}

	tests := []struct {
		name    string
		attempt int
		err     error
		want    bool
	}{
		{"503 first attempt", 0, &apierrors.APIError{StatusCode: 503}, true},
		{"503 last retry", 2, &apierrors.APIError{StatusCode: 503}, true},
		{"503 retries exhausted", 3, &apierrors.APIError{StatusCode: 503}, false},
		{"429", 0, &apierrors.APIError{StatusCode: 429}, true},
		{"408", 0, &apierrors.APIError{StatusCode: 408}, true},
		{"wrapped 504", 0, fmt.Errorf("fetch: %w", &apierrors.APIError{StatusCode: 504}), true},
		{"403", 0, &apierrors.APIError{StatusCode: 403}, false},
		{"404", 0, &apierrors.APIError{StatusCode: 404}, false},
		{"501", 0, &apierrors.APIError{StatusCode: 501}, false},
		{"network error", 0, netErr, true},
		{"network error exhausted", 3, netErr, false},
		{"invalid directory", 0, apierrors.ErrInvalidDirectory, false},
		{"nil", 0, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.ShouldRetry(tt.attempt, tt.err); got != tt.want {
				t.Errorf("ShouldRetry(%d, %v) = %v, want %v", tt.attempt, tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryConfig_ShouldRetry_CustomStatuses(t *testing.T) {
	cfg := &RetryConfig{
		MaxRetries:  1,
		RetryableOn: func(statusCode int) bool { return statusCode == http.StatusNotFound },
	}

	if !cfg.ShouldRetry(0, &apierrors.APIError{StatusCode: 404}) {
		t.Error("ShouldRetry() = false for a configured status")
	}
	if cfg.ShouldRetry(0, &apierrors.APIError{StatusCode: 503}) {
		t.Error("ShouldRetry() = true for a status outside the configured set")
	}

	cfg.RetryableOn = nil
	if cfg.ShouldRetry(0, &apierrors.APIError{StatusCode: 503}) {
		t.Error("ShouldRetry() without RetryableOn should not retry statuses")
	}
}

func TestRetryConfig_Delay(t *testing.T) {
	cfg := &RetryConfig{
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt %d", tt.attempt), func(t *testing.T) {
			if got := cfg.Delay(tt.attempt, nil); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestRetryConfig_Delay_Jitter(t *testing.T) {
	cfg := &RetryConfig{
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.5,
	}

	for range 100 {
		if d := cfg.Delay(0, nil); d < 500*time.Millisecond || d > 1500*time.Millisecond {
			t.Fatalf("Delay(0) = %v, want within [500ms, 1.5s]", d)
		}
		// Jitter never pushes a capped delay past MaxDelay.
		if d := cfg.Delay(6, nil); d > cfg.MaxDelay {
			t.Fatalf("Delay(6) = %v, want at most %v", d, cfg.MaxDelay)
		}
	}
}

func TestRetryConfig_Delay_RetryAfter(t *testing.T) {
	cfg := DefaultRetryConfig()

	hinted := &apierrors.APIError{StatusCode: 429, RetryAfter: 3 * time.Second}
	if got := cfg.Delay(0, hinted); got != 3*time.Second {
		t.Errorf("Delay() = %v, want the Retry-After hint 3s", got)
	}

	tooLong := &apierrors.APIError{StatusCode: 503, RetryAfter: time.Hour}
	if got := cfg.Delay(0, tooLong); got != cfg.MaxDelay {
		t.Errorf("Delay() = %v, want it capped at %v", got, cfg.MaxDelay)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"seconds", "120", 2 * time.Minute},
		{"padded", " 5 ", 5 * time.Second},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"past date", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"zero", "0", 0},
		{"negative", "-3", 0},
		{"garbage", "soon", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.value, now); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestRetryConfig_Wait(t *testing.T) {
	cfg := &RetryConfig{BaseDelay: 10 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	start := time.Now()
	if err := cfg.Wait(context.Background(), 0, nil); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Wait() returned after %v, want at least 10ms", elapsed)
	}
}

func TestRetryConfig_Wait_Cancelled(t *testing.T) {
	cfg := &RetryConfig{BaseDelay: 10 * time.Second, MaxDelay: 30 * time.Second, Multiplier: 2}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := cfg.Wait(ctx, 0, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want %v", err, context.DeadlineExceeded)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Wait() took %v after the deadline", elapsed)
	}
}

func TestClient_get_HonoursRetryAfter(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(tokentest.ECv1KeyDirectory))
	}))
	defer server.Close()

	client, _ := NewClient(Config{URL: server.URL, MaxRetries: 1, RetryDelay: time.Millisecond})

	start := time.Now()
	if _, err := client.get(context.Background()); err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("get() retried after %v, want the 1s Retry-After respected", elapsed)
	}
	if attempts.Load() != 2 {
		t.Errorf("attempts = %d, want 2", attempts.Load())
	}
}

func BenchmarkRetryConfig_Delay(b *testing.B) {
	cfg := DefaultRetryConfig()

	for i := 0; b.Loop(); i++ {
		_ = cfg.Delay(i%5, nil)
	}
}
