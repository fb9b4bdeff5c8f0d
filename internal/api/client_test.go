package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paymentdata/client-go/internal/apierrors"
)

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := NewClient(Config{URL: ""}); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := New("   "); err == nil {
		t.Error("expected error for blank URL")
	}
}

func TestNewClient_DefaultValues(t *testing.T) {
	client, err := NewClient(Config{URL: TestKeysURL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.httpClient == nil {
		t.Fatal("httpClient is nil")
	}
	if client.httpClient.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", client.httpClient.Timeout, DefaultTimeout)
	}
	if client.maxRetries != DefaultMaxRetries {
		t.Errorf("maxRetries = %d, want %d", client.maxRetries, DefaultMaxRetries)
	}
	if client.retryDelay != DefaultRetryDelay {
		t.Errorf("retryDelay = %v, want %v", client.retryDelay, DefaultRetryDelay)
	}
	if client.userAgent != defaultUserAgent {
		t.Errorf("userAgent = %q, want %q", client.userAgent, defaultUserAgent)
	}
	if client.URL() != TestKeysURL {
		t.Errorf("URL() = %q, want %q", client.URL(), TestKeysURL)
	}
}

func TestNewClient_CustomValues(t *testing.T) {
	customHTTPClient := &http.Client{Timeout: 60 * time.Second}

	client, err := NewClient(Config{
		URL:        ProductionKeysURL,
		HTTPClient: customHTTPClient,
		MaxRetries: 5,
		RetryDelay: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.HTTPClient() != customHTTPClient {
		t.Error("httpClient not set correctly")
	}
	if client.maxRetries != 5 {
		t.Errorf("maxRetries = %d, want 5", client.maxRetries)
	}
	if client.retry.MaxRetries != 5 || client.retry.BaseDelay != 2*time.Second {
		t.Errorf("retry = %+v", client.retry)
	}
}

func TestNew_WithOptions(t *testing.T) {
	client, err := New(TestKeysURL,
		WithRetries(5),
		WithTimeout(60*time.Second),
		WithUserAgent("merchant/1.0"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.maxRetries != 5 {
		t.Errorf("maxRetries = %d, want 5", client.maxRetries)
	}
	if client.httpClient.Timeout != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", client.httpClient.Timeout)
	}
	if client.userAgent != "merchant/1.0" {
		t.Errorf("userAgent = %q", client.userAgent)
	}

	noRetry, _ := New(TestKeysURL, WithRetries(0))
	if noRetry.maxRetries != 0 {
		t.Errorf("WithRetries(0): maxRetries = %d, want 0", noRetry.maxRetries)
	}
}

func TestClient_isRetryable(t *testing.T) {
	def, _ := New(TestKeysURL)
	custom, _ := New(TestKeysURL, WithRetryOn([]int{418}))

	tests := []struct {
		name   string
		client *Client
		status int
		want   bool
	}{
		{"default 503", def, 503, true},
		{"default 429", def, 429, true},
		{"default 404", def, 404, false},
		{"custom 418", custom, 418, true},
		{"custom 503", custom, 503, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.client.isRetryable(tt.status); got != tt.want {
				t.Errorf("isRetryable(%d) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestClient_get_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %s, want GET", r.Method)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %s, want application/json", r.Header.Get("Accept"))
		}
		if r.Header.Get("User-Agent") != "merchant/1.0" {
			t.Errorf("User-Agent = %s, want merchant/1.0", r.Header.Get("User-Agent"))
		}
		w.Header().Set("X-Test", "yes")
		w.Write([]byte(`{"keys":[]}`))
	}))
	defer server.Close()

	client, _ := New(server.URL, WithUserAgent("merchant/1.0"))
	resp, err := client.get(context.Background())
	if err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if string(resp.body) != `{"keys":[]}` {
		t.Errorf("body = %s", resp.body)
	}
	if resp.header.Get("X-Test") != "yes" {
		t.Error("response headers not returned")
	}
}

func TestClient_get_Retry(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&attempts, 1)
		if count < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"keys":[]}`))
	}))
	defer server.Close()

	client, _ := NewClient(Config{
		URL:        server.URL,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})

	if _, err := client.get(context.Background()); err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestClient_get_RetriesExhausted(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, _ := NewClient(Config{
		URL:        server.URL,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})

	_, err := client.get(context.Background())
	if !errors.Is(err, apierrors.ErrServerError) {
		t.Fatalf("get() error = %v, want %v", err, apierrors.ErrServerError)
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestClient_get_NoRetryOn4xx(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no such directory"})
	}))
	defer server.Close()

	client, _ := NewClient(Config{
		URL:        server.URL,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})

	_, err := client.get(context.Background())
	if !errors.Is(err, apierrors.ErrDirectoryNotFound) {
		t.Fatalf("get() error = %v, want %v", err, apierrors.ErrDirectoryNotFound)
	}
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not *APIError: %T", err)
	}
	if apiErr.Message != "no such directory" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "no such directory")
	}
	if apiErr.URL != server.URL {
		t.Errorf("URL = %q, want %q", apiErr.URL, server.URL)
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 4xx)", attempts)
	}
}

func TestClient_get_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, _ := New(url, WithRetries(1), WithRetryDelay(time.Millisecond))
	_, err := client.get(context.Background())

	var netErr *apierrors.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("get() error = %v, want *NetworkError", err)
	}
	if netErr.Attempt != 2 {
		t.Errorf("Attempt = %d, want 2", netErr.Attempt)
	}
	if netErr.URL != url {
		t.Errorf("URL = %q, want %q", netErr.URL, url)
	}
}

func TestClient_get_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, _ := New(server.URL, WithRetryDelay(10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.get(ctx)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("get() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("get() kept retrying after cancellation: %v", elapsed)
	}
}

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"string error", 400, `{"error":"bad request"}`, "bad request"},
		{"nested error", 403, `{"error":{"message":"denied"}}`, "denied"},
		{"message field", 500, `{"message":"boom"}`, "boom"},
		{"plain text", 502, `upstream down`, "Bad Gateway"},
		{"empty body", 429, ``, "Too Many Requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErrorResponse("https://keys.example", tt.status, nil, []byte(tt.body))
			var apiErr *apierrors.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("parseErrorResponse() = %T, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}
