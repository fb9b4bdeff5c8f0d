package apierrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "status code only",
			err:      &APIError{StatusCode: 500},
			expected: "API error 500",
		},
		{
			name:     "with message",
			err:      &APIError{StatusCode: 400, Message: "bad request"},
			expected: "API error 400: bad request",
		},
		{
			name:     "with URL",
			err:      &APIError{StatusCode: 503, URL: "https://keys.example/keys.json"},
			expected: "API error 503 (url: https://keys.example/keys.json)",
		},
		{
			name:     "with message and URL",
			err:      &APIError{StatusCode: 404, Message: "missing", URL: "https://keys.example/keys.json"},
			expected: "API error 404: missing (url: https://keys.example/keys.json)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		target   error
		expected bool
	}{
		{"401 matches ErrForbidden", &APIError{StatusCode: 401}, ErrForbidden, true},
		{"403 matches ErrForbidden", &APIError{StatusCode: 403}, ErrForbidden, true},
		{"404 matches ErrDirectoryNotFound", &APIError{StatusCode: 404}, ErrDirectoryNotFound, true},
		{"404 does not match ErrRateLimited", &APIError{StatusCode: 404}, ErrRateLimited, false},
		{"429 matches ErrRateLimited", &APIError{StatusCode: 429}, ErrRateLimited, true},
		{"500 matches ErrServerError", &APIError{StatusCode: 500}, ErrServerError, true},
		{"503 matches ErrServerError", &APIError{StatusCode: 503}, ErrServerError, true},
		{"400 matches nothing", &APIError{StatusCode: 400}, ErrServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.expected {
				t.Errorf("errors.Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAPIError_WrappedIs(t *testing.T) {
	err := fmt.Errorf("fetch: %w", &APIError{StatusCode: 429})
	if !errors.Is(err, ErrRateLimited) {
		t.Error("wrapped APIError should match ErrRateLimited")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 429 {
		t.Errorf("errors.As() = %v", apiErr)
	}
}

func TestNetworkError(t *testing.T) {
	err := &NetworkError{Err: context.DeadlineExceeded, URL: "https://keys.example", Attempt: 3}

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("NetworkError should unwrap to its cause")
	}
	want := "network error after 3 attempt(s) to https://keys.example: context deadline exceeded"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := &NetworkError{Err: errors.New("reset")}
	if got := bare.Error(); got != "network error: reset" {
		t.Errorf("Error() = %q", got)
	}
}
