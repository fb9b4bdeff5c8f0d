// Package apierrors provides the transport error types shared by the key
// directory client and the public package.
package apierrors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrDirectoryNotFound is returned when the key directory URL answers 404.
	ErrDirectoryNotFound = errors.New("key directory not found")

	// ErrForbidden is returned when the key directory refuses the request.
	ErrForbidden = errors.New("key directory access forbidden")

	// ErrRateLimited is returned when the key directory rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrServerError is returned for any 5xx answer.
	ErrServerError = errors.New("key directory server error")

	// ErrInvalidDirectory is returned when the response body is not a key
	// directory document.
	ErrInvalidDirectory = errors.New("invalid key directory")
)

// APIError represents an HTTP error from the key directory endpoint.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
	// RetryAfter is the server's Retry-After hint, zero when absent.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.URL != "" {
		if e.Message != "" {
			return fmt.Sprintf("API error %d: %s (url: %s)", e.StatusCode, e.Message, e.URL)
		}
		return fmt.Sprintf("API error %d (url: %s)", e.StatusCode, e.URL)
	}
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// PaymentDataError implements the PaymentDataError marker interface.
func (e *APIError) PaymentDataError() {}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 401 || e.StatusCode == 403:
		return target == ErrForbidden
	case e.StatusCode == 404:
		return target == ErrDirectoryNotFound
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode >= 500 && e.StatusCode <= 599:
		return target == ErrServerError
	}
	return false
}

// NetworkError represents a network-level failure.
type NetworkError struct {
	Err     error
	URL     string
	Attempt int
}

func (e *NetworkError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("network error after %d attempt(s) to %s: %v", e.Attempt, e.URL, e.Err)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// PaymentDataError implements the PaymentDataError marker interface.
func (e *NetworkError) PaymentDataError() {}
