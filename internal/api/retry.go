package api

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paymentdata/client-go/internal/apierrors"
)

// DefaultMaxRetryDelay caps a single backoff, including a server's Retry-After.
const DefaultMaxRetryDelay = 30 * time.Second

// RetryConfig decides whether and when a failed directory request is retried.
type RetryConfig struct {
	// MaxRetries after the first attempt.
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// Multiplier grows the delay per attempt.
	Multiplier float64
	// Jitter spreads each delay by up to this fraction in both directions.
	Jitter float64
	// RetryableOn reports whether an HTTP status is transient.
	RetryableOn func(statusCode int) bool
}

// DefaultRetryConfig returns the backoff used by New.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:  DefaultMaxRetries,
		BaseDelay:   DefaultRetryDelay,
		MaxDelay:    DefaultMaxRetryDelay,
		Multiplier:  2.0,
		Jitter:      0.2,
		RetryableOn: transientStatus,
	}
}

func transientStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// ShouldRetry reports whether err, returned by attempt number attempt
// (zero-based), is worth another try. Transport failures and transient
// statuses are. The caller checks its own context.
func (r *RetryConfig) ShouldRetry(attempt int, err error) bool {
	if attempt >= r.MaxRetries || err == nil {
		return false
	}
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return r.RetryableOn != nil && r.RetryableOn(apiErr.StatusCode)
	}
	var netErr *apierrors.NetworkError
	return errors.As(err, &netErr)
}

// Delay returns the pause before the retry following attempt. A Retry-After
// carried by err takes precedence over the exponential schedule.
func (r *RetryConfig) Delay(attempt int, err error) time.Duration {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return r.capped(apiErr.RetryAfter)
	}

	delay := float64(r.BaseDelay) * math.Pow(r.Multiplier, float64(attempt))
	if r.Jitter > 0 {
		spread := delay * r.Jitter
		delay += (rand.Float64()*2 - 1) * spread
	}
	return r.capped(time.Duration(delay))
}

func (r *RetryConfig) capped(d time.Duration) time.Duration {
	if r.MaxDelay > 0 && d > r.MaxDelay {
		return r.MaxDelay
	}
	return d
}

// Wait sleeps for Delay(attempt, err) or until ctx is done.
func (r *RetryConfig) Wait(ctx context.Context, attempt int, err error) error {
	timer := time.NewTimer(r.Delay(attempt, err))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter reads a Retry-After header given either as seconds or as
// an HTTP date. Zero means absent or unusable.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
