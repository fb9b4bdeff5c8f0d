// Package api provides the HTTP client for the signing key directory. It
// fetches the directory document, decodes it, and reports the response's
// Cache-Control max-age so callers can schedule the next refresh.
//
// # Client Creation
//
// The package provides two ways to create a client:
//
//   - [NewClient]: Struct-based configuration for explicit setup.
//   - [New]: Functional options pattern for flexible configuration.
//
// Both require the directory URL, usually [ProductionKeysURL] or
// [TestKeysURL].
//
// # Retry Behavior
//
// Failed requests are retried with exponential backoff and jitter. By
// default a request is retried up to 3 times on network errors and on these
// HTTP status codes:
//
//   - 408 Request Timeout
//   - 429 Too Many Requests
//   - 500 Internal Server Error
//   - 502 Bad Gateway
//   - 503 Service Unavailable
//   - 504 Gateway Timeout
//
// Configure retries using [Config.MaxRetries], [Config.RetryDelay], and
// [Config.RetryOn]. A Retry-After header on the failed answer replaces the
// computed delay, capped at [DefaultMaxRetryDelay]. Context cancellation
// stops retrying immediately.
//
// # Error Handling
//
// Non-2xx answers are returned as *apierrors.APIError, transport failures as
// *apierrors.NetworkError, and undecodable bodies wrap
// apierrors.ErrInvalidDirectory.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use.
package api
