package paymentdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/paymentdata/client-go/internal/apierrors"
	"github.com/paymentdata/client-go/internal/crypto"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingRecipientID is returned when no recipient ID is provided.
	ErrMissingRecipientID = errors.New("recipient ID is required")

	// ErrNoPrivateKeys is returned by Unseal before any private key has been
	// registered.
	ErrNoPrivateKeys = errors.New("no recipient private keys registered")

	// ErrMalformedToken is returned when a token or one of its nested
	// documents cannot be decoded.
	ErrMalformedToken = crypto.ErrMalformedToken

	// ErrCurveMismatch is returned when a key is not on P-256.
	ErrCurveMismatch = crypto.ErrCurveMismatch

	// ErrInvalidKeyEncoding is returned for key bytes of the wrong length or
	// structure.
	ErrInvalidKeyEncoding = crypto.ErrInvalidKeyEncoding

	// ErrUnsupportedProtocol is returned for an unknown protocol version.
	ErrUnsupportedProtocol = crypto.ErrUnsupportedProtocol

	// ErrNoValidSigningKey is returned when no root signing key verifies the
	// token or the directory has none for its protocol version.
	ErrNoValidSigningKey = crypto.ErrNoValidSigningKey

	// ErrExpiredKey is returned when the intermediate signing key expired.
	ErrExpiredKey = crypto.ErrExpiredKey

	// ErrSignatureInvalid is returned when token verification fails.
	ErrSignatureInvalid = crypto.ErrSignatureInvalid

	// ErrDecryptionFailed is returned when no registered private key opens
	// the token.
	ErrDecryptionFailed = crypto.ErrDecryptionFailed

	// ErrKeyFetchFailed is returned when the signing key directory could not
	// be retrieved.
	ErrKeyFetchFailed = crypto.ErrKeyFetchFailed

	// ErrDirectoryNotFound is returned when the key directory URL answers 404.
	ErrDirectoryNotFound = apierrors.ErrDirectoryNotFound

	// ErrForbidden is returned when the key directory refuses the request.
	ErrForbidden = apierrors.ErrForbidden

	// ErrRateLimited is returned when the key directory rate limit is exceeded.
	ErrRateLimited = apierrors.ErrRateLimited

	// ErrServerError is returned for a 5xx answer from the key directory.
	ErrServerError = apierrors.ErrServerError

	// ErrInvalidDirectory is returned when the key directory document cannot
	// be decoded.
	ErrInvalidDirectory = apierrors.ErrInvalidDirectory
)

// PaymentDataError is implemented by all typed errors of this package.
type PaymentDataError interface {
	error
	PaymentDataError() // marker method
}

// APIError represents an HTTP error from the key directory.
type APIError = apierrors.APIError

// NetworkError represents a network-level failure reaching the key directory.
type NetworkError = apierrors.NetworkError

// SignatureVerificationError reports a token that failed verification. Err
// holds the precise cause, such as ErrExpiredKey.
type SignatureVerificationError struct {
	ProtocolVersion string
	Err             error
}

func (e *SignatureVerificationError) Error() string {
	if e.ProtocolVersion != "" {
		return fmt.Sprintf("signature verification failed for %s: %v", e.ProtocolVersion, e.Err)
	}
	return fmt.Sprintf("signature verification failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *SignatureVerificationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *SignatureVerificationError) Is(target error) bool {
	return target == ErrSignatureInvalid
}

// PaymentDataError implements the PaymentDataError interface.
func (e *SignatureVerificationError) PaymentDataError() {}

// DecryptionError reports that no registered private key opened a verified
// token. It deliberately carries no detail about the failed check.
type DecryptionError struct {
	Attempts int
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: none of %d private key(s) matched", e.Attempts)
}

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryptionFailed
}

// PaymentDataError implements the PaymentDataError interface.
func (e *DecryptionError) PaymentDataError() {}

// KeyFetchError reports a failure to obtain the signing key directory. Err
// unwraps to the transport error, usually *APIError or *NetworkError.
type KeyFetchError struct {
	Err error
}

func (e *KeyFetchError) Error() string {
	return fmt.Sprintf("signing keys unavailable: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyFetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyFetchError) Is(target error) bool {
	return target == ErrKeyFetchFailed
}

// PaymentDataError implements the PaymentDataError interface.
func (e *KeyFetchError) PaymentDataError() {}

// wrapVerifyError converts a verification failure to a public error.
// Context errors pass through untouched.
func wrapVerifyError(version string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrKeyFetchFailed) {
		return &KeyFetchError{Err: err}
	}
	if errors.Is(err, ErrMalformedToken) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &SignatureVerificationError{ProtocolVersion: version, Err: err}
}
