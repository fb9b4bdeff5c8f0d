package crypto

import "errors"

var (
	// ErrMalformedToken is returned when a token, signed message or signed
	// key cannot be parsed or is missing a required field.
	ErrMalformedToken = errors.New("malformed token")

	// ErrCurveMismatch is returned when a key or point is not on P-256, or
	// when two keys used together are on different curves.
	ErrCurveMismatch = errors.New("curve mismatch")

	// ErrInvalidKeyEncoding is returned when key bytes have the wrong length
	// or structure.
	ErrInvalidKeyEncoding = errors.New("invalid key encoding")

	// ErrUnsupportedProtocol is returned for a protocol version outside the
	// closed set this package understands.
	ErrUnsupportedProtocol = errors.New("unsupported protocol version")

	// ErrNoValidSigningKey is returned when no root signing key is available
	// or none of them verifies the intermediate signing key.
	ErrNoValidSigningKey = errors.New("no valid signing key")

	// ErrExpiredKey is returned when an intermediate signing key has no
	// expiration or has expired.
	ErrExpiredKey = errors.New("signing key expired")

	// ErrSignatureInvalid is returned when a message signature does not
	// verify.
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrDecryptionFailed is returned when the message tag does not match.
	// It carries no detail about which check failed.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrKeyFetchFailed is returned when the signing key directory could not
	// be obtained.
	ErrKeyFetchFailed = errors.New("signing key fetch failed")

	// ErrKeysConsumed is returned when derived message keys are used twice.
	ErrKeysConsumed = errors.New("derived keys already used")

	// ErrInvalidKeySize is returned for a non-positive derived key size or an
	// AES key of unsupported length.
	ErrInvalidKeySize = errors.New("invalid key size")
)
