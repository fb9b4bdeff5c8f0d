package paymentdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paymentdata/client-go/internal/api"
	"github.com/paymentdata/client-go/internal/clock"
	"github.com/paymentdata/client-go/internal/crypto"
	"github.com/paymentdata/client-go/internal/logging"
	"github.com/paymentdata/client-go/internal/signingkeys"
)

// KeyCacheStats describes the signing key cache.
type KeyCacheStats struct {
	// Generation counts successful refreshes; zero before the first one.
	Generation uint64
	FetchedAt  time.Time
	TTL        time.Duration
	// Keys is the number of cached keys per protocol version.
	Keys map[string]int
}

// Recipient unseals tokens addressed to one recipient ID. It is safe for
// concurrent use; private keys may be added while Unseal runs.
type Recipient struct {
	recipientID string
	verifier    *crypto.Verifier
	cache       *signingkeys.Cache
	logger      *slog.Logger

	mu   sync.Mutex
	keys atomic.Pointer[[]*crypto.PrivateKey]
}

// New creates a Recipient for recipientID, such as "merchant:12345" or
// "gateway:yourgateway". Signing keys are fetched lazily on the first Unseal
// unless PrefetchKeys is called.
func New(recipientID string, opts ...Option) (*Recipient, error) {
	if strings.TrimSpace(recipientID) == "" {
		return nil, ErrMissingRecipientID
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.clock == nil {
		cfg.clock = clock.System
	}

	r := &Recipient{
		recipientID: recipientID,
		logger:      logging.New(cfg.logger),
	}
	r.keys.Store(&[]*crypto.PrivateKey{})

	provider := cfg.keyProvider
	if provider == nil {
		cache, err := buildKeyCache(cfg, r.logger)
		if err != nil {
			return nil, err
		}
		r.cache = cache
		provider = cache
	}
	r.verifier = crypto.NewVerifier(provider, cfg.clock)

	return r, nil
}

// buildKeyFetcher creates the key directory source from the given config.
func buildKeyFetcher(cfg *recipientConfig) (signingkeys.Fetcher, error) {
	if cfg.keyDirectoryJSON != nil {
		return signingkeys.NewStaticFetcher(cfg.keyDirectoryJSON)
	}

	apiOpts := []api.Option{api.WithRetries(cfg.retries)}
	if cfg.timeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.timeout))
	}
	if len(cfg.retryOn) > 0 {
		apiOpts = append(apiOpts, api.WithRetryOn(cfg.retryOn))
	}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(cfg.httpClient))
	}
	return api.New(cfg.keyDirectoryURL, apiOpts...)
}

func buildKeyCache(cfg *recipientConfig, logger *slog.Logger) (*signingkeys.Cache, error) {
	fetcher, err := buildKeyFetcher(cfg)
	if err != nil {
		return nil, err
	}
	return signingkeys.New(signingkeys.Config{
		Fetcher:      fetcher,
		Clock:        cfg.clock,
		Logger:       logger,
		DefaultTTL:   cfg.defaultKeyTTL,
		FetchTimeout: cfg.keyFetchTimeout,
		Limiter:      cfg.limiter,
		Registerer:   cfg.registerer,
	})
}

// RecipientID returns the recipient ID tokens must be addressed to.
func (r *Recipient) RecipientID() string {
	return r.recipientID
}

// AddPrivateKey registers a base64 PKCS#8 P-256 private key. Keys are tried
// in registration order.
func (r *Recipient) AddPrivateKey(privateKey string) error {
	key, err := crypto.ParsePrivateKeyBase64(privateKey)
	if err != nil {
		return fmt.Errorf("add private key: %w", err)
	}
	r.addKey(key)
	return nil
}

// AddPrivateKeyHex registers a P-256 private key given as a hex scalar.
func (r *Recipient) AddPrivateKeyHex(privateKey string) error {
	key, err := crypto.ParsePrivateKeyHex(privateKey)
	if err != nil {
		return fmt.Errorf("add private key: %w", err)
	}
	r.addKey(key)
	return nil
}

// addKey publishes a new key list; readers keep the one they loaded.
func (r *Recipient) addKey(key *crypto.PrivateKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.keys.Load()
	next := make([]*crypto.PrivateKey, len(current), len(current)+1)
	copy(next, current)
	next = append(next, key)
	r.keys.Store(&next)

	r.logger.Debug("private key registered", slog.Int("key_count", len(next)))
}

// PrivateKeyCount returns the number of registered private keys.
func (r *Recipient) PrivateKeyCount() int {
	return len(*r.keys.Load())
}

// PrefetchKeys loads the signing keys if they are missing or stale. It is a
// no-op with a custom KeyProvider.
func (r *Recipient) PrefetchKeys(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return wrapFetchError(r.cache.Prefetch(ctx))
}

// RefreshKeys reloads the signing keys regardless of freshness. It is a
// no-op with a custom KeyProvider.
func (r *Recipient) RefreshKeys(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return wrapFetchError(r.cache.Refresh(ctx))
}

// KeyCacheStats returns a snapshot of the signing key cache. The zero value
// is returned with a custom KeyProvider.
func (r *Recipient) KeyCacheStats() KeyCacheStats {
	if r.cache == nil {
		return KeyCacheStats{}
	}
	s := r.cache.Stats()
	return KeyCacheStats{
		Generation: s.Generation,
		FetchedAt:  s.FetchedAt,
		TTL:        s.TTL,
		Keys:       s.Keys,
	}
}

// Unseal verifies token and returns its decrypted payload. ECv2SigningOnly
// tokens are not encrypted; their signed message is returned as is.
//
// Verification failures are *SignatureVerificationError, a token no
// registered key opens is *DecryptionError, and an unreachable key directory
// is *KeyFetchError.
func (r *Recipient) Unseal(ctx context.Context, token string) (string, error) {
	parsed, err := crypto.ParseToken([]byte(token))
	if err != nil {
		r.logger.Debug("token rejected", slog.String("reason", "malformed"))
		return "", err
	}
	version := parsed.Version()

	err = r.verifier.VerifyMessage(ctx, parsed, crypto.GoogleSenderID, r.recipientID)
	if err != nil {
		err = wrapVerifyError(parsed.ProtocolVersion, err)
		r.logger.Info("token verification failed",
			slog.String("protocol_version", parsed.ProtocolVersion),
			slog.String("error", err.Error()))
		return "", err
	}

	if !version.Encrypted() {
		r.logger.Debug("token verified", slog.String("protocol_version", version.String()))
		return parsed.SignedMessage, nil
	}

	plaintext, err := r.decrypt(version, parsed.SignedMessage)
	if err != nil {
		r.logger.Info("token decryption failed",
			slog.String("protocol_version", version.String()),
			slog.String("error", err.Error()))
		return "", err
	}
	return plaintext, nil
}

// decrypt tries every registered key in order; the first whose tag matches
// wins.
func (r *Recipient) decrypt(version crypto.ProtocolVersion, signedMessage string) (string, error) {
	msg, err := crypto.ParseSignedMessage(signedMessage)
	if err != nil {
		return "", err
	}
	ciphertext, err := crypto.DecodeBase64(msg.EncryptedMessage)
	if err != nil {
		return "", fmt.Errorf("%w: encryptedMessage: %v", ErrMalformedToken, err)
	}
	tag, err := crypto.DecodeBase64(msg.Tag)
	if err != nil {
		return "", fmt.Errorf("%w: tag: %v", ErrMalformedToken, err)
	}
	ephemeral, err := crypto.DecodeBase64(msg.EphemeralPublicKey)
	if err != nil {
		return "", fmt.Errorf("%w: ephemeralPublicKey: %v", ErrMalformedToken, err)
	}

	keys := *r.keys.Load()
	if len(keys) == 0 {
		return "", ErrNoPrivateKeys
	}

	symmetricSize, macSize := version.KeySizes()
	for i, key := range keys {
		derived, err := crypto.DeriveKeys(key, ephemeral, symmetricSize, macSize)
		if err != nil {
			return "", err
		}
		plaintext, err := derived.Open(ciphertext, tag)
		if errors.Is(err, crypto.ErrDecryptionFailed) {
			continue
		}
		if err != nil {
			return "", err
		}
		r.logger.Debug("token unsealed",
			slog.String("protocol_version", version.String()),
			slog.Int("key_index", i))
		return string(plaintext), nil
	}
	return "", &DecryptionError{Attempts: len(keys)}
}

func wrapFetchError(err error) error {
	if err != nil && errors.Is(err, ErrKeyFetchFailed) {
		return &KeyFetchError{Err: err}
	}
	return err
}
