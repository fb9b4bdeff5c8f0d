// Package signingkeys caches the root signing key directory. Keys are
// indexed by protocol version, refreshed on a time-to-live policy, and
// fetched at most once at a time no matter how many callers need them.
package signingkeys

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/paymentdata/client-go/internal/api"
	"github.com/paymentdata/client-go/internal/clock"
	"github.com/paymentdata/client-go/internal/crypto"
	"github.com/paymentdata/client-go/internal/logging"
)

const (
	// DefaultTTL is how long a generation stays fresh when the directory
	// response carries no max-age.
	DefaultTTL = 7 * 24 * time.Hour
	// DefaultFetchTimeout bounds one refresh, retries included.
	DefaultFetchTimeout = 2 * time.Minute

	refreshKey = "refresh"
)

var errRefreshThrottled = errors.New("refresh throttled")

// Config configures a Cache.
type Config struct {
	// Fetcher supplies the key directory. Required.
	Fetcher Fetcher
	// Clock drives expiration and freshness. Defaults to the system clock.
	Clock clock.Clock
	// Logger receives refresh events. Defaults to discarding.
	Logger *slog.Logger
	// DefaultTTL applies when the directory carries no max-age.
	DefaultTTL time.Duration
	// FetchTimeout bounds one refresh independently of caller contexts.
	FetchTimeout time.Duration
	// Limiter bounds fetch attempts. Nil means unlimited.
	Limiter *rate.Limiter
	// Registerer receives the cache metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// Entry is one cached signing key.
type Entry struct {
	// KeyValue is the DER SubjectPublicKeyInfo.
	KeyValue []byte
	// Expiration is zero when the key never expires.
	Expiration crypto.UnixMillis
}

// generation is an immutable snapshot of the directory.
type generation struct {
	seq       uint64
	keys      map[string][]Entry
	fetchedAt time.Time
	ttl       time.Duration
}

func (g *generation) stale(now time.Time) bool {
	return now.Sub(g.fetchedAt) >= g.ttl
}

// Stats describes the current generation.
type Stats struct {
	Generation uint64
	FetchedAt  time.Time
	TTL        time.Duration
	Keys       map[string]int
}

// Cache holds the current signing key generation. It is safe for
// concurrent use and implements crypto.KeyProvider.
type Cache struct {
	fetcher      Fetcher
	clock        clock.Clock
	logger       *slog.Logger
	defaultTTL   time.Duration
	fetchTimeout time.Duration
	limiter      *rate.Limiter
	metrics      *metrics

	mu      sync.RWMutex
	current *generation

	seq   atomic.Uint64
	group singleflight.Group
}

var _ crypto.KeyProvider = (*Cache)(nil)

// New creates an empty cache. Nothing is fetched until the first lookup or
// Prefetch.
func New(cfg Config) (*Cache, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("signing key fetcher is required")
	}

	c := &Cache{
		fetcher:      cfg.Fetcher,
		clock:        cfg.Clock,
		logger:       logging.New(cfg.Logger),
		defaultTTL:   cfg.DefaultTTL,
		fetchTimeout: cfg.FetchTimeout,
		limiter:      cfg.Limiter,
		metrics:      newMetrics(cfg.Registerer),
	}
	if c.clock == nil {
		c.clock = clock.System
	}
	if c.defaultTTL <= 0 {
		c.defaultTTL = DefaultTTL
	}
	if c.fetchTimeout <= 0 {
		c.fetchTimeout = DefaultFetchTimeout
	}
	return c, nil
}

// GetPublicKeys returns the DER keys for a protocol version, refreshing the
// directory first if needed. An unknown version yields no keys and no
// error. When a refresh fails but an earlier generation exists, that
// generation is served.
func (c *Cache) GetPublicKeys(ctx context.Context, protocolVersion string) ([][]byte, error) {
	err := c.ensureFresh(ctx, false)
	gen := c.load()
	if err != nil {
		if gen == nil || ctx.Err() != nil {
			return nil, err
		}
		c.metrics.staleServed.Inc()
		c.logger.Warn("serving stale signing keys",
			slog.Uint64("generation", gen.seq),
			slog.Time("fetched_at", gen.fetchedAt),
			slog.String("error", err.Error()))
	}

	now := c.clock.Now()
	entries := gen.keys[protocolVersion]
	keys := make([][]byte, 0, len(entries))
	for _, e := range entries {
		if e.Expiration.Expired(now) {
			continue
		}
		keys = append(keys, bytes.Clone(e.KeyValue))
	}
	return keys, nil
}

// PublicKeys implements crypto.KeyProvider.
func (c *Cache) PublicKeys(ctx context.Context, version crypto.ProtocolVersion) ([][]byte, error) {
	return c.GetPublicKeys(ctx, version.String())
}

// Prefetch refreshes the directory if the current generation is missing or
// stale. Unlike lookups it reports a failed refresh even when stale keys
// remain available.
func (c *Cache) Prefetch(ctx context.Context) error {
	return c.ensureFresh(ctx, false)
}

// Refresh fetches the directory regardless of freshness. Callers arriving
// while a refresh is in flight share its result.
func (c *Cache) Refresh(ctx context.Context) error {
	return c.ensureFresh(ctx, true)
}

// Stats returns a snapshot of the current generation. The zero Stats is
// returned before the first successful refresh.
func (c *Cache) Stats() Stats {
	gen := c.load()
	if gen == nil {
		return Stats{Keys: map[string]int{}}
	}
	return Stats{
		Generation: gen.seq,
		FetchedAt:  gen.fetchedAt,
		TTL:        gen.ttl,
		Keys:       countKeys(gen.keys),
	}
}

func (c *Cache) load() *generation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Cache) needsRefresh() bool {
	gen := c.load()
	return gen == nil || gen.stale(c.clock.Now())
}

// ensureFresh joins or starts the single in-flight refresh. The caller
// stops waiting when ctx is done; the refresh itself keeps running.
func (c *Cache) ensureFresh(ctx context.Context, force bool) error {
	if !force && !c.needsRefresh() {
		return nil
	}

	ch := c.group.DoChan(refreshKey, func() (any, error) {
		if !force && !c.needsRefresh() {
			return nil, nil
		}
		return nil, c.fetch(ctx)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// fetch runs one refresh detached from the starting caller's cancellation.
func (c *Cache) fetch(parent context.Context) error {
	if c.limiter != nil && !c.limiter.Allow() {
		c.metrics.refresh("throttled")
		return fmt.Errorf("%w: %w", crypto.ErrKeyFetchFailed, errRefreshThrottled)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.fetchTimeout)
	defer cancel()

	seq := c.seq.Add(1)
	c.logger.Debug("refreshing signing keys", slog.Uint64("generation", seq))

	dir, err := c.fetcher.FetchKeyDirectory(ctx)
	if err != nil {
		c.metrics.refresh("error")
		c.logger.Warn("signing key refresh failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", crypto.ErrKeyFetchFailed, err)
	}

	gen := c.buildGeneration(seq, dir)
	c.swap(gen)

	counts := countKeys(gen.keys)
	c.metrics.refresh("success")
	c.metrics.setKeys(counts)
	c.logger.Info("signing keys refreshed",
		slog.Uint64("generation", seq),
		slog.Any("key_count", counts),
		slog.Duration("ttl", gen.ttl))
	return nil
}

func (c *Cache) buildGeneration(seq uint64, dir *api.KeyDirectory) *generation {
	now := c.clock.Now()
	gen := &generation{
		seq:       seq,
		keys:      make(map[string][]Entry),
		fetchedAt: now,
		ttl:       c.defaultTTL,
	}
	if dir.MaxAge > 0 {
		gen.ttl = dir.MaxAge
	}

	for _, k := range dir.Keys {
		if k.KeyExpiration.Expired(now) {
			c.logger.Debug("dropping expired signing key",
				slog.String("protocol_version", k.ProtocolVersion),
				slog.Time("expired_at", k.KeyExpiration.Time()))
			continue
		}
		der, err := crypto.DecodeBase64(k.KeyValue)
		if err != nil || len(der) == 0 {
			c.logger.Warn("dropping undecodable signing key",
				slog.String("protocol_version", k.ProtocolVersion))
			continue
		}
		gen.keys[k.ProtocolVersion] = append(gen.keys[k.ProtocolVersion], Entry{
			KeyValue:   der,
			Expiration: k.KeyExpiration,
		})
	}
	return gen
}

// swap installs gen. Generations only move forward; anything else is a
// programming error.
func (c *Cache) swap(gen *generation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && gen.seq <= c.current.seq {
		panic(fmt.Sprintf("signingkeys: generation %d would replace newer generation %d", gen.seq, c.current.seq))
	}
	c.current = gen
}

func countKeys(keys map[string][]Entry) map[string]int {
	counts := make(map[string]int, len(keys))
	for v, entries := range keys {
		counts[v] = len(entries)
	}
	return counts
}
