// Package blockhash caches the latest network blockhash behind a TTL.
//
// Store faults never reach the caller: a failed read is a miss and a failed
// write only costs the next caller a refetch. Failures of the blockhash Source
// do propagate, since no transaction can be finalized without a blockhash.
//
// Concurrent misses on one Cache are not coalesced; each caller that misses
// issues its own fetch and the last write wins.
package blockhash

import (
	"context"
	"fmt"
	"time"

	"github.com/rovshanmuradov/txprep/internal/blockchain"
	"github.com/rovshanmuradov/txprep/internal/utils/metrics"
	"go.uber.org/zap"
)

// DefaultTTL is how long a fetched blockhash is served before refetching.
const DefaultTTL = 5000 * time.Millisecond

// CacheKey is the fixed logical key the cache reads and writes.
const CacheKey = "latest-blockhash"

// Source fetches the latest blockhash from the network.
type Source interface {
	LatestBlockhash(ctx context.Context) (blockchain.Blockhash, error)
}

// Cache serves a recent blockhash from a Store, refreshing it from a Source
// once the stored entry expires.
type Cache struct {
	source  Source
	store   Store
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Collector
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// NewCache creates a cache over source and store.
func NewCache(source Source, store Store, logger *zap.Logger, opts ...Option) *Cache {
	c := &Cache{
		source: source,
		store:  store,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logger.Named("blockhash-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached blockhash while it is fresh, otherwise fetches the
// latest one, stores it with a new expiry and returns it.
func (c *Cache) Get(ctx context.Context) (blockchain.Blockhash, error) {
	if entry, ok := c.lookup(ctx); ok && entry.Valid(c.now()) {
		c.metrics.RecordCacheResult(metrics.ResultHit)
		return entry.Blockhash, nil
	}
	c.metrics.RecordCacheResult(metrics.ResultMiss)

	start := time.Now()
	bh, err := c.source.LatestBlockhash(ctx)
	c.metrics.ObserveBlockhashFetch(time.Since(start))
	if err != nil {
		return blockchain.Blockhash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	entry := Entry{
		Blockhash: bh,
		ExpiresAt: c.now().Add(c.ttl).UnixMilli(),
	}
	c.Set(ctx, entry)

	c.logger.Debug("Blockhash refreshed",
		zap.String("blockhash", bh.Hash.String()),
		zap.Uint64("last_valid_block_height", bh.LastValidBlockHeight),
		zap.Int64("expires_at", entry.ExpiresAt))

	return bh, nil
}

// Set writes entry under CacheKey, replacing any previous entry.
// Store faults are logged and dropped.
func (c *Cache) Set(ctx context.Context, entry Entry) {
	if err := c.store.Save(ctx, CacheKey, entry); err != nil {
		c.metrics.RecordStoreError(metrics.OpSave)
		c.logger.Warn("Failed to write blockhash cache", zap.Error(err))
	}
}

func (c *Cache) lookup(ctx context.Context) (Entry, bool) {
	entry, ok, err := c.store.Load(ctx, CacheKey)
	if err != nil {
		c.metrics.RecordStoreError(metrics.OpLoad)
		c.logger.Warn("Failed to read blockhash cache, treating as miss", zap.Error(err))
		return Entry{}, false
	}
	return entry, ok
}
