package fetchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/db"
	"github.com/kailas-cloud/veritas/internal/domain"
	"github.com/kailas-cloud/veritas/internal/domain/article"
)

var cacheKeyPrefix = domain.KeyPrefix + "fetch_cache:"

// fetcher is the decorated document fetcher.
type fetcher interface {
	Fetch(ctx context.Context, url string) (article.Document, error)
}

// store is the consumer interface for the fetch cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedFetcher caches fetched documents in a key-value store.
// Cache failures are logged and never fail a fetch.
type CachedFetcher struct {
	inner      fetcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner fetcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedFetcher {
	return &CachedFetcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Fetch returns a cached document or calls the inner fetcher.
// Only successful fetches with content are cached.
func (c *CachedFetcher) Fetch(ctx context.Context, url string) (article.Document, error) {
	key := c.cacheKey(url)

	if doc, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return doc, nil
	}

	c.incCache("miss")

	doc, err := c.inner.Fetch(ctx, url)
	if err != nil {
		return article.Document{}, fmt.Errorf("fetch document: %w", err)
	}

	if doc.Title() != "" || doc.Body() != "" {
		c.putToCache(ctx, key, doc)
	}
	return doc, nil
}

func (c *CachedFetcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedFetcher) cacheKey(url string) string {
	h := sha256.Sum256([]byte(url))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedFetcher) getFromCache(ctx context.Context, key string) (article.Document, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached document", zap.String("key", key), zap.Error(err))
		}
		return article.Document{}, false
	}
	if len(data) == 0 {
		return article.Document{}, false
	}

	var dto documentDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		c.logger.Warn("Failed to parse cached document", zap.String("key", key), zap.Error(err))
		return article.Document{}, false
	}
	return dto.toDomain(), true
}

func (c *CachedFetcher) putToCache(ctx context.Context, key string, doc article.Document) {
	data, err := json.Marshal(toDTO(doc))
	if err != nil {
		c.logger.Warn("Failed to encode document for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache document", zap.String("key", key), zap.Error(err))
	}
}
