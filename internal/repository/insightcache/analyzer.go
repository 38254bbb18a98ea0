// Package insightcache caches vision model responses in a key-value store.
package insightcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sathizz7/Street-View-Analysis/internal/db"
	"github.com/sathizz7/Street-View-Analysis/internal/domain"
)

const cacheKeyPrefix = "insightd:insight_cache:"

// analyzer is the consumer interface for the cached vision model (ISP).
type analyzer interface {
	Analyze(ctx context.Context, attrs map[string]string, photo []byte) (domain.Insights, error)
}

// store is the consumer interface for the cache backend (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedAnalyzer caches successful insight responses. Attribute and photo
// content address the cache, so a re-analysis of the same building with the
// same imagery never hits the provider twice within the TTL.
type CachedAnalyzer struct {
	inner      analyzer
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner analyzer,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedAnalyzer {
	return &CachedAnalyzer{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Analyze returns a cached insight set or calls the inner analyzer.
// Only successful responses are cached; provider errors pass through.
func (c *CachedAnalyzer) Analyze(
	ctx context.Context, attrs map[string]string, photo []byte,
) (domain.Insights, error) {
	key := c.cacheKey(attrs, photo)

	if insights, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return insights, nil
	}

	c.incCache("miss")

	insights, err := c.inner.Analyze(ctx, attrs, photo)
	if err != nil {
		return domain.Insights{}, fmt.Errorf("analyze building: %w", err)
	}

	c.putToCache(ctx, key, insights)
	return insights, nil
}

func (c *CachedAnalyzer) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the sorted attributes and the photo bytes.
func (c *CachedAnalyzer) cacheKey(attrs map[string]string, photo []byte) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(attrs[k]))
		h.Write([]byte{0})
	}
	h.Write(photo)

	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedAnalyzer) getFromCache(ctx context.Context, key string) (domain.Insights, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached insights", zap.String("key", key), zap.Error(err))
		}
		return domain.Insights{}, false
	}

	var insights domain.Insights
	if err := json.Unmarshal(data, &insights); err != nil {
		c.logger.Warn("Failed to parse cached insights", zap.String("key", key), zap.Error(err))
		return domain.Insights{}, false
	}
	return insights, true
}

func (c *CachedAnalyzer) putToCache(ctx context.Context, key string, insights domain.Insights) {
	data, err := json.Marshal(insights)
	if err != nil {
		c.logger.Warn("Failed to encode insights for cache", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache insights", zap.String("key", key), zap.Error(err))
	}
}
