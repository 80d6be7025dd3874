// Package cache provides an optional Redis read-through cache for raw day
// summaries. The Huami API enforces aggressive daily quotas, so re-runs of a
// report (after a config fix, a mail failure, etc.) should not have to hit
// the vendor again for payloads already seen.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blaisecz/zepp-sleep-report/internal/service"
	"github.com/blaisecz/zepp-sleep-report/pkg/dateutil"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultTTL keeps cached summaries for a week; past days never change
// upstream, but an unbounded cache is not worth the bookkeeping.
const DefaultTTL = 7 * 24 * time.Hour

// SummaryCache stores raw base64 summary blobs keyed by user and date.
type SummaryCache struct {
	rdb    *redis.Client
	userID string
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a SummaryCache. ttl <= 0 falls back to DefaultTTL.
func New(rdb *redis.Client, userID string, ttl time.Duration, logger *zap.Logger) *SummaryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SummaryCache{rdb: rdb, userID: userID, ttl: ttl, logger: logger}
}

func (c *SummaryCache) key(date dateutil.Date) string {
	return fmt.Sprintf("zepp:summary:%s:%s", c.userID, date)
}

// Get returns the cached summary for a day. The second return value reports
// whether the day was cached at all; an empty string can be a legitimate
// cached "vendor has no data" result.
func (c *SummaryCache) Get(ctx context.Context, date dateutil.Date) (string, bool) {
	val, err := c.rdb.Get(ctx, c.key(date)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("summary cache read failed", zap.String("date", date.String()), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// Set stores a day's summary. Failures are logged and swallowed: the cache
// must never fail a day that the transport already delivered.
func (c *SummaryCache) Set(ctx context.Context, date dateutil.Date, summary string) {
	if err := c.rdb.Set(ctx, c.key(date), summary, c.ttl).Err(); err != nil {
		c.logger.Warn("summary cache write failed", zap.String("date", date.String()), zap.Error(err))
	}
}

// Source wraps a SummarySource with read-through caching. A nil cache
// passes every lookup straight to the underlying source.
type Source struct {
	cache  *SummaryCache
	source service.SummarySource
}

// NewSource builds the caching source wrapper.
func NewSource(cache *SummaryCache, source service.SummarySource) *Source {
	return &Source{cache: cache, source: source}
}

// FetchDay serves the day from cache when possible, otherwise falls through
// to the underlying source and caches the result. Only successful fetches
// are cached; transport failures stay uncached so a re-run retries them.
func (s *Source) FetchDay(ctx context.Context, date dateutil.Date) (string, error) {
	if s.cache == nil {
		return s.source.FetchDay(ctx, date)
	}

	if summary, ok := s.cache.Get(ctx, date); ok {
		return summary, nil
	}

	summary, err := s.source.FetchDay(ctx, date)
	if err != nil {
		return "", err
	}
	s.cache.Set(ctx, date, summary)
	return summary, nil
}
