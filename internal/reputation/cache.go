package reputation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ignite/deliverability-engine/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "reputation:score:"

// CachedOracle serves scores from Redis and falls through to next on a miss.
// Redis failures never fail a lookup; they only cost a live call.
type CachedOracle struct {
	next  Oracle
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedOracle wraps next with a Redis cache. A zero ttl defaults to one
// hour.
func NewCachedOracle(next Oracle, client *redis.Client, ttl time.Duration) *CachedOracle {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedOracle{next: next, redis: client, ttl: ttl}
}

// ScoreDomain returns the cached score for domain or fetches and caches it.
// Lookup errors from next are not cached.
func (c *CachedOracle) ScoreDomain(ctx context.Context, domain string) (float64, error) {
	key := cacheKeyPrefix + domain

	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		if score, perr := strconv.ParseFloat(cached, 64); perr == nil {
			return score, nil
		}
		logger.Warn("reputation cache entry unreadable", "key", key)
	case !errors.Is(err, redis.Nil):
		logger.Warn("reputation cache read failed", "domain", domain, "error", err)
	}

	score, err := c.next.ScoreDomain(ctx, domain)
	if err != nil {
		return 0, err
	}

	if err := c.redis.Set(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), c.ttl).Err(); err != nil {
		logger.Warn("reputation cache write failed", "domain", domain, "error", err)
	}
	return score, nil
}
