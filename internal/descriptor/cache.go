package descriptor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "wsctx:descriptor:"

// DefaultCacheTTL applies when NewCached is given a non-positive TTL.
const DefaultCacheTTL = 5 * time.Minute

// CacheClient is the subset of the redis client the cache uses.
type CacheClient interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// Cached keeps lookups from an underlying source in Redis. Misses are not
// cached. Redis failures fall through to the source.
type Cached struct {
	src    Source
	rdb    CacheClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ Source = (*Cached)(nil)

func NewCached(src Source, rdb CacheClient, ttl time.Duration, logger *slog.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{src: src, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(name string) string {
	return cacheKeyPrefix + name
}

// Lookup implements Source.
func (c *Cached) Lookup(ctx context.Context, name string) (*Record, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(name)).Bytes()
	switch {
	case err == nil:
		var rec Record
		if jerr := json.Unmarshal(raw, &rec); jerr == nil {
			return &rec, nil
		}
		c.logger.Warn("descriptor cache entry corrupt", "endpoint", name)
	case !errors.Is(err, goredis.Nil):
		c.logger.Warn("descriptor cache read failed", "endpoint", name, "error", err)
	}

	rec, err := c.src.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	if data, jerr := json.Marshal(rec); jerr == nil {
		if serr := c.rdb.Set(ctx, cacheKey(name), data, c.ttl).Err(); serr != nil {
			c.logger.Warn("descriptor cache write failed", "endpoint", name, "error", serr)
		}
	}
	return rec, nil
}

// Invalidate drops the cached entry for name.
func (c *Cached) Invalidate(ctx context.Context, name string) error {
	return c.rdb.Del(ctx, cacheKey(name)).Err()
}
