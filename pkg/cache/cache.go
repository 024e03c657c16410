// Package cache implements an optional Redis-backed cache of evaluated
// Boolean query results, keyed by a normalized form of the query line.
// Key normalization, singleflight dedup, and hit/miss counters follow the
// same pattern as a typical search-result cache, adapted here to cache a
// sorted doc-id list plus hit count instead of ranked search results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/corvidx/invidx/pkg/config"
	pkgredis "github.com/corvidx/invidx/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "invidx:query:"

// Result is the cached shape of one evaluated query.
type Result struct {
	DocIDs []uint32 `json:"doc_ids"`
	Hits   int      `json:"hits"`
}

// QueryCache is the optional Redis-backed cache. A nil *QueryCache is
// valid: every method degrades to a direct pass-through of computeFn so
// callers can construct one only when Redis is configured and reachable.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New wraps client with the query cache. cfg supplies the TTL.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// GetOrCompute returns the cached Result for query if present, otherwise
// runs computeFn, caches its result, and returns it. A cache miss or a
// Redis error never prevents the query from being answered — computeFn
// always runs in that case.
func (c *QueryCache) GetOrCompute(ctx context.Context, query string, computeFn func() (Result, error)) (Result, error) {
	if c == nil || c.client == nil {
		return computeFn()
	}
	key := c.buildKey(query)
	if result, ok := c.get(ctx, key); ok {
		return result, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.get(ctx, key); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return Result{}, err
	}
	return val.(Result), nil
}

func (c *QueryCache) get(ctx context.Context, key string) (Result, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Warn("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return Result{}, false
	}
	c.hits.Add(1)
	return result, true
}

func (c *QueryCache) set(ctx context.Context, key string, result Result) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// Stats returns cumulative hit/miss counts.
func (c *QueryCache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query string) string {
	normalized := normalizeQuery(query)
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// normalizeQuery collapses whitespace so that semantically identical query
// lines (differing only in spacing) hit the same cache key. The query
// grammar's operators are punctuation, not keywords, so no reordering is
// attempted here — only whitespace is canonicalized.
func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
