// Package cache provides a Redis-backed cache for retrieval results so
// repeated questions skip the rewrite and similarity search round trips.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/careerkb/kb-agent/internal/rag"
)

const DefaultTTL = 30 * time.Minute

// RedisSearchCache stores rag.QueryResult values keyed by the raw
// user query.
type RedisSearchCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSearchCache(client *redis.Client, prefix string, ttl time.Duration) *RedisSearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisSearchCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisSearchCache) key(query string) string {
	return c.prefix + strings.TrimSpace(query)
}

// Get returns the cached result for a query, or nil on a miss. Cache
// failures are reported as errors so the caller can fall through to a
// full retrieval.
func (c *RedisSearchCache) Get(ctx context.Context, query string) (*rag.QueryResult, error) {
	data, err := c.client.Get(ctx, c.key(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read search cache: %w", err)
	}

	var result rag.QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, nil
}

// Set stores a retrieval result under the query with the cache TTL.
func (c *RedisSearchCache) Set(ctx context.Context, query string, result *rag.QueryResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result for cache: %w", err)
	}

	if err := c.client.Set(ctx, c.key(query), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write search cache: %w", err)
	}
	return nil
}

// Clear removes every cached entry under the cache prefix.
func (c *RedisSearchCache) Clear(ctx context.Context) (int, error) {
	var deleted int
	var cursor uint64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan search cache: %w", err)
		}

		if len(keys) > 0 {
			removed, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete cached keys: %w", err)
			}
			deleted += int(removed)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	log.Info().Int("deleted", deleted).Msg("Search cache cleared")
	return deleted, nil
}
