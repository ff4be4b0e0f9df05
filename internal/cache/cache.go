// Package cache wraps Redis with tenant-namespaced keys. The store is shared
// across tenants, so correct key construction is what keeps cached entries
// isolated.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// EntityKey builds the canonical per-entity cache key:
// {tenantId}:cache:{entity}:{id}.
func EntityKey(tenantID uint, entity, id string) string {
	return fmt.Sprintf("%d:cache:%s:%s", tenantID, entity, id)
}

// ListKey builds the key for a cached list page of an entity family.
func ListKey(tenantID uint, entity string, page, pageSize int) string {
	return EntityKey(tenantID, entity, fmt.Sprintf("list:%d:%d", page, pageSize))
}

// TenantCache stores JSON-encoded values under tenant-namespaced keys. A nil
// client disables caching entirely.
type TenantCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New constructs a tenant cache with the given default TTL.
func New(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *TenantCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TenantCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "tenant_cache").Logger(),
	}
}

// Get loads and decodes the value at key into dest. It returns false on a
// miss, a decode failure, or when caching is disabled.
func (c *TenantCache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Result()
	if err != nil || raw == "" {
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to decode cached value")
		return false
	}

	return true
}

// Set encodes and stores the value under key. Failures are logged, never
// surfaced: the cache is an optimization, not a source of truth.
func (c *TenantCache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache value")
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to cache value")
	}
}

// InvalidateEntity drops every cached key for one entity family in one
// tenant. Other tenants' entries are untouched.
func (c *TenantCache) InvalidateEntity(ctx context.Context, tenantID uint, entity string) {
	if c == nil || c.client == nil {
		return
	}

	pattern := fmt.Sprintf("%d:cache:%s:*", tenantID, entity)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn().Err(err).Str("pattern", pattern).Msg("cache invalidation scan failed")
		return
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn().Err(err).Str("pattern", pattern).Msg("cache invalidation delete failed")
		}
	}
}
