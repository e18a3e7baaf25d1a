// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go caches encoded JSON bodies of the public catalog reads
// (categories, brands, palettes) in Valkey. Any catalog write clears the
// whole set, since one palette edit can change several list responses.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"kartela/internal/metrics"
)

const (
	// responseKeyPrefix is the Valkey key prefix for cached responses.
	responseKeyPrefix = "api:"

	// DefaultResponseTTL is how long a catalog response stays cached.
	DefaultResponseTTL = 2 * time.Minute
)

// ResponseCache manages cached catalog responses in Valkey. A nil
// *ResponseCache is valid and never hits.
//
// Entries live under a generation number that InvalidateAll bumps. A read
// that started before a write stores its body under the old generation,
// which is never looked up again and expires with its TTL.
type ResponseCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewResponseCache creates a response cache backed by the given Valkey client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, prefix: responseKeyPrefix, ttl: ttl}
}

func (rc *ResponseCache) genKey() string { return rc.prefix + "gen" }

func (rc *ResponseCache) entryKey(gen int64, key string) string {
	return rc.prefix + "r:" + strconv.FormatInt(gen, 10) + ":" + key
}

// Get returns the cached body for a request key together with the
// generation to pass to Set. gen is negative when the generation could not
// be read; Set ignores such bodies.
func (rc *ResponseCache) Get(ctx context.Context, key string) (body []byte, gen int64, ok bool) {
	if rc == nil {
		return nil, -1, false
	}
	gen, err := rc.client.Get(ctx, rc.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		gen = 0
	} else if err != nil {
		slog.Warn("response cache generation error", "error", err)
		metrics.CatalogCacheMisses.Inc()
		return nil, -1, false
	}

	val, err := rc.client.Get(ctx, rc.entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CatalogCacheMisses.Inc()
		return nil, gen, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		metrics.CatalogCacheMisses.Inc()
		return nil, -1, false
	}
	metrics.CatalogCacheHits.Inc()
	return val, gen, true
}

// Set stores an encoded body under the generation returned by Get.
func (rc *ResponseCache) Set(ctx context.Context, key string, gen int64, body []byte) {
	if rc == nil || gen < 0 {
		return
	}
	if err := rc.client.Set(ctx, rc.entryKey(gen, key), body, rc.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// InvalidateAll starts a new generation, then removes the stored entries
// by scanning for the entry prefix.
func (rc *ResponseCache) InvalidateAll(ctx context.Context) {
	if rc == nil {
		return
	}
	if err := rc.client.Incr(ctx, rc.genKey()).Err(); err != nil {
		slog.Warn("response cache generation bump error", "error", err)
	}

	var cursor uint64
	var deleted int
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, rc.prefix+"r:*", 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("response cache cleared", "deleted", deleted)
	}
}
