// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

const testPrefix = "test:api:"

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, testPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func testCache(t *testing.T) *ResponseCache {
	t.Helper()
	rc := NewResponseCache(testValkeyClient(t), time.Minute)
	rc.prefix = testPrefix
	return rc
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestResponseCacheSetAndGet(t *testing.T) {
	rc := testCache(t)
	ctx := context.Background()

	data, gen, ok := rc.Get(ctx, "/api/categories")
	if ok || data != nil {
		t.Fatal("expected cache miss")
	}
	if gen < 0 {
		t.Fatalf("generation = %d on a reachable cache", gen)
	}

	body := []byte(`[{"id":"ic-cephe"}]`)
	rc.Set(ctx, "/api/categories", gen, body)

	data, _, ok = rc.Get(ctx, "/api/categories")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != string(body) {
		t.Errorf("data mismatch: got %q, want %q", data, body)
	}
}

func TestResponseCacheInvalidateAll(t *testing.T) {
	rc := testCache(t)
	ctx := context.Background()

	keys := []string{"/api/palettes", "/api/palettes?categoryId=ic-cephe", "/api/brands"}
	for _, k := range keys {
		_, gen, _ := rc.Get(ctx, k)
		rc.Set(ctx, k, gen, []byte("x"))
	}

	rc.InvalidateAll(ctx)

	for _, k := range keys {
		if _, _, ok := rc.Get(ctx, k); ok {
			t.Errorf("expected miss for %q after InvalidateAll", k)
		}
	}
}

func TestResponseCacheDropsBodyReadBeforeWrite(t *testing.T) {
	rc := testCache(t)
	ctx := context.Background()

	// A reader misses, a writer invalidates, then the reader stores what
	// it loaded before the write.
	_, gen, _ := rc.Get(ctx, "/api/palettes")
	rc.InvalidateAll(ctx)
	rc.Set(ctx, "/api/palettes", gen, []byte(`["stale"]`))

	if data, _, ok := rc.Get(ctx, "/api/palettes"); ok {
		t.Errorf("stale body served after invalidation: %q", data)
	}

	_, fresh, _ := rc.Get(ctx, "/api/palettes")
	if fresh <= gen {
		t.Errorf("generation after invalidation = %d, want > %d", fresh, gen)
	}
	rc.Set(ctx, "/api/palettes", fresh, []byte(`["fresh"]`))
	if data, _, ok := rc.Get(ctx, "/api/palettes"); !ok || string(data) != `["fresh"]` {
		t.Errorf("fresh body: ok=%v data=%q", ok, data)
	}
}

func TestResponseCacheSetIgnoresUnknownGeneration(t *testing.T) {
	rc := testCache(t)
	ctx := context.Background()

	rc.Set(ctx, "/api/brands", -1, []byte("x"))
	if _, _, ok := rc.Get(ctx, "/api/brands"); ok {
		t.Error("body stored without a known generation")
	}
}

func TestNewResponseCacheDefaultTTL(t *testing.T) {
	rc := NewResponseCache(nil, 0)
	if rc.ttl != DefaultResponseTTL {
		t.Errorf("expected DefaultResponseTTL (%v), got %v", DefaultResponseTTL, rc.ttl)
	}
}

func TestNilResponseCache(t *testing.T) {
	var rc *ResponseCache
	ctx := context.Background()

	rc.Set(ctx, "k", 0, []byte("v"))
	rc.InvalidateAll(ctx)
	if _, _, ok := rc.Get(ctx, "k"); ok {
		t.Error("nil cache must never hit")
	}
}
