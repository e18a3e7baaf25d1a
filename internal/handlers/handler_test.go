// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Most tests run against the in-memory key-value store; the PostgreSQL and
// Valkey integration tests are skipped when those services are unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"kartela/internal/auth"
	"kartela/internal/catalog"
	"kartela/internal/database"
	"kartela/internal/kvstore"
	"kartela/internal/middleware"
	"kartela/internal/models"
	"kartela/internal/webhook"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "kartela")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "kartela")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "api:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds the dependencies of handler tests.
type testEnv struct {
	Store    *kvstore.Store
	Users    *kvstore.UserStore
	Tokens   *auth.Manager
	Notifier *webhook.Notifier
	Catalog  *Catalog
	Auth     *Auth
}

// newTestEnv builds handlers over a freshly seeded in-memory catalog.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	blobs := kvstore.NewMemoryBlobs()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := kvstore.Seed(ctx, blobs, catalog.DefaultCatalog(now)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tokens, err := auth.NewManager("handler-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	env := &testEnv{
		Store:    kvstore.New(blobs),
		Users:    kvstore.NewUserStore(blobs),
		Tokens:   tokens,
		Notifier: webhook.NewNotifier(2 * time.Second),
	}
	env.Catalog = NewCatalog(env.Store, nil, env.Notifier, "")
	env.Auth = NewAuth(env.Users, tokens)
	t.Cleanup(env.Notifier.Wait)
	return env
}

// jsonRequest builds a request with body encoded as JSON.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeBody decodes a JSON response into T.
func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asUser attaches verified claims for a user with the given role.
func asUser(t *testing.T, env *testEnv, r *http.Request, role models.Role) *http.Request {
	t.Helper()
	tok, err := env.Tokens.Issue(&models.User{ID: uuid.New(), Username: "tester", Role: role})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := env.Tokens.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return r.WithContext(contextWithClaims(r.Context(), claims))
}

func contextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, middleware.ClaimsKey, claims)
}

// messageOf returns the "message" field of a JSON response.
func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decodeBody[map[string]any](t, rec)["message"].(string)
	return msg
}
