// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains and access rules.
package router

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"kartela/internal/auth"
	"kartela/internal/catalog"
	"kartela/internal/handlers"
	"kartela/internal/imageproc"
	"kartela/internal/kvstore"
	"kartela/internal/models"
	"kartela/internal/storage"
	"kartela/internal/webhook"
)

type testServer struct {
	handler   http.Handler
	tokens    *auth.Manager
	uploadDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctx := context.Background()
	blobs := kvstore.NewMemoryBlobs()
	if err := kvstore.Seed(ctx, blobs, catalog.DefaultCatalog(time.Now())); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := kvstore.New(blobs)
	users := kvstore.NewUserStore(blobs)
	if err := users.SeedAdmin(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}

	tokens, err := auth.NewManager("router-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	dir := t.TempDir()
	disk, err := storage.NewDisk(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	notifier := webhook.NewNotifier(time.Second)
	t.Cleanup(notifier.Wait)

	h := New(Options{
		Tokens:                tokens,
		Catalog:               handlers.NewCatalog(store, nil, notifier, ""),
		Auth:                  handlers.NewAuth(users, tokens),
		Media:                 handlers.NewMedia(disk, nil),
		Preview:               handlers.NewPreview(imageproc.NewMockProcessor(-1)),
		Health:                handlers.Health("memory", true, nil),
		CORSAllowedOrigins:    []string{"*"},
		ProcessImageRateLimit: 2,
		UploadDir:             dir,
		UploadPublicPath:      "/uploads",
	})
	return &testServer{handler: h, tokens: tokens, uploadDir: dir}
}

func (s *testServer) do(t *testing.T, method, target, body string, role models.Role) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if role != "" {
		tok, err := s.tokens.Issue(&models.User{ID: uuid.New(), Username: "t", Role: role})
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "OK" {
		t.Errorf("status field = %v", body["status"])
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers not applied")
	}
}

func TestWriteAccessRules(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		role       models.Role
		wantStatus int
	}{
		{"public list", http.MethodGet, "/api/categories", "", "", http.StatusOK},
		{"public get", http.MethodGet, "/api/palettes/ic-modern", "", "", http.StatusOK},
		{"public filter", http.MethodGet, "/api/palettes?categoryId=mobilya", "", "", http.StatusOK},
		{"anonymous create", http.MethodPost, "/api/categories", `{"name":"A"}`, "", http.StatusUnauthorized},
		{"user create", http.MethodPost, "/api/categories", `{"name":"A"}`, models.RoleUser, http.StatusForbidden},
		{"admin create", http.MethodPost, "/api/categories", `{"name":"A"}`, models.RoleAdmin, http.StatusCreated},
		{"anonymous brand delete", http.MethodDelete, "/api/brands/dufa", "", "", http.StatusUnauthorized},
		{"anonymous test-webhook", http.MethodPost, "/api/palettes/ic-modern/test-webhook", "", "", http.StatusUnauthorized},
		{"admin test-webhook unconfigured", http.MethodPost, "/api/palettes/ic-modern/test-webhook", "", models.RoleAdmin, http.StatusBadRequest},
		{"public settings", http.MethodGet, "/api/settings/whatsapp", "", "", http.StatusOK},
		{"user settings write", http.MethodPut, "/api/settings/whatsapp", `{"enabled":false}`, models.RoleUser, http.StatusForbidden},
		{"anonymous upload", http.MethodPost, "/api/upload", "", "", http.StatusUnauthorized},
		{"me without token", http.MethodGet, "/api/auth/me", "", "", http.StatusUnauthorized},
		{"whatsapp link unset", http.MethodGet, "/api/whatsapp/link", "", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.target, tt.body, tt.role)
			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d; body = %s", tt.method, tt.target, rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestLoginFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"admin123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d; body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	me := httptest.NewRecorder()
	s.handler.ServeHTTP(me, req)
	if me.Code != http.StatusOK || !strings.Contains(me.Body.String(), `"admin"`) {
		t.Errorf("me status = %d, body = %s", me.Code, me.Body.String())
	}
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t)

	for i := range loginRateLimit {
		rec := s.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"wrong"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, rec.Code)
		}
	}
	if rec := s.do(t, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"wrong"}`, ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("attempt over limit: status = %d, want 429", rec.Code)
	}
}

func TestProcessImageRateLimitAndMockHeader(t *testing.T) {
	s := newTestServer(t)
	body := `{"image":"data:image/png;base64,AA==","color":{"id":"c1"},"category":"ic-cephe"}`

	for i := range 2 {
		rec := s.do(t, http.MethodPost, "/api/process-image", body, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
		if rec.Header().Get(handlers.MockHeader) != "true" {
			t.Errorf("request %d: mock header missing", i+1)
		}
	}
	if rec := s.do(t, http.MethodPost, "/api/process-image", body, ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestCompareRateLimit(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	body := `{"original":"` + uri + `","processed":"` + uri + `"}`

	for i := range 2 {
		if rec := s.do(t, http.MethodPost, "/api/compare", body, ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, body = %s", i+1, rec.Code, rec.Body.String())
		}
	}
	if rec := s.do(t, http.MethodPost, "/api/compare", body, ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestUploadsServedStatically(t *testing.T) {
	s := newTestServer(t)
	if err := os.MkdirAll(filepath.Join(s.uploadDir, "2026", "01"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, "2026", "01", "a.txt"), []byte("merhaba"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := s.do(t, http.MethodGet, "/uploads/2026/01/a.txt", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "merhaba" {
		t.Errorf("file: status = %d, body = %q", rec.Code, rec.Body.String())
	}
	if rec := s.do(t, http.MethodGet, "/uploads/2026/", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("directory listing: status = %d, want 404", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/palettes", nil)
	req.Header.Set("Origin", "https://kartela.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/categories", "", "")

	rec := s.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "kartela_http_request_duration_seconds") {
		t.Error("request histogram not exported")
	}
}
