// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"

	"kartela/internal/models"
	"kartela/internal/webhook"
)

// hookRecorder is a fake webhook endpoint collecting notification payloads.
type hookRecorder struct {
	mu       sync.Mutex
	payloads []webhook.Payload
	status   int
}

func newHookServer(t *testing.T, status int) (*httptest.Server, *hookRecorder) {
	t.Helper()
	rec := &hookRecorder{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhook.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode notification: %v", err)
		}
		rec.mu.Lock()
		rec.payloads = append(rec.payloads, p)
		rec.mu.Unlock()
		w.WriteHeader(rec.status)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func (h *hookRecorder) actions() []webhook.Action {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]webhook.Action, len(h.payloads))
	for i, p := range h.payloads {
		out[i] = p.Action
	}
	return out
}

func TestListPalettes_Filters(t *testing.T) {
	tests := []struct {
		query   string
		wantIDs []string
	}{
		{"", []string{"mob-ahsap", "dis-klasik", "ic-pastel", "ic-modern"}},
		{"?categoryId=ic-cephe", []string{"ic-pastel", "ic-modern"}},
		{"?categoryId=mobilya", []string{"mob-ahsap"}},
		{"?brandId=dufa", nil},
	}

	env := newTestEnv(t)
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.Catalog.ListPalettes(rec, httptest.NewRequest(http.MethodGet, "/api/palettes"+tt.query, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			got := decodeBody[[]models.Palette](t, rec)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d palettes, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("palettes[%d] = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestCreatePalette_Defaults(t *testing.T) {
	env := newTestEnv(t)
	h := NewCatalog(env.Store, nil, env.Notifier, "https://hooks.example.com/kartela")

	rec := httptest.NewRecorder()
	h.CreatePalette(rec, jsonRequest(t, http.MethodPost, "/api/palettes", map[string]any{
		"name":       "Gece Tonları",
		"categoryId": "ic-cephe",
		"items": []map[string]any{
			{"type": "color", "data": map[string]any{"id": "g1", "name": "Gece Mavisi", "code": "GM-1", "hex": "#1B2A4A"}},
		},
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; body = %s", rec.Code, rec.Body.String())
	}
	p := decodeBody[struct {
		Message string         `json:"message"`
		Palette models.Palette `json:"palette"`
	}](t, rec)
	if p.Message != msgPaletteCreated {
		t.Errorf("message = %q", p.Message)
	}
	if p.Palette.ID != "gece-tonlari" {
		t.Errorf("id = %q, want gece-tonlari", p.Palette.ID)
	}
	if !p.Palette.PhotoUploadEnabled {
		t.Error("photoUploadEnabled should default to true")
	}
	if p.Palette.Webhook.TestURL != "https://hooks.example.com/kartela" || p.Palette.Webhook.Enabled {
		t.Errorf("webhook = %+v, want disabled with default test URL", p.Palette.Webhook)
	}
	if len(p.Palette.Items) != 1 || p.Palette.Items[0].Color.RGB != (models.RGB{R: 27, G: 42, B: 74}) {
		t.Errorf("items = %+v, want one colour with RGB derived from hex", p.Palette.Items)
	}
}

func TestCreatePalette_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unknown category",
			body:       map[string]any{"name": "X", "categoryId": "yok"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgInvalidReference,
		},
		{
			name:       "unknown brand",
			body:       map[string]any{"name": "X", "categoryId": "ic-cephe", "brandId": "yok"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgInvalidReference,
		},
		{
			name:       "duplicate id",
			body:       map[string]any{"id": "ic-modern", "name": "X", "categoryId": "ic-cephe"},
			wantStatus: http.StatusConflict,
			wantMsg:    msgDuplicateID,
		},
		{
			name:       "bad webhook url",
			body:       map[string]any{"name": "X", "categoryId": "ic-cephe", "webhook": map[string]any{"testUrl": "not a url"}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgValidation,
		},
		{
			name: "duplicate item ids",
			body: map[string]any{"name": "X", "categoryId": "ic-cephe", "items": []map[string]any{
				{"type": "color", "data": map[string]any{"id": "a", "name": "A", "hex": "#000000"}},
				{"type": "color", "data": map[string]any{"id": "a", "name": "B", "hex": "#FFFFFF"}},
			}},
			wantStatus: http.StatusBadRequest,
			wantMsg:    msgValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := httptest.NewRecorder()
			env.Catalog.CreatePalette(rec, jsonRequest(t, http.MethodPost, "/api/palettes", tt.body))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if msg := messageOf(t, rec); msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestPaletteLifecycle_Notifications(t *testing.T) {
	env := newTestEnv(t)
	srv, hook := newHookServer(t, http.StatusOK)

	rec := httptest.NewRecorder()
	env.Catalog.CreatePalette(rec, jsonRequest(t, http.MethodPost, "/api/palettes", map[string]any{
		"id":         "bildirim",
		"name":       "Bildirim",
		"categoryId": "ic-cephe",
		"webhook":    map[string]any{"testUrl": srv.URL, "mode": "test", "enabled": true},
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body = %s", rec.Code, rec.Body.String())
	}

	req := withChiURLParam(jsonRequest(t, http.MethodPut, "/api/palettes/bildirim", map[string]any{"photoUploadEnabled": false}), "id", "bildirim")
	rec = httptest.NewRecorder()
	env.Catalog.UpdatePalette(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	got, _ := env.Store.GetPalette(context.Background(), "bildirim")
	if got.PhotoUploadEnabled || !got.Webhook.Enabled {
		t.Errorf("after update = %+v", got)
	}

	req = withChiURLParam(httptest.NewRequest(http.MethodDelete, "/api/palettes/bildirim", nil), "id", "bildirim")
	rec = httptest.NewRecorder()
	env.Catalog.DeletePalette(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	env.Notifier.Wait()
	actions := hook.actions()
	if len(actions) != 3 {
		t.Fatalf("got %d notifications (%v), want 3", len(actions), actions)
	}
	seen := map[webhook.Action]bool{}
	for _, a := range actions {
		seen[a] = true
	}
	for _, want := range []webhook.Action{webhook.ActionCreated, webhook.ActionUpdated, webhook.ActionDeleted} {
		if !seen[want] {
			t.Errorf("missing %q notification", want)
		}
	}
	for _, p := range hook.payloads {
		if p.Palette.ID != "bildirim" || p.Palette.CategoryID != "ic-cephe" {
			t.Errorf("payload palette = %+v", p.Palette)
		}
	}
}

func TestPaletteLifecycle_DisabledWebhookMakesNoCalls(t *testing.T) {
	env := newTestEnv(t)
	srv, hook := newHookServer(t, http.StatusOK)

	rec := httptest.NewRecorder()
	env.Catalog.CreatePalette(rec, jsonRequest(t, http.MethodPost, "/api/palettes", map[string]any{
		"id":         "sessiz",
		"name":       "Sessiz",
		"categoryId": "ic-cephe",
		"webhook":    map[string]any{"testUrl": srv.URL, "enabled": false},
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	env.Notifier.Wait()
	if n := len(hook.actions()); n != 0 {
		t.Errorf("got %d notifications, want 0", n)
	}
}

func TestPaletteUpdate_FailingWebhookDoesNotFailWrite(t *testing.T) {
	env := newTestEnv(t)
	srv, _ := newHookServer(t, http.StatusInternalServerError)

	p, _ := env.Store.GetPalette(context.Background(), "ic-modern")
	p.Webhook = models.WebhookConfig{TestURL: srv.URL, Mode: models.WebhookModeTest, Enabled: true}
	if err := env.Store.UpdatePalette(context.Background(), p); err != nil {
		t.Fatalf("UpdatePalette: %v", err)
	}

	req := withChiURLParam(jsonRequest(t, http.MethodPut, "/api/palettes/ic-modern", map[string]any{"name": "Modern 2"}), "id", "ic-modern")
	rec := httptest.NewRecorder()
	env.Catalog.UpdatePalette(rec, req)
	env.Notifier.Wait()

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestTestWebhook(t *testing.T) {
	okSrv, okHook := newHookServer(t, http.StatusOK)
	badSrv, _ := newHookServer(t, http.StatusBadGateway)

	tests := []struct {
		name       string
		id         string
		webhook    *models.WebhookConfig
		wantStatus int
		wantMsg    string
	}{
		{"unknown palette", "yok", nil, http.StatusNotFound, msgPaletteNotFound},
		{"disabled", "ic-modern", &models.WebhookConfig{TestURL: okSrv.URL}, http.StatusBadRequest, msgWebhookOff},
		{"no url for mode", "ic-modern", &models.WebhookConfig{TestURL: okSrv.URL, Mode: models.WebhookModeLive, Enabled: true}, http.StatusBadRequest, msgWebhookMissing},
		{"endpoint fails", "ic-modern", &models.WebhookConfig{TestURL: badSrv.URL, Enabled: true}, http.StatusBadGateway, msgWebhookCallFailed},
		{"success", "ic-modern", &models.WebhookConfig{TestURL: okSrv.URL, Enabled: true}, http.StatusOK, msgWebhookTested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.webhook != nil {
				p, _ := env.Store.GetPalette(context.Background(), tt.id)
				p.Webhook = *tt.webhook
				if err := env.Store.UpdatePalette(context.Background(), p); err != nil {
					t.Fatalf("UpdatePalette: %v", err)
				}
			}

			req := withChiURLParam(httptest.NewRequest(http.MethodPost, "/api/palettes/"+tt.id+"/test-webhook", nil), "id", tt.id)
			rec := httptest.NewRecorder()
			env.Catalog.TestWebhook(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if msg := messageOf(t, rec); msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}

	if got := okHook.actions(); len(got) != 1 || got[0] != webhook.ActionUpdated {
		t.Errorf("success endpoint received %v, want one %q", got, webhook.ActionUpdated)
	}
}

func TestWhatsAppSettingsAndContact(t *testing.T) {
	env := newTestEnv(t)

	link := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		env.Catalog.WhatsAppLink(rec, httptest.NewRequest(http.MethodGet, "/api/whatsapp/link", nil))
		return rec
	}
	if rec := link(); rec.Code != http.StatusNotFound {
		t.Fatalf("link before configuration status = %d, want 404", rec.Code)
	}

	rec := httptest.NewRecorder()
	env.Catalog.UpdateWhatsAppSettings(rec, jsonRequest(t, http.MethodPut, "/api/settings/whatsapp", map[string]any{
		"enabled":     true,
		"phoneNumber": "",
	}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("enabled without phone status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	env.Catalog.UpdateWhatsAppSettings(rec, jsonRequest(t, http.MethodPut, "/api/settings/whatsapp", map[string]any{
		"enabled":        true,
		"phoneNumber":    "+90 (555) 123 45 67",
		"defaultMessage": "Merhaba",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d; body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	env.Catalog.GetWhatsAppSettings(rec, httptest.NewRequest(http.MethodGet, "/api/settings/whatsapp", nil))
	s := decodeBody[models.WhatsAppSettings](t, rec)
	if s.PhoneNumber != "905551234567" {
		t.Errorf("phone = %q, want digits only", s.PhoneNumber)
	}

	rec = link()
	if rec.Code != http.StatusOK {
		t.Fatalf("link status = %d", rec.Code)
	}
	if got := decodeBody[map[string]string](t, rec)["link"]; got != "https://wa.me/905551234567?text=Merhaba" {
		t.Errorf("link = %q", got)
	}

	rec = httptest.NewRecorder()
	env.Catalog.WhatsAppQR(rec, httptest.NewRequest(http.MethodGet, "/api/whatsapp/qr.png?size=128", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("qr status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if _, err := png.Decode(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Errorf("qr is not a PNG: %v", err)
	}
}

func TestTestWebhook_LegacyURLField(t *testing.T) {
	env := newTestEnv(t)
	srv, hook := newHookServer(t, http.StatusOK)

	req := withChiURLParam(httptest.NewRequest(http.MethodPut, "/api/palettes/ic-pastel",
		strings.NewReader(`{"webhook":{"url":"`+srv.URL+`"}}`)), "id", "ic-pastel")
	rec := httptest.NewRecorder()
	env.Catalog.UpdatePalette(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d; body = %s", rec.Code, rec.Body.String())
	}
	env.Notifier.Wait()

	req = withChiURLParam(httptest.NewRequest(http.MethodPost, "/api/palettes/ic-pastel/test-webhook", nil), "id", "ic-pastel")
	rec = httptest.NewRecorder()
	env.Catalog.TestWebhook(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("test-webhook status = %d; body = %s", rec.Code, rec.Body.String())
	}
	// One notification from the update, one from the test.
	if n := len(hook.actions()); n != 2 {
		t.Errorf("got %d notifications, want 2", n)
	}
}
