// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kartela/internal/catalog"
	"kartela/internal/models"
	"kartela/internal/validation"
	"kartela/internal/webhook"
)

const (
	msgPaletteNotFound   = "Kartela bulunamadı"
	msgPaletteCreated    = "Kartela başarıyla oluşturuldu"
	msgPaletteUpdated    = "Kartela başarıyla güncellendi"
	msgPaletteDeleted    = "Kartela başarıyla silindi"
	msgWebhookTested     = "Webhook test edildi"
	msgWebhookMissing    = "Webhook yapılandırılmamış"
	msgWebhookOff        = "Webhook devre dışı"
	msgWebhookCallFailed = "Webhook çağrısı başarısız"
)

type paletteRequest struct {
	ID                 string                `json:"id" validate:"omitempty,max=100"`
	Name               *string               `json:"name" validate:"omitempty,max=200"`
	Description        *string               `json:"description" validate:"omitempty,max=2000"`
	CategoryID         *string               `json:"categoryId" validate:"omitempty,max=100"`
	BrandID            *string               `json:"brandId" validate:"omitempty,max=100"`
	Items              *[]models.Item        `json:"items"`
	Webhook            *models.WebhookConfig `json:"webhook"`
	PhotoUploadEnabled *bool                 `json:"photoUploadEnabled"`
	ProductName        *string               `json:"productName" validate:"omitempty,max=200"`
	ProductImage       *string               `json:"productImage" validate:"omitempty,max=2048"`
}

// webhookURLs validates configured endpoint URLs.
type webhookURLs struct {
	TestURL string `json:"testUrl" validate:"omitempty,url"`
	LiveURL string `json:"liveUrl" validate:"omitempty,url"`
}

func (req paletteRequest) validateWebhook() error {
	if req.Webhook == nil {
		return nil
	}
	return validation.Struct(webhookURLs{TestURL: req.Webhook.TestURL, LiveURL: req.Webhook.LiveURL})
}

func (req paletteRequest) apply(p *models.Palette) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.CategoryID != nil {
		p.CategoryID = *req.CategoryID
	}
	if req.BrandID != nil {
		p.BrandID = *req.BrandID
	}
	if req.Items != nil {
		p.Items = *req.Items
	}
	if req.Webhook != nil {
		p.Webhook = *req.Webhook
	}
	if req.PhotoUploadEnabled != nil {
		p.PhotoUploadEnabled = *req.PhotoUploadEnabled
	}
	if req.ProductName != nil {
		p.ProductName = *req.ProductName
	}
	if req.ProductImage != nil {
		p.ProductImage = *req.ProductImage
	}
}

// ListPalettes handles GET /api/palettes, optionally filtered by
// ?categoryId= and ?brandId=.
func (h *Catalog) ListPalettes(w http.ResponseWriter, r *http.Request) {
	f := catalog.PaletteFilter{
		CategoryID: r.URL.Query().Get("categoryId"),
		BrandID:    r.URL.Query().Get("brandId"),
	}
	filtered := f.CategoryID != "" || f.BrandID != ""
	h.serveCached(w, r, cacheKey(r, "categoryId", "brandId"), msgPaletteNotFound, func(ctx context.Context) (any, error) {
		ps, err := h.store.ListPalettes(ctx, f)
		if err != nil {
			return nil, err
		}
		if filtered && len(ps) == 0 {
			return uncached{ps}, nil
		}
		return ps, nil
	})
}

// GetPalette handles GET /api/palettes/{id}.
func (h *Catalog) GetPalette(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.serveCached(w, r, cacheKey(r), msgPaletteNotFound, func(ctx context.Context) (any, error) {
		return h.store.GetPalette(ctx, id)
	})
}

// CreatePalette handles POST /api/palettes. Photo upload defaults to
// enabled and a missing webhook block gets the configured default test URL.
func (h *Catalog) CreatePalette(w http.ResponseWriter, r *http.Request) {
	var req paletteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validateWebhook(); err != nil {
		writeValidation(w, err)
		return
	}

	p := &models.Palette{
		ID:                 req.ID,
		Webhook:            models.DefaultWebhookConfig(),
		PhotoUploadEnabled: true,
	}
	p.Webhook.TestURL = h.defaultWebhookURL
	req.apply(p)

	if err := h.store.CreatePalette(r.Context(), p); err != nil {
		writeStoreError(w, r, err, msgPaletteNotFound)
		return
	}
	h.invalidate(r.Context())
	h.notifier.Dispatch(r.Context(), webhook.ActionCreated, *p)

	slog.Info("palette created", "id", p.ID, "items", len(p.Items))
	writeJSON(w, http.StatusCreated, map[string]any{"message": msgPaletteCreated, "palette": p})
}

// UpdatePalette handles PUT /api/palettes/{id}.
func (h *Catalog) UpdatePalette(w http.ResponseWriter, r *http.Request) {
	var req paletteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validateWebhook(); err != nil {
		writeValidation(w, err)
		return
	}

	p, err := h.store.GetPalette(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, msgPaletteNotFound)
		return
	}
	req.apply(p)
	if err := h.store.UpdatePalette(r.Context(), p); err != nil {
		writeStoreError(w, r, err, msgPaletteNotFound)
		return
	}
	h.invalidate(r.Context())
	h.notifier.Dispatch(r.Context(), webhook.ActionUpdated, *p)

	writeJSON(w, http.StatusOK, map[string]any{"message": msgPaletteUpdated, "palette": p})
}

// DeletePalette handles DELETE /api/palettes/{id}. The deletion is
// announced with the palette as it was before removal.
func (h *Catalog) DeletePalette(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.store.GetPalette(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, msgPaletteNotFound)
		return
	}
	if err := h.store.DeletePalette(r.Context(), id); err != nil {
		writeStoreError(w, r, err, msgPaletteNotFound)
		return
	}
	h.invalidate(r.Context())
	h.notifier.Dispatch(r.Context(), webhook.ActionDeleted, *p)

	slog.Info("palette deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": msgPaletteDeleted})
}

// TestWebhook handles POST /api/palettes/{id}/test-webhook. It sends an
// "updated" notification synchronously and reports the outcome.
func (h *Catalog) TestWebhook(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetPalette(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, msgPaletteNotFound)
		return
	}

	err = h.notifier.Notify(r.Context(), webhook.ActionUpdated, p)
	var missing *models.WebhookURLMissingError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": msgWebhookTested})
	case errors.Is(err, models.ErrWebhookDisabled):
		writeError(w, http.StatusBadRequest, msgWebhookOff)
	case errors.As(err, &missing):
		writeError(w, http.StatusBadRequest, msgWebhookMissing)
	default:
		slog.Warn("webhook test failed", "palette", p.ID, "error", err)
		writeJSON(w, http.StatusBadGateway, errorBody{
			Message: msgWebhookCallFailed,
			Details: map[string]string{"webhook": err.Error()},
		})
	}
}

// --- Settings ---

const msgSettingsUpdated = "Ayarlar başarıyla güncellendi"

type whatsAppRequest struct {
	Enabled        bool   `json:"enabled"`
	PhoneNumber    string `json:"phoneNumber" validate:"omitempty,max=32"`
	DefaultMessage string `json:"defaultMessage" validate:"omitempty,max=1000"`
}

// GetWhatsAppSettings handles GET /api/settings/whatsapp.
func (h *Catalog) GetWhatsAppSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.GetWhatsAppSettings(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateWhatsAppSettings handles PUT /api/settings/whatsapp.
func (h *Catalog) UpdateWhatsAppSettings(w http.ResponseWriter, r *http.Request) {
	var req whatsAppRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s := models.WhatsAppSettings{
		Enabled:        req.Enabled,
		PhoneNumber:    req.PhoneNumber,
		DefaultMessage: req.DefaultMessage,
	}
	s.Normalize()
	if s.Enabled && s.PhoneNumber == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Message: msgValidation,
			Details: map[string]string{"phoneNumber": "phoneNumber is required when enabled"},
		})
		return
	}
	if err := h.store.UpdateWhatsAppSettings(r.Context(), s); err != nil {
		writeInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": msgSettingsUpdated, "settings": s})
}
