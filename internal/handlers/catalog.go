// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the Kartela API.
// Handlers are grouped by concern (catalog, auth, media, preview) and
// receive their dependencies through the handler struct.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"kartela/internal/cache"
	"kartela/internal/catalog"
	"kartela/internal/models"
	"kartela/internal/webhook"
)

// Catalog groups the category, brand, palette and settings handlers.
type Catalog struct {
	store             catalog.Store
	cache             *cache.ResponseCache
	notifier          *webhook.Notifier
	defaultWebhookURL string
}

// NewCatalog creates the catalog handler group. responses may be nil when
// Valkey is not configured. defaultWebhookURL prefills the test URL of new
// palettes that arrive without a webhook block.
func NewCatalog(store catalog.Store, responses *cache.ResponseCache, notifier *webhook.Notifier, defaultWebhookURL string) *Catalog {
	return &Catalog{
		store:             store,
		cache:             responses,
		notifier:          notifier,
		defaultWebhookURL: defaultWebhookURL,
	}
}

// uncached wraps a load result that is served but not stored, such as a
// filtered list that matched nothing.
type uncached struct{ v any }

// cacheKey builds the response cache key from the path and only the named
// query parameters, so unrelated query strings share one entry.
func cacheKey(r *http.Request, params ...string) string {
	q := url.Values{}
	for _, p := range params {
		if v := r.URL.Query().Get(p); v != "" {
			q.Set(p, v)
		}
	}
	if len(q) == 0 {
		return r.URL.Path
	}
	return r.URL.Path + "?" + q.Encode()
}

// serveCached answers a public GET from the response cache, falling back to
// load and storing its encoded result.
func (h *Catalog) serveCached(w http.ResponseWriter, r *http.Request, key, notFound string, load func(ctx context.Context) (any, error)) {
	cached, gen, ok := h.cache.Get(r.Context(), key)
	if ok {
		w.Header().Set("X-Cache", "HIT")
		writeRaw(w, http.StatusOK, cached)
		return
	}

	v, err := load(r.Context())
	if err != nil {
		writeStoreError(w, r, err, notFound)
		return
	}
	store := true
	if u, isUncached := v.(uncached); isUncached {
		v, store = u.v, false
	}
	body, err := json.Marshal(v)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if store {
		h.cache.Set(r.Context(), key, gen, body)
	}
	w.Header().Set("X-Cache", "MISS")
	writeRaw(w, http.StatusOK, body)
}

// invalidate drops every cached catalog response after a write.
func (h *Catalog) invalidate(ctx context.Context) {
	h.cache.InvalidateAll(ctx)
}

// --- Categories ---

const (
	msgCategoryNotFound = "Kategori bulunamadı"
	msgCategoryCreated  = "Kategori başarıyla oluşturuldu"
	msgCategoryUpdated  = "Kategori başarıyla güncellendi"
	msgCategoryDeleted  = "Kategori başarıyla silindi"
)

type categoryRequest struct {
	ID          string  `json:"id" validate:"omitempty,max=100"`
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Icon        *string `json:"icon" validate:"omitempty,max=32"`
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
}

func (req categoryRequest) apply(c *models.Category) {
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Icon != nil {
		c.Icon = *req.Icon
	}
	if req.Order != nil {
		c.Order = *req.Order
	}
}

// ListCategories handles GET /api/categories.
func (h *Catalog) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cacheKey(r), msgCategoryNotFound, func(ctx context.Context) (any, error) {
		return h.store.ListCategories(ctx)
	})
}

// GetCategory handles GET /api/categories/{id}.
func (h *Catalog) GetCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.serveCached(w, r, cacheKey(r), msgCategoryNotFound, func(ctx context.Context) (any, error) {
		return h.store.GetCategory(ctx, id)
	})
}

// CreateCategory handles POST /api/categories.
func (h *Catalog) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := &models.Category{ID: req.ID}
	req.apply(c)
	if err := h.store.CreateCategory(r.Context(), c); err != nil {
		writeStoreError(w, r, err, msgCategoryNotFound)
		return
	}
	h.invalidate(r.Context())

	slog.Info("category created", "id", c.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"message": msgCategoryCreated, "category": c})
}

// UpdateCategory handles PUT /api/categories/{id}. Omitted fields keep
// their stored values.
func (h *Catalog) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.store.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, msgCategoryNotFound)
		return
	}
	req.apply(c)
	if err := h.store.UpdateCategory(r.Context(), c); err != nil {
		writeStoreError(w, r, err, msgCategoryNotFound)
		return
	}
	h.invalidate(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{"message": msgCategoryUpdated, "category": c})
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (h *Catalog) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		writeStoreError(w, r, err, msgCategoryNotFound)
		return
	}
	h.invalidate(r.Context())

	slog.Info("category deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": msgCategoryDeleted})
}

// --- Brands ---

const (
	msgBrandNotFound = "Marka bulunamadı"
	msgBrandCreated  = "Marka başarıyla oluşturuldu"
	msgBrandUpdated  = "Marka başarıyla güncellendi"
	msgBrandDeleted  = "Marka başarıyla silindi"
)

type brandRequest struct {
	ID          string  `json:"id" validate:"omitempty,max=100"`
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Logo        *string `json:"logo" validate:"omitempty,max=2048"`
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
}

func (req brandRequest) apply(b *models.Brand) {
	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Logo != nil {
		b.Logo = *req.Logo
	}
	if req.Order != nil {
		b.Order = *req.Order
	}
}

// ListBrands handles GET /api/brands.
func (h *Catalog) ListBrands(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cacheKey(r), msgBrandNotFound, func(ctx context.Context) (any, error) {
		return h.store.ListBrands(ctx)
	})
}

// GetBrand handles GET /api/brands/{id}.
func (h *Catalog) GetBrand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.serveCached(w, r, cacheKey(r), msgBrandNotFound, func(ctx context.Context) (any, error) {
		return h.store.GetBrand(ctx, id)
	})
}

// CreateBrand handles POST /api/brands.
func (h *Catalog) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req brandRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b := &models.Brand{ID: req.ID}
	req.apply(b)
	if err := h.store.CreateBrand(r.Context(), b); err != nil {
		writeStoreError(w, r, err, msgBrandNotFound)
		return
	}
	h.invalidate(r.Context())

	slog.Info("brand created", "id", b.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"message": msgBrandCreated, "brand": b})
}

// UpdateBrand handles PUT /api/brands/{id}.
func (h *Catalog) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var req brandRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := h.store.GetBrand(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, err, msgBrandNotFound)
		return
	}
	req.apply(b)
	if err := h.store.UpdateBrand(r.Context(), b); err != nil {
		writeStoreError(w, r, err, msgBrandNotFound)
		return
	}
	h.invalidate(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{"message": msgBrandUpdated, "brand": b})
}

// DeleteBrand handles DELETE /api/brands/{id}.
func (h *Catalog) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteBrand(r.Context(), id); err != nil {
		writeStoreError(w, r, err, msgBrandNotFound)
		return
	}
	h.invalidate(r.Context())

	slog.Info("brand deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": msgBrandDeleted})
}
