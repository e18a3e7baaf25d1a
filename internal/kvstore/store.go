// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"kartela/internal/catalog"
	"kartela/internal/models"
)

// Store implements catalog.Store. Every write loads the whole collection,
// modifies it and writes it back; a mutex serializes writers in-process and
// concurrent processes resolve as last-write-wins.
type Store struct {
	blobs Blobs
	mu    sync.Mutex
	now   func() time.Time
}

var _ catalog.Store = (*Store)(nil)

// New creates a store over the given blobs.
func New(blobs Blobs) *Store {
	return &Store{blobs: blobs, now: time.Now}
}

// Seed writes the defaults for every document that does not exist yet.
// Existing documents are left untouched.
func Seed(ctx context.Context, blobs Blobs, d catalog.Defaults) error {
	docs := []struct {
		key   string
		value any
	}{
		{KeyCategories, d.Categories},
		{KeyBrands, d.Brands},
		{KeyPalettes, d.Palettes},
		{KeyWhatsApp, d.WhatsApp},
	}
	for _, doc := range docs {
		_, err := blobs.Get(ctx, doc.key)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNoBlob) {
			return fmt.Errorf("seed %s: %w", doc.key, err)
		}
		if err := put(ctx, blobs, doc.key, doc.value); err != nil {
			return fmt.Errorf("seed %s: %w", doc.key, err)
		}
		slog.Info("seeded catalog document", "key", doc.key)
	}
	return nil
}

func load[T any](ctx context.Context, blobs Blobs, key string) ([]T, error) {
	raw, err := blobs.Get(ctx, key)
	if errors.Is(err, ErrNoBlob) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func put(ctx context.Context, blobs Blobs, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return blobs.Set(ctx, key, raw)
}

// --- Categories ---

// ListCategories returns all categories ordered by Order, then name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	cs, err := load[models.Category](ctx, s.blobs, KeyCategories)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	catalog.SortCategories(cs)
	return cs, nil
}

// GetCategory returns the category with the given ID.
func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	cs, err := load[models.Category](ctx, s.blobs, KeyCategories)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	for i := range cs {
		if cs[i].ID == id {
			return &cs[i], nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", id, catalog.ErrNotFound)
}

// CreateCategory adds a new category and fills its timestamps.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := catalog.PrepareCategory(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := load[models.Category](ctx, s.blobs, KeyCategories)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	for _, existing := range cs {
		if existing.ID == c.ID {
			return fmt.Errorf("category %q: %w", c.ID, catalog.ErrDuplicateID)
		}
	}
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	cs = append(cs, *c)
	if err := put(ctx, s.blobs, KeyCategories, cs); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// UpdateCategory replaces the category with the same ID.
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		return fmt.Errorf("update category: %w", catalog.ErrNotFound)
	}
	if err := catalog.PrepareCategory(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := load[models.Category](ctx, s.blobs, KeyCategories)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	for i := range cs {
		if cs[i].ID == c.ID {
			c.CreatedAt = cs[i].CreatedAt
			c.UpdatedAt = s.now()
			cs[i] = *c
			if err := put(ctx, s.blobs, KeyCategories, cs); err != nil {
				return fmt.Errorf("update category: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("category %q: %w", c.ID, catalog.ErrNotFound)
}

// DeleteCategory removes a category. Palettes that reference it are kept.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := load[models.Category](ctx, s.blobs, KeyCategories)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	out, removed := removeByID(cs, id, func(c models.Category) string { return c.ID })
	if !removed {
		return fmt.Errorf("category %q: %w", id, catalog.ErrNotFound)
	}
	if err := put(ctx, s.blobs, KeyCategories, out); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// --- Brands ---

// ListBrands returns all brands ordered by Order, then name.
func (s *Store) ListBrands(ctx context.Context) ([]models.Brand, error) {
	bs, err := load[models.Brand](ctx, s.blobs, KeyBrands)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	catalog.SortBrands(bs)
	return bs, nil
}

// GetBrand returns the brand with the given ID.
func (s *Store) GetBrand(ctx context.Context, id string) (*models.Brand, error) {
	bs, err := load[models.Brand](ctx, s.blobs, KeyBrands)
	if err != nil {
		return nil, fmt.Errorf("get brand: %w", err)
	}
	for i := range bs {
		if bs[i].ID == id {
			return &bs[i], nil
		}
	}
	return nil, fmt.Errorf("brand %q: %w", id, catalog.ErrNotFound)
}

// CreateBrand adds a new brand and fills its timestamps.
func (s *Store) CreateBrand(ctx context.Context, b *models.Brand) error {
	if err := catalog.PrepareBrand(b); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bs, err := load[models.Brand](ctx, s.blobs, KeyBrands)
	if err != nil {
		return fmt.Errorf("create brand: %w", err)
	}
	for _, existing := range bs {
		if existing.ID == b.ID {
			return fmt.Errorf("brand %q: %w", b.ID, catalog.ErrDuplicateID)
		}
	}
	b.CreatedAt = s.now()
	b.UpdatedAt = b.CreatedAt
	bs = append(bs, *b)
	if err := put(ctx, s.blobs, KeyBrands, bs); err != nil {
		return fmt.Errorf("create brand: %w", err)
	}
	return nil
}

// UpdateBrand replaces the brand with the same ID.
func (s *Store) UpdateBrand(ctx context.Context, b *models.Brand) error {
	if b.ID == "" {
		return fmt.Errorf("update brand: %w", catalog.ErrNotFound)
	}
	if err := catalog.PrepareBrand(b); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bs, err := load[models.Brand](ctx, s.blobs, KeyBrands)
	if err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	for i := range bs {
		if bs[i].ID == b.ID {
			b.CreatedAt = bs[i].CreatedAt
			b.UpdatedAt = s.now()
			bs[i] = *b
			if err := put(ctx, s.blobs, KeyBrands, bs); err != nil {
				return fmt.Errorf("update brand: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("brand %q: %w", b.ID, catalog.ErrNotFound)
}

// DeleteBrand removes a brand. Palettes keep their brand ID.
func (s *Store) DeleteBrand(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bs, err := load[models.Brand](ctx, s.blobs, KeyBrands)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	out, removed := removeByID(bs, id, func(b models.Brand) string { return b.ID })
	if !removed {
		return fmt.Errorf("brand %q: %w", id, catalog.ErrNotFound)
	}
	if err := put(ctx, s.blobs, KeyBrands, out); err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	return nil
}

// --- Palettes ---

// ListPalettes returns the palettes matching f, newest first.
func (s *Store) ListPalettes(ctx context.Context, f catalog.PaletteFilter) ([]models.Palette, error) {
	ps, err := load[models.Palette](ctx, s.blobs, KeyPalettes)
	if err != nil {
		return nil, fmt.Errorf("list palettes: %w", err)
	}
	out := make([]models.Palette, 0, len(ps))
	for i := range ps {
		if f.Matches(&ps[i]) {
			out = append(out, ps[i])
		}
	}
	catalog.SortPalettesNewestFirst(out)
	return out, nil
}

// GetPalette returns the palette with the given ID.
func (s *Store) GetPalette(ctx context.Context, id string) (*models.Palette, error) {
	ps, err := load[models.Palette](ctx, s.blobs, KeyPalettes)
	if err != nil {
		return nil, fmt.Errorf("get palette: %w", err)
	}
	for i := range ps {
		if ps[i].ID == id {
			return &ps[i], nil
		}
	}
	return nil, fmt.Errorf("palette %q: %w", id, catalog.ErrNotFound)
}

// FindPaletteByItem returns the oldest palette containing the item.
func (s *Store) FindPaletteByItem(ctx context.Context, itemID string) (*models.Palette, error) {
	ps, err := load[models.Palette](ctx, s.blobs, KeyPalettes)
	if err != nil {
		return nil, fmt.Errorf("find palette by item: %w", err)
	}
	var found *models.Palette
	for i := range ps {
		if _, ok := ps[i].FindItem(itemID); !ok {
			continue
		}
		if found == nil || ps[i].CreatedAt.Before(found.CreatedAt) {
			found = &ps[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("palette with item %q: %w", itemID, catalog.ErrNotFound)
	}
	return found, nil
}

// CreatePalette adds a new palette after checking its category and brand.
func (s *Store) CreatePalette(ctx context.Context, p *models.Palette) error {
	if err := catalog.PreparePalette(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkReferences(ctx, p); err != nil {
		return err
	}
	ps, err := load[models.Palette](ctx, s.blobs, KeyPalettes)
	if err != nil {
		return fmt.Errorf("create palette: %w", err)
	}
	for _, existing := range ps {
		if existing.ID == p.ID {
			return fmt.Errorf("palette %q: %w", p.ID, catalog.ErrDuplicateID)
		}
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	ps = append(ps, *p)
	if err := put(ctx, s.blobs, KeyPalettes, ps); err != nil {
		return fmt.Errorf("create palette: %w", err)
	}
	return nil
}

// UpdatePalette replaces the palette with the same ID.
func (s *Store) UpdatePalette(ctx context.Context, p *models.Palette) error {
	if p.ID == "" {
		return fmt.Errorf("update palette: %w", catalog.ErrNotFound)
	}
	if err := catalog.PreparePalette(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := load[models.Palette](ctx, s.blobs, KeyPalettes)
	if err != nil {
		return fmt.Errorf("update palette: %w", err)
	}
	idx := -1
	for i := range ps {
		if ps[i].ID == p.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("palette %q: %w", p.ID, catalog.ErrNotFound)
	}
	if err := s.checkReferences(ctx, p); err != nil {
		return err
	}
	p.CreatedAt = ps[idx].CreatedAt
	p.UpdatedAt = s.now()
	ps[idx] = *p
	if err := put(ctx, s.blobs, KeyPalettes, ps); err != nil {
		return fmt.Errorf("update palette: %w", err)
	}
	return nil
}

// DeletePalette removes a palette.
func (s *Store) DeletePalette(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := load[models.Palette](ctx, s.blobs, KeyPalettes)
	if err != nil {
		return fmt.Errorf("delete palette: %w", err)
	}
	out, removed := removeByID(ps, id, func(p models.Palette) string { return p.ID })
	if !removed {
		return fmt.Errorf("palette %q: %w", id, catalog.ErrNotFound)
	}
	if err := put(ctx, s.blobs, KeyPalettes, out); err != nil {
		return fmt.Errorf("delete palette: %w", err)
	}
	return nil
}

func (s *Store) checkReferences(ctx context.Context, p *models.Palette) error {
	if _, err := s.GetCategory(ctx, p.CategoryID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("category %q: %w", p.CategoryID, catalog.ErrInvalidReference)
		}
		return err
	}
	if p.BrandID == "" {
		return nil
	}
	if _, err := s.GetBrand(ctx, p.BrandID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("brand %q: %w", p.BrandID, catalog.ErrInvalidReference)
		}
		return err
	}
	return nil
}

// --- WhatsApp ---

// GetWhatsAppSettings returns the stored settings, or the defaults when none
// have been saved.
func (s *Store) GetWhatsAppSettings(ctx context.Context) (models.WhatsAppSettings, error) {
	raw, err := s.blobs.Get(ctx, KeyWhatsApp)
	if errors.Is(err, ErrNoBlob) {
		return models.DefaultWhatsAppSettings(), nil
	}
	if err != nil {
		return models.WhatsAppSettings{}, fmt.Errorf("get whatsapp settings: %w", err)
	}
	var w models.WhatsAppSettings
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.WhatsAppSettings{}, fmt.Errorf("decode whatsapp settings: %w", err)
	}
	return w, nil
}

// UpdateWhatsAppSettings normalizes and stores the settings.
func (s *Store) UpdateWhatsAppSettings(ctx context.Context, w models.WhatsAppSettings) error {
	w.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := put(ctx, s.blobs, KeyWhatsApp, w); err != nil {
		return fmt.Errorf("update whatsapp settings: %w", err)
	}
	return nil
}

func removeByID[T any](xs []T, id string, key func(T) string) ([]T, bool) {
	for i := range xs {
		if key(xs[i]) == id {
			return append(xs[:i], xs[i+1:]...), true
		}
	}
	return xs, false
}
