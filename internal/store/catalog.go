// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"

	"kartela/internal/catalog"
	"kartela/internal/models"
)

// Catalog combines the per-entity stores into a catalog.Store.
type Catalog struct {
	Categories *CategoryStore
	Brands     *BrandStore
	Palettes   *PaletteStore
	Settings   *SettingStore
}

var _ catalog.Store = (*Catalog)(nil)

// NewCatalog returns a Postgres-backed catalog store.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{
		Categories: NewCategoryStore(db),
		Brands:     NewBrandStore(db),
		Palettes:   NewPaletteStore(db),
		Settings:   NewSettingStore(db),
	}
}

func (c *Catalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	return c.Categories.List(ctx)
}

func (c *Catalog) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return c.Categories.FindByID(ctx, id)
}

func (c *Catalog) CreateCategory(ctx context.Context, cat *models.Category) error {
	return c.Categories.Create(ctx, cat)
}

func (c *Catalog) UpdateCategory(ctx context.Context, cat *models.Category) error {
	return c.Categories.Update(ctx, cat)
}

func (c *Catalog) DeleteCategory(ctx context.Context, id string) error {
	return c.Categories.Delete(ctx, id)
}

func (c *Catalog) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return c.Brands.List(ctx)
}

func (c *Catalog) GetBrand(ctx context.Context, id string) (*models.Brand, error) {
	return c.Brands.FindByID(ctx, id)
}

func (c *Catalog) CreateBrand(ctx context.Context, b *models.Brand) error {
	return c.Brands.Create(ctx, b)
}

func (c *Catalog) UpdateBrand(ctx context.Context, b *models.Brand) error {
	return c.Brands.Update(ctx, b)
}

func (c *Catalog) DeleteBrand(ctx context.Context, id string) error {
	return c.Brands.Delete(ctx, id)
}

func (c *Catalog) ListPalettes(ctx context.Context, f catalog.PaletteFilter) ([]models.Palette, error) {
	return c.Palettes.List(ctx, f)
}

func (c *Catalog) GetPalette(ctx context.Context, id string) (*models.Palette, error) {
	return c.Palettes.FindByID(ctx, id)
}

func (c *Catalog) CreatePalette(ctx context.Context, p *models.Palette) error {
	return c.Palettes.Create(ctx, p)
}

func (c *Catalog) UpdatePalette(ctx context.Context, p *models.Palette) error {
	return c.Palettes.Update(ctx, p)
}

func (c *Catalog) DeletePalette(ctx context.Context, id string) error {
	return c.Palettes.Delete(ctx, id)
}

func (c *Catalog) FindPaletteByItem(ctx context.Context, itemID string) (*models.Palette, error) {
	return c.Palettes.FindByItem(ctx, itemID)
}

func (c *Catalog) GetWhatsAppSettings(ctx context.Context) (models.WhatsAppSettings, error) {
	return c.Settings.WhatsApp(ctx)
}

func (c *Catalog) UpdateWhatsAppSettings(ctx context.Context, w models.WhatsAppSettings) error {
	return c.Settings.SetWhatsApp(ctx, w)
}
