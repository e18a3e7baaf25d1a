// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog defines the persistence contract shared by the Postgres
// store and the key-value store, plus the entity checks both run before a
// write.
package catalog

import (
	"context"
	"errors"

	"kartela/internal/models"
)

var (
	// ErrNotFound is returned when no entity has the requested ID.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when creating an entity whose ID is taken.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrInvalidReference is returned when a palette points at a category or
	// brand that does not exist.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrInvalid wraps entity validation failures.
	ErrInvalid = errors.New("invalid entity")
)

// PaletteFilter narrows ListPalettes. Empty fields match everything.
type PaletteFilter struct {
	CategoryID string
	BrandID    string
}

// Matches reports whether p passes the filter.
func (f PaletteFilter) Matches(p *models.Palette) bool {
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.BrandID != "" && p.BrandID != f.BrandID {
		return false
	}
	return true
}

// Store is the catalog persistence contract. Create rejects an existing ID
// with ErrDuplicateID and leaves state untouched. Update and Delete return
// ErrNotFound for unknown IDs. Update never changes an ID.
type Store interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id string) error

	ListBrands(ctx context.Context) ([]models.Brand, error)
	GetBrand(ctx context.Context, id string) (*models.Brand, error)
	CreateBrand(ctx context.Context, b *models.Brand) error
	UpdateBrand(ctx context.Context, b *models.Brand) error
	DeleteBrand(ctx context.Context, id string) error

	ListPalettes(ctx context.Context, f PaletteFilter) ([]models.Palette, error)
	GetPalette(ctx context.Context, id string) (*models.Palette, error)
	CreatePalette(ctx context.Context, p *models.Palette) error
	UpdatePalette(ctx context.Context, p *models.Palette) error
	DeletePalette(ctx context.Context, id string) error

	// FindPaletteByItem returns the oldest palette containing an item with
	// the given ID.
	FindPaletteByItem(ctx context.Context, itemID string) (*models.Palette, error)

	GetWhatsAppSettings(ctx context.Context) (models.WhatsAppSettings, error)
	UpdateWhatsAppSettings(ctx context.Context, s models.WhatsAppSettings) error
}
