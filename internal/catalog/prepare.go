// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"fmt"
	"slices"
	"strings"

	"kartela/internal/models"
	"kartela/internal/slug"
)

// PrepareCategory trims fields, derives a missing ID from the name and fills
// defaults. It returns an error wrapping ErrInvalid.
func PrepareCategory(c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	if c.Name == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	id, err := prepareID(c.ID, c.Name)
	if err != nil {
		return err
	}
	c.ID = id
	if strings.TrimSpace(c.Icon) == "" {
		c.Icon = models.DefaultCategoryIcon
	}
	return nil
}

// PrepareBrand trims fields and derives a missing ID from the name.
func PrepareBrand(b *models.Brand) error {
	b.Name = strings.TrimSpace(b.Name)
	b.Description = strings.TrimSpace(b.Description)
	b.Logo = strings.TrimSpace(b.Logo)
	if b.Name == "" {
		return fmt.Errorf("%w: brand name is required", ErrInvalid)
	}
	id, err := prepareID(b.ID, b.Name)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// PreparePalette validates items, normalizes colours and the webhook, and
// derives a missing ID. Category and brand existence is checked by the store.
func PreparePalette(p *models.Palette) error {
	p.Name = strings.TrimSpace(p.Name)
	p.CategoryID = strings.TrimSpace(p.CategoryID)
	p.BrandID = strings.TrimSpace(p.BrandID)
	if p.Name == "" {
		return fmt.Errorf("%w: palette name is required", ErrInvalid)
	}
	if p.CategoryID == "" {
		return fmt.Errorf("%w: palette categoryId is required", ErrInvalid)
	}
	id, err := prepareID(p.ID, p.Name)
	if err != nil {
		return err
	}
	p.ID = id
	if err := p.NormalizeItems(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	p.Webhook.Normalize()
	return nil
}

func prepareID(id, name string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = slug.Generate(name)
	}
	if id == "" {
		return "", fmt.Errorf("%w: cannot derive an id from %q", ErrInvalid, name)
	}
	return id, nil
}

// SortCategories orders categories by Order, then by name.
func SortCategories(cs []models.Category) {
	slices.SortStableFunc(cs, func(a, b models.Category) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Name, b.Name)
	})
}

// SortBrands orders brands by Order, then by name.
func SortBrands(bs []models.Brand) {
	slices.SortStableFunc(bs, func(a, b models.Brand) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Name, b.Name)
	})
}

// SortPalettesNewestFirst orders palettes by creation time, newest first.
func SortPalettesNewestFirst(ps []models.Palette) {
	slices.SortStableFunc(ps, func(a, b models.Palette) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
