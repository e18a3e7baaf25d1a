// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kartela/internal/catalog"
	"kartela/internal/models"
)

// BrandStore manages paint brands in the database.
type BrandStore struct {
	db *sql.DB
}

// NewBrandStore returns a new BrandStore.
func NewBrandStore(db *sql.DB) *BrandStore {
	return &BrandStore{db: db}
}

const brandColumns = `id, name, description, logo, sort_order, created_at, updated_at`

func scanBrand(scanner interface{ Scan(...any) error }) (*models.Brand, error) {
	var b models.Brand
	err := scanner.Scan(
		&b.ID, &b.Name, &b.Description, &b.Logo,
		&b.Order, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns all brands ordered by sort_order, then name.
func (s *BrandStore) List(ctx context.Context) ([]models.Brand, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+brandColumns+` FROM brands ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	items := []models.Brand{}
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

// FindByID returns a brand by ID.
func (s *BrandStore) FindByID(ctx context.Context, id string) (*models.Brand, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id)
	b, err := scanBrand(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("brand %q: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find brand: %w", err)
	}
	return b, nil
}

// Create inserts a new brand. An existing ID yields ErrDuplicateID.
func (s *BrandStore) Create(ctx context.Context, b *models.Brand) error {
	if err := catalog.PrepareBrand(b); err != nil {
		return err
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO brands (id, name, description, logo, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at, updated_at`,
		b.ID, b.Name, b.Description, b.Logo, b.Order, time.Now(),
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("brand %q: %w", b.ID, catalog.ErrDuplicateID)
	}
	if err != nil {
		return fmt.Errorf("create brand: %w", err)
	}
	return nil
}

// Update modifies an existing brand.
func (s *BrandStore) Update(ctx context.Context, b *models.Brand) error {
	if b.ID == "" {
		return fmt.Errorf("update brand: %w", catalog.ErrNotFound)
	}
	if err := catalog.PrepareBrand(b); err != nil {
		return err
	}
	err := s.db.QueryRowContext(ctx, `
		UPDATE brands
		SET name = $1, description = $2, logo = $3, sort_order = $4, updated_at = $5
		WHERE id = $6
		RETURNING created_at, updated_at`,
		b.Name, b.Description, b.Logo, b.Order, time.Now(), b.ID,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("brand %q: %w", b.ID, catalog.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	return nil
}

// Delete removes a brand.
func (s *BrandStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "brands", "brand", id)
}
