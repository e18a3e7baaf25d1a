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

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, description, icon, sort_order, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Description, &c.Icon,
		&c.Order, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by sort_order, then name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID returns a category by its slug ID.
func (s *CategoryStore) FindByID(ctx context.Context, id string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %q: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// Create inserts a new category. An existing ID yields ErrDuplicateID.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	if err := catalog.PrepareCategory(c); err != nil {
		return err
	}
	now := time.Now()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, description, icon, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Description, c.Icon, c.Order, now,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("category %q: %w", c.ID, catalog.ErrDuplicateID)
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update modifies an existing category. The ID is never changed.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		return fmt.Errorf("update category: %w", catalog.ErrNotFound)
	}
	if err := catalog.PrepareCategory(c); err != nil {
		return err
	}
	err := s.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $1, description = $2, icon = $3, sort_order = $4, updated_at = $5
		WHERE id = $6
		RETURNING created_at, updated_at`,
		c.Name, c.Description, c.Icon, c.Order, time.Now(), c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("category %q: %w", c.ID, catalog.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category. Palettes referencing it are left in place.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "categories", "category", id)
}

// Exists reports whether a category with the given ID exists.
func (s *CategoryStore) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, s.db, "categories", id)
}

// deleteByID removes one row by text primary key and maps a miss to ErrNotFound.
func deleteByID(ctx context.Context, db *sql.DB, table, noun, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", noun, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", noun, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", noun, id, catalog.ErrNotFound)
	}
	return nil
}

func existsByID(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, table, id string) (bool, error) {
	var ok bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check %s exists: %w", table, err)
	}
	return ok, nil
}
