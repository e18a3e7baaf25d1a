// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"kartela/internal/catalog"
	"kartela/internal/models"
)

// PaletteStore manages palettes. Items and webhook configuration are kept
// as JSONB documents on the palette row.
type PaletteStore struct {
	db *sql.DB
}

// NewPaletteStore returns a new PaletteStore.
func NewPaletteStore(db *sql.DB) *PaletteStore {
	return &PaletteStore{db: db}
}

const paletteColumns = `id, name, description, category_id, brand_id, items, webhook,
	photo_upload_enabled, product_name, product_image, created_at, updated_at`

// scanPalette scans a palette row and decodes its JSONB columns.
func scanPalette(scanner interface{ Scan(...any) error }) (*models.Palette, error) {
	var (
		p       models.Palette
		brandID sql.NullString
		items   []byte
		webhook []byte
	)
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Description, &p.CategoryID, &brandID, &items, &webhook,
		&p.PhotoUploadEnabled, &p.ProductName, &p.ProductImage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.BrandID = brandID.String
	if err := json.Unmarshal(items, &p.Items); err != nil {
		return nil, fmt.Errorf("decode palette %s items: %w", p.ID, err)
	}
	if p.Items == nil {
		p.Items = []models.Item{}
	}
	if err := json.Unmarshal(webhook, &p.Webhook); err != nil {
		return nil, fmt.Errorf("decode palette %s webhook: %w", p.ID, err)
	}
	return &p, nil
}

// List returns palettes matching the filter, newest first.
func (s *PaletteStore) List(ctx context.Context, f catalog.PaletteFilter) ([]models.Palette, error) {
	var (
		where []string
		args  []any
	)
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if f.BrandID != "" {
		args = append(args, f.BrandID)
		where = append(where, fmt.Sprintf("brand_id = $%d", len(args)))
	}

	query := `SELECT ` + paletteColumns + ` FROM palettes`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list palettes: %w", err)
	}
	defer rows.Close()

	items := []models.Palette{}
	for rows.Next() {
		p, err := scanPalette(rows)
		if err != nil {
			return nil, fmt.Errorf("scan palette: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID returns a palette by ID.
func (s *PaletteStore) FindByID(ctx context.Context, id string) (*models.Palette, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paletteColumns+` FROM palettes WHERE id = $1`, id)
	p, err := scanPalette(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("palette %q: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find palette: %w", err)
	}
	return p, nil
}

// FindByItem returns the oldest palette whose items contain the given item
// ID. The containment query is served by the GIN index on items.
func (s *PaletteStore) FindByItem(ctx context.Context, itemID string) (*models.Palette, error) {
	probe, err := json.Marshal([]map[string]map[string]string{{"data": {"id": itemID}}})
	if err != nil {
		return nil, fmt.Errorf("encode item probe: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+paletteColumns+`
		FROM palettes
		WHERE items @> $1::jsonb
		ORDER BY created_at ASC, id
		LIMIT 1`, string(probe))
	p, err := scanPalette(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("palette with item %q: %w", itemID, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find palette by item: %w", err)
	}
	return p, nil
}

// Create inserts a palette after checking that its category and brand exist.
func (s *PaletteStore) Create(ctx context.Context, p *models.Palette) error {
	if err := catalog.PreparePalette(p); err != nil {
		return err
	}
	items, webhook, err := encodePaletteDocs(p)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create palette: %w", err)
	}
	defer tx.Rollback()

	if err := checkPaletteRefs(ctx, tx, p); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO palettes (id, name, description, category_id, brand_id, items, webhook,
			photo_upload_enabled, product_name, product_image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.Description, p.CategoryID, nullable(p.BrandID), items, webhook,
		p.PhotoUploadEnabled, p.ProductName, p.ProductImage, time.Now(),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("palette %q: %w", p.ID, catalog.ErrDuplicateID)
	}
	if err != nil {
		return fmt.Errorf("create palette: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create palette commit: %w", err)
	}
	return nil
}

// Update replaces every mutable field of an existing palette.
func (s *PaletteStore) Update(ctx context.Context, p *models.Palette) error {
	if p.ID == "" {
		return fmt.Errorf("update palette: %w", catalog.ErrNotFound)
	}
	if err := catalog.PreparePalette(p); err != nil {
		return err
	}
	items, webhook, err := encodePaletteDocs(p)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update palette: %w", err)
	}
	defer tx.Rollback()

	found, err := existsByID(ctx, tx, "palettes", p.ID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("palette %q: %w", p.ID, catalog.ErrNotFound)
	}
	if err := checkPaletteRefs(ctx, tx, p); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE palettes
		SET name = $1, description = $2, category_id = $3, brand_id = $4, items = $5,
		    webhook = $6, photo_upload_enabled = $7, product_name = $8, product_image = $9,
		    updated_at = $10
		WHERE id = $11
		RETURNING created_at, updated_at`,
		p.Name, p.Description, p.CategoryID, nullable(p.BrandID), items,
		webhook, p.PhotoUploadEnabled, p.ProductName, p.ProductImage,
		time.Now(), p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("palette %q: %w", p.ID, catalog.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update palette: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update palette commit: %w", err)
	}
	return nil
}

// Delete removes a palette.
func (s *PaletteStore) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "palettes", "palette", id)
}

func checkPaletteRefs(ctx context.Context, tx *sql.Tx, p *models.Palette) error {
	ok, err := existsByID(ctx, tx, "categories", p.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("category %q: %w", p.CategoryID, catalog.ErrInvalidReference)
	}
	if p.BrandID == "" {
		return nil
	}
	ok, err = existsByID(ctx, tx, "brands", p.BrandID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("brand %q: %w", p.BrandID, catalog.ErrInvalidReference)
	}
	return nil
}

func encodePaletteDocs(p *models.Palette) (items, webhook string, err error) {
	ib, err := json.Marshal(p.Items)
	if err != nil {
		return "", "", fmt.Errorf("encode palette items: %w", err)
	}
	wb, err := json.Marshal(p.Webhook)
	if err != nil {
		return "", "", fmt.Errorf("encode palette webhook: %w", err)
	}
	return string(ib), string(wb), nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
