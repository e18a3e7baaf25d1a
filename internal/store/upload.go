// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"kartela/internal/models"
)

// UploadStore records metadata for files stored by the upload backend.
type UploadStore struct {
	db *sql.DB
}

// NewUploadStore creates a new UploadStore with the given database connection.
func NewUploadStore(db *sql.DB) *UploadStore {
	return &UploadStore{db: db}
}

// uploadColumns lists the columns selected in upload queries.
const uploadColumns = `id, filename, original_name, content_type, size_bytes,
	storage_key, thumb_key, uploader_id, created_at`

// scanUpload scans an upload row from the result set.
func scanUpload(scanner interface{ Scan(...any) error }) (*models.Upload, error) {
	var u models.Upload
	err := scanner.Scan(
		&u.ID, &u.Filename, &u.OriginalName, &u.ContentType, &u.SizeBytes,
		&u.StorageKey, &u.ThumbKey, &u.UploaderID, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new upload record. The caller assigns the ID so the
// storage key and the row agree.
func (s *UploadStore) Create(ctx context.Context, u *models.Upload) error {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO uploads (id, filename, original_name, content_type, size_bytes,
			storage_key, thumb_key, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+uploadColumns,
		u.ID, u.Filename, u.OriginalName, u.ContentType, u.SizeBytes,
		u.StorageKey, u.ThumbKey, u.UploaderID,
	)
	created, err := scanUpload(row)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	*u = *created
	return nil
}

// FindByID retrieves a single upload record. Returns nil if not found.
func (s *UploadStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Upload, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE id = $1`, id)
	u, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find upload by id: %w", err)
	}
	return u, nil
}

// List returns uploads newest first, with pagination.
func (s *UploadStore) List(ctx context.Context, limit, offset int) ([]models.Upload, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+uploadColumns+`
		FROM uploads
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var items []models.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		items = append(items, *u)
	}
	return items, rows.Err()
}
