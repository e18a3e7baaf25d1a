// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kartela/internal/models"
)

// SettingStore manages key-value configuration in the database.
type SettingStore struct {
	db *sql.DB
}

// NewSettingStore returns a new SettingStore backed by the given database.
func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

// All returns every setting as a convenience map.
func (s *SettingStore) All(ctx context.Context) (models.Settings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := make(models.Settings)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// SetMany upserts multiple settings in a single transaction.
func (s *SettingStore) SetMany(ctx context.Context, settings models.Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set settings: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare settings upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for k, v := range settings {
		if _, err := stmt.ExecContext(ctx, k, v, now); err != nil {
			return fmt.Errorf("set setting %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set settings commit: %w", err)
	}
	return nil
}

// WhatsApp returns the WhatsApp contact settings, falling back to defaults
// for rows that were never written.
func (s *SettingStore) WhatsApp(ctx context.Context) (models.WhatsAppSettings, error) {
	all, err := s.All(ctx)
	if err != nil {
		return models.WhatsAppSettings{}, err
	}
	return all.WhatsApp(), nil
}

// SetWhatsApp normalizes and stores the WhatsApp contact settings.
func (s *SettingStore) SetWhatsApp(ctx context.Context, w models.WhatsAppSettings) error {
	w.Normalize()
	return s.SetMany(ctx, models.WhatsAppSettingRows(w))
}
