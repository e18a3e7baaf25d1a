package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"kartela/internal/catalog"
	"kartela/internal/models"
)

// Default admin credentials created on an empty users table.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// Seed creates the default admin when no users exist and imports the
// built-in catalog when no categories exist. Both steps are skipped on a
// database that already holds data, so Seed is safe to run on every start.
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedCatalog(context.Background(), db, catalog.DefaultCatalog(time.Now()))
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
	`, DefaultAdminUsername, string(hash), string(models.RoleAdmin))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Warn("database seeded with default admin user, change its password",
		"username", DefaultAdminUsername,
	)
	return nil
}

func seedCatalog(ctx context.Context, db *sql.DB, d catalog.Defaults) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("catalog already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	for _, c := range d.Categories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name, description, icon, sort_order, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			ON CONFLICT (id) DO NOTHING
		`, c.ID, c.Name, c.Description, c.Icon, c.Order, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}

	for _, b := range d.Brands {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO brands (id, name, description, logo, sort_order, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			ON CONFLICT (id) DO NOTHING
		`, b.ID, b.Name, b.Description, b.Logo, b.Order, b.CreatedAt)
		if err != nil {
			return fmt.Errorf("seed brand %s: %w", b.ID, err)
		}
	}

	for _, p := range d.Palettes {
		items, err := json.Marshal(p.Items)
		if err != nil {
			return fmt.Errorf("seed palette %s items: %w", p.ID, err)
		}
		webhook, err := json.Marshal(p.Webhook)
		if err != nil {
			return fmt.Errorf("seed palette %s webhook: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO palettes (id, name, description, category_id, items, webhook,
			                      photo_upload_enabled, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			ON CONFLICT (id) DO NOTHING
		`, p.ID, p.Name, p.Description, p.CategoryID, string(items), string(webhook),
			p.PhotoUploadEnabled, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("seed palette %s: %w", p.ID, err)
		}
	}

	settings := models.WhatsAppSettingRows(d.WhatsApp)
	for key, value := range settings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO NOTHING
		`, key, value)
		if err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("catalog seeded with defaults",
		"categories", len(d.Categories),
		"brands", len(d.Brands),
		"palettes", len(d.Palettes),
	)
	return nil
}
