// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package kvstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"kartela/internal/auth"
	"kartela/internal/models"
)

// KeyUsers holds the admin API accounts.
const KeyUsers = "kartela_users"

// userRecord is the stored form of a user. models.User never serializes
// its hash, so the record carries it explicitly.
type userRecord struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"passwordHash"`
	Role         models.Role `json:"role"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (r userRecord) user() *models.User {
	return &models.User{
		ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash,
		Role: r.Role, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// UserStore implements auth.UserStore over a single JSON document.
type UserStore struct {
	blobs Blobs
	mu    sync.Mutex
}

var _ auth.UserStore = (*UserStore)(nil)

// NewUserStore returns a user store over blobs.
func NewUserStore(blobs Blobs) *UserStore {
	return &UserStore{blobs: blobs}
}

// FindByUsername returns the user or nil when none matches.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	recs, err := load[userRecord](ctx, s.blobs, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	for _, r := range recs {
		if r.Username == username {
			return r.user(), nil
		}
	}
	return nil, nil
}

// FindByID returns the user or nil when none matches.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	recs, err := load[userRecord](ctx, s.blobs, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	for _, r := range recs {
		if r.ID == id {
			return r.user(), nil
		}
	}
	return nil, nil
}

// Create stores a new user with a bcrypt-hashed password.
func (s *UserStore) Create(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := load[userRecord](ctx, s.blobs, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	for _, r := range recs {
		if r.Username == username {
			return nil, fmt.Errorf("create user %q: %w", username, auth.ErrUsernameTaken)
		}
	}

	now := time.Now()
	rec := userRecord{ID: uuid.New(), Username: username, PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now}
	recs = append(recs, rec)
	if err := put(ctx, s.blobs, KeyUsers, recs); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return rec.user(), nil
}

// SeedAdmin creates the given admin account when no users exist yet.
func (s *UserStore) SeedAdmin(ctx context.Context, username, password string) error {
	recs, err := load[userRecord](ctx, s.blobs, KeyUsers)
	if err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if len(recs) > 0 {
		return nil
	}
	if _, err := s.Create(ctx, username, password, models.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	slog.Warn("key-value store seeded with default admin user, change its password", "username", username)
	return nil
}
