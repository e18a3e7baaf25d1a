package kvstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kartela/internal/auth"
	"kartela/internal/models"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobs()
	s := NewUserStore(blobs)

	if u, err := s.FindByUsername(ctx, "ayse"); err != nil || u != nil {
		t.Fatalf("FindByUsername on empty store = %v, %v", u, err)
	}

	u, err := s.Create(ctx, "ayse", "gizli123", models.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !auth.CheckPassword(u, "gizli123") {
		t.Error("hash does not verify")
	}

	raw, _ := blobs.Get(ctx, KeyUsers)
	if strings.Contains(string(raw), "gizli123") {
		t.Error("plaintext password stored")
	}

	byID, err := s.FindByID(ctx, u.ID)
	if err != nil || byID == nil || byID.Username != "ayse" || byID.PasswordHash == "" {
		t.Errorf("FindByID = %+v, %v", byID, err)
	}

	if _, err := s.Create(ctx, "ayse", "baska1", models.RoleAdmin); !errors.Is(err, auth.ErrUsernameTaken) {
		t.Errorf("duplicate Create error = %v, want ErrUsernameTaken", err)
	}
}

func TestUserStoreSeedAdmin(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore(NewMemoryBlobs())

	if err := s.SeedAdmin(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	if err := s.SeedAdmin(ctx, "admin", "other"); err != nil {
		t.Fatalf("second SeedAdmin: %v", err)
	}

	u, _ := s.FindByUsername(ctx, "admin")
	if u == nil || !u.IsAdmin() {
		t.Fatalf("admin = %+v", u)
	}
	if !auth.CheckPassword(u, "admin123") {
		t.Error("second seed must not overwrite the admin")
	}
}
