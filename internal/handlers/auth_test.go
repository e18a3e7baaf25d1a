package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"kartela/internal/models"
)

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		role       models.Role // caller role; empty means anonymous
		wantStatus int
		wantMsg    string
	}{
		{"user by anonymous", map[string]any{"username": "ayse", "password": "gizli123"}, "", http.StatusCreated, msgUserCreated},
		{"admin by anonymous", map[string]any{"username": "mehmet", "password": "gizli123", "role": "admin"}, "", http.StatusForbidden, msgAdminOnlyRole},
		{"admin by user", map[string]any{"username": "mehmet", "password": "gizli123", "role": "admin"}, models.RoleUser, http.StatusForbidden, msgAdminOnlyRole},
		{"admin by admin", map[string]any{"username": "mehmet", "password": "gizli123", "role": "admin"}, models.RoleAdmin, http.StatusCreated, msgUserCreated},
		{"short password", map[string]any{"username": "ayse", "password": "123"}, "", http.StatusBadRequest, msgValidation},
		{"short username", map[string]any{"username": "ay", "password": "gizli123"}, "", http.StatusBadRequest, msgValidation},
		{"unknown role", map[string]any{"username": "ayse", "password": "gizli123", "role": "root"}, "", http.StatusBadRequest, msgValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := jsonRequest(t, http.MethodPost, "/api/auth/register", tt.body)
			if tt.role != "" {
				req = asUser(t, env, req, tt.role)
			}
			rec := httptest.NewRecorder()
			env.Auth.Register(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if msg := messageOf(t, rec); msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Users.Create(context.Background(), "ayse", "gizli123", models.RoleUser); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := httptest.NewRecorder()
	env.Auth.Register(rec, jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": " ayse ",
		"password": "baska123",
	}))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if msg := messageOf(t, rec); msg != msgUsernameTaken {
		t.Errorf("message = %q", msg)
	}
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.Users.Create(context.Background(), "admin", "admin123", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("wrong password", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.Auth.Login(rec, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
			"username": "admin", "password": "yanlis",
		}))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if msg := messageOf(t, rec); msg != msgBadCredentials {
			t.Errorf("message = %q", msg)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.Auth.Login(rec, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
			"username": "kimse", "password": "admin123",
		}))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	rec := httptest.NewRecorder()
	env.Auth.Login(rec, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
		"username": "admin", "password": "admin123",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d; body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[struct {
		Message string   `json:"message"`
		Token   string   `json:"token"`
		User    userView `json:"user"`
	}](t, rec)
	if body.Message != msgLoginOK || body.Token == "" {
		t.Fatalf("login body = %+v", body)
	}
	if body.User.ID != u.ID || body.User.Role != models.RoleAdmin {
		t.Errorf("user = %+v", body.User)
	}

	claims, err := env.Tokens.Validate(body.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.UserID != u.ID.String() || !claims.IsAdmin() {
		t.Errorf("claims = %+v", claims)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(contextWithClaims(req.Context(), claims))
	rec = httptest.NewRecorder()
	env.Auth.Me(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
	if me := decodeBody[userView](t, rec); me.Username != "admin" {
		t.Errorf("me = %+v", me)
	}
}

func TestMe_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	req := asUser(t, env, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), models.RoleUser)
	rec := httptest.NewRecorder()
	env.Auth.Me(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
