package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"kartela/internal/auth"
	"kartela/internal/middleware"
	"kartela/internal/models"
)

const (
	msgUserCreated      = "Kullanıcı başarıyla oluşturuldu"
	msgUsernameTaken    = "Bu kullanıcı adı zaten kullanılıyor"
	msgBadCredentials   = "Kullanıcı adı veya şifre hatalı"
	msgLoginOK          = "Giriş başarılı"
	msgAdminOnlyRole    = "Admin rolü yalnızca bir admin tarafından atanabilir"
	msgUserNoLongerHere = "Kullanıcı bulunamadı"
)

// Auth groups the account handlers.
type Auth struct {
	users  auth.UserStore
	tokens *auth.Manager
}

// NewAuth creates the Auth handler group.
func NewAuth(users auth.UserStore, tokens *auth.Manager) *Auth {
	return &Auth{users: users, tokens: tokens}
}

type registerRequest struct {
	Username string      `json:"username" validate:"required,min=3,max=50"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=admin user"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// userView is the public shape of an account.
type userView struct {
	ID       uuid.UUID   `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

func viewOf(u *models.User) userView {
	return userView{ID: u.ID, Username: u.Username, Role: u.Role}
}

// Register handles POST /api/auth/register. Anyone may create a user
// account; creating an admin requires an admin token.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if req.Role == models.RoleAdmin {
		claims := middleware.ClaimsFromCtx(r.Context())
		if claims == nil || !claims.IsAdmin() {
			writeError(w, http.StatusForbidden, msgAdminOnlyRole)
			return
		}
	}

	u, err := a.users.Create(r.Context(), auth.NormalizeUsername(req.Username), req.Password, req.Role)
	if errors.Is(err, auth.ErrUsernameTaken) {
		writeError(w, http.StatusConflict, msgUsernameTaken)
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	slog.Info("user registered", "username", u.Username, "role", u.Role)
	writeJSON(w, http.StatusCreated, map[string]any{"message": msgUserCreated, "userId": u.ID})
}

// Login handles POST /api/auth/login and returns a signed token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := a.users.FindByUsername(r.Context(), auth.NormalizeUsername(req.Username))
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if u == nil || !auth.CheckPassword(u, req.Password) {
		slog.Warn("failed login attempt", "username", req.Username)
		writeError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	token, err := a.tokens.Issue(u)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	slog.Info("user logged in", "username", u.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": msgLoginOK,
		"token":   token,
		"user":    viewOf(u),
	})
}

// Me handles GET /api/auth/me for an authenticated caller.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, middleware.MsgTokenRequired)
		return
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		writeError(w, http.StatusForbidden, middleware.MsgTokenInvalid)
		return
	}

	u, err := a.users.FindByID(r.Context(), id)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, msgUserNoLongerHere)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(u))
}
