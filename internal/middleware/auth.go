// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"kartela/internal/auth"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// ClaimsKey is the context key for the verified token claims.
	ClaimsKey contextKey = "claims"
)

// Messages returned by the auth middleware.
const (
	MsgTokenRequired = "Token gerekli"
	MsgTokenInvalid  = "Geçersiz token"
	MsgAdminRequired = "Admin yetkisi gerekli"
)

// Authenticate verifies the bearer token and stores its claims in the
// request context. A missing token is rejected with 401 and an invalid or
// expired one with 403.
func Authenticate(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, MsgTokenRequired)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				writeError(w, http.StatusForbidden, MsgTokenInvalid)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate stores the claims of a valid bearer token when one
// is present and lets every request through.
func OptionalAuthenticate(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := tokens.Validate(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns 403 if the authenticated user is not an admin.
// Must be applied after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromCtx(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, MsgTokenRequired)
			return
		}
		if !claims.IsAdmin() {
			writeError(w, http.StatusForbidden, MsgAdminRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClaimsFromCtx extracts the token claims from the request context.
// Returns nil if the request was not authenticated.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims
}

// bearerToken returns the token of an "Authorization: Bearer <token>"
// header, or "" when absent.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
