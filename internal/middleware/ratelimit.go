// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// MsgTooManyRequests is returned when a client exceeds its limit.
const MsgTooManyRequests = "Çok fazla istek. Lütfen biraz sonra tekrar deneyin."

// RateLimit allows limit requests per window per client IP. The key is the
// connection's remote address; client-supplied X-Forwarded-For and
// X-Real-IP headers are ignored. A limit <= 0 disables limiting.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, MsgTooManyRequests)
		}),
	)
}
