// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders adds security-related HTTP headers to every response.
// HSTS is only sent when hsts is true, i.e. in production behind TLS.
func SecureHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			// Prevent the browser from MIME-sniffing the Content-Type.
			h.Set("X-Content-Type-Options", "nosniff")

			// The API is never framed.
			h.Set("X-Frame-Options", "DENY")

			// Control what information is sent in the Referer header.
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Uploaded swatches and previews are embedded by the SPA origin.
			h.Set("Cross-Origin-Resource-Policy", "cross-origin")

			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
