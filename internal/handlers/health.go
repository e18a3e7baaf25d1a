package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// Health handles GET /api/health. Failing checks turn the answer into a
// 503 naming the dependency.
func Health(backend string, mock bool, checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				slog.Warn("health check failed", "dependency", name, "error", err)
				failed[name] = err.Error()
			}
		}

		if len(failed) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":  "DEGRADED",
				"message": "Bağımlılık erişilemiyor",
				"failed":  failed,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "OK",
			"message": "Kartela API çalışıyor",
			"backend": backend,
			"mock":    mock,
		})
	}
}
