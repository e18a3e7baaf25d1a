// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"kartela/internal/catalog"
	"kartela/internal/validation"
)

// maxJSONBody caps JSON request bodies. Photos travel as base64 inside
// process-image requests, so this is well above the 5 MiB upload cap.
const maxJSONBody = 10 << 20

// User-facing messages shared by several handlers.
const (
	msgInternal         = "Sunucu hatası"
	msgBadBody          = "Geçersiz istek gövdesi"
	msgValidation       = "Doğrulama hatası"
	msgDuplicateID      = "Bu ID zaten kullanılıyor"
	msgInvalidReference = "Geçersiz kategori veya marka referansı"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

// writeRaw writes an already encoded JSON body.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError writes {"message": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// writeInternal logs err and writes an opaque 500.
func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// writeValidation writes a 400 carrying per-field details.
func writeValidation(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: msgValidation, Details: verr.Details()})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// decodeJSON reads a size-limited JSON body into v and validates it.
// It writes the error response itself and reports whether to continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "İstek gövdesi çok büyük")
			return false
		}
		writeError(w, http.StatusBadRequest, msgBadBody)
		return false
	}
	if err := validation.Struct(v); err != nil {
		writeValidation(w, err)
		return false
	}
	return true
}

// writeStoreError maps catalog errors onto status codes. notFound is the
// entity-specific 404 message.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, catalog.ErrDuplicateID):
		writeError(w, http.StatusConflict, msgDuplicateID)
	case errors.Is(err, catalog.ErrInvalidReference):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Message: msgInvalidReference,
			Details: map[string]string{"reference": err.Error()},
		})
	case errors.Is(err, catalog.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Message: msgValidation,
			Details: map[string]string{"entity": err.Error()},
		})
	default:
		writeInternal(w, r, err)
	}
}
