// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"kartela/internal/compare"
	"kartela/internal/imageproc"
	"kartela/internal/imaging"
)

// MockHeader marks responses produced by the mock processor.
const MockHeader = "X-Kartela-Mock"

const msgInvalidImage = "Geçersiz görsel"

// Preview groups the customer-facing preview handlers.
type Preview struct {
	processor imageproc.Processor
}

// NewPreview creates the Preview handler group.
func NewPreview(processor imageproc.Processor) *Preview {
	return &Preview{processor: processor}
}

// itemRef accepts the selected colour or pattern as sent by the browser.
// Only its id is used; the server resolves everything else.
type itemRef struct {
	ID string `json:"id"`
}

type processRequest struct {
	Image    string   `json:"image"`
	Color    *itemRef `json:"color"`
	ItemID   string   `json:"itemId" validate:"omitempty,max=100"`
	Category string   `json:"category" validate:"omitempty,max=100"`
}

func (req processRequest) itemID() string {
	if req.ItemID != "" {
		return req.ItemID
	}
	if req.Color != nil {
		return req.Color.ID
	}
	return ""
}

// processStatus maps a processing failure to a status code.
func processStatus(err error) int {
	var cfg *imageproc.ConfigError
	var proc *imageproc.ProcessingError
	switch {
	case errors.Is(err, imageproc.ErrEmptyImage),
		errors.Is(err, imageproc.ErrItemRequired),
		errors.Is(err, imageproc.ErrPhotoUploadDisabled):
		return http.StatusBadRequest
	case errors.As(err, &cfg):
		return http.StatusUnprocessableEntity
	case errors.Is(err, imageproc.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, imageproc.ErrEndpointNotFound),
		errors.Is(err, imageproc.ErrUpstream),
		errors.Is(err, imageproc.ErrUnrecognizedResponse),
		errors.As(err, &proc):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ProcessImage handles POST /api/process-image. It applies the selected
// colour or pattern to the customer's photo through the palette webhook.
func (p *Preview) ProcessImage(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := p.processor.Process(r.Context(), imageproc.Request{
		Image:    req.Image,
		ItemID:   req.itemID(),
		Category: req.Category,
	})
	if err != nil {
		status := processStatus(err)
		if status >= http.StatusInternalServerError {
			slog.Warn("image processing failed", "item", req.itemID(), "status", status, "error", err)
		}
		writeJSON(w, status, map[string]any{
			"success": false,
			"message": imageproc.UserMessage(err),
		})
		return
	}

	if res.Mock {
		w.Header().Set(MockHeader, "true")
	}
	writeJSON(w, http.StatusOK, res)
}

type compareRequest struct {
	Original  string   `json:"original" validate:"required"`
	Processed string   `json:"processed" validate:"required"`
	Position  *float64 `json:"position"`
}

// Compare handles POST /api/compare and returns the before/after composite
// as a PNG.
func (p *Preview) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, original, err := imaging.ParseDataURI(req.Original)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: msgInvalidImage, Details: map[string]string{"original": err.Error()}})
		return
	}
	_, processed, err := imaging.ParseDataURI(req.Processed)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: msgInvalidImage, Details: map[string]string{"processed": err.Error()}})
		return
	}

	position := compare.DefaultPosition
	if req.Position != nil {
		position = *req.Position
	}

	png, err := compare.Render(original, processed, position)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: msgInvalidImage, Details: map[string]string{"image": err.Error()}})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
