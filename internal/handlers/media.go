package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"kartela/internal/imaging"
	"kartela/internal/metrics"
	"kartela/internal/middleware"
	"kartela/internal/models"
	"kartela/internal/storage"
)

const (
	// maxUploadSize is the maximum accepted image size (5 MB).
	maxUploadSize = 5 << 20

	// uploadField is the multipart field carrying the file.
	uploadField = "image"
)

const (
	msgNoFile       = "Dosya yüklenmedi"
	msgOnlyImages   = "Sadece resim dosyaları yüklenebilir"
	msgFileTooLarge = "Dosya boyutu 5 MB'ı aşamaz"
	msgUploaded     = "Dosya başarıyla yüklendi"
	msgUploadFailed = "Dosya kaydedilemedi"
)

// UploadLog records upload metadata. It is optional; without it uploads
// are stored but not listed.
type UploadLog interface {
	Create(ctx context.Context, u *models.Upload) error
	List(ctx context.Context, limit, offset int) ([]models.Upload, error)
}

// Media groups the file upload handlers.
type Media struct {
	backend storage.Backend
	uploads UploadLog
	now     func() time.Time
}

// NewMedia creates the Media handler group. uploads may be nil.
func NewMedia(backend storage.Backend, uploads UploadLog) *Media {
	return &Media{backend: backend, uploads: uploads, now: time.Now}
}

// readImage extracts the uploaded image from a multipart request. It
// writes the error response itself and returns ok=false on failure.
func readImage(w http.ResponseWriter, r *http.Request) (data []byte, header *multipart.FileHeader, ok bool) {
	// Leave room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+64<<10)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
		} else {
			writeError(w, http.StatusBadRequest, msgNoFile)
		}
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, nil, false
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoFile)
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, nil, false
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, nil, false
	}

	data, err = io.ReadAll(file)
	if err != nil {
		writeInternal(w, r, fmt.Errorf("read upload: %w", err))
		return nil, nil, false
	}
	if !imaging.IsImage(data) {
		writeError(w, http.StatusBadRequest, msgOnlyImages)
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, nil, false
	}
	return data, header, true
}

// Upload handles POST /api/upload. The image is stored under a dated,
// collision-free key and a JPEG thumbnail is added for wide images.
func (m *Media) Upload(w http.ResponseWriter, r *http.Request) {
	data, header, ok := readImage(w, r)
	if !ok {
		return
	}

	// The stored extension follows the sniffed type, never the client's
	// filename, so the file server cannot be steered to another type.
	contentType := imaging.DetectType(data)
	ext := imaging.ExtensionFromType(contentType)
	now := m.now()
	fileID := uuid.New()
	key := fmt.Sprintf("%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)

	ctx := r.Context()
	if err := m.backend.Put(ctx, key, contentType, data); err != nil {
		slog.Error("upload store failed", "error", err, "key", key)
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		writeError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	var thumbKey *string
	thumb, err := imaging.Thumbnail(data, imaging.ThumbMaxWidth)
	switch {
	case err != nil:
		slog.Warn("thumbnail generation failed", "error", err, "key", key)
	case thumb != nil:
		tk := fmt.Sprintf("%d/%02d/%s_thumb.jpg", now.Year(), now.Month(), fileID)
		if err := m.backend.Put(ctx, tk, "image/jpeg", thumb); err != nil {
			slog.Warn("thumbnail store failed", "error", err, "key", tk)
		} else {
			thumbKey = &tk
		}
	}

	up := &models.Upload{
		ID:           fileID,
		Filename:     fileID.String() + ext,
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		StorageKey:   key,
		ThumbKey:     thumbKey,
		CreatedAt:    now,
	}
	if claims := middleware.ClaimsFromCtx(ctx); claims != nil {
		if id, err := uuid.Parse(claims.UserID); err == nil {
			up.UploaderID = &id
		}
	}
	if m.uploads != nil {
		if err := m.uploads.Create(ctx, up); err != nil {
			// The file is already stored and reachable, so only log.
			slog.Error("upload metadata insert failed", "error", err, "key", key)
		}
	}
	metrics.UploadsTotal.WithLabelValues("stored").Inc()

	url := m.backend.URL(key)
	thumbURL := url
	if thumbKey != nil {
		thumbURL = m.backend.URL(*thumbKey)
	}

	slog.Info("image uploaded", "key", key, "size", up.HumanSize())
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      msgUploaded,
		"url":          url,
		"thumbUrl":     thumbURL,
		"filename":     up.Filename,
		"originalName": up.OriginalName,
		"size":         up.SizeBytes,
	})
}

// ListUploads handles GET /api/upload, newest first, paged with ?limit=
// and ?offset=.
func (m *Media) ListUploads(w http.ResponseWriter, r *http.Request) {
	if m.uploads == nil {
		writeJSON(w, http.StatusOK, []models.Upload{})
		return
	}

	limit := queryInt(r, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := max(queryInt(r, "offset", 0), 0)

	items, err := m.uploads.List(r.Context(), limit, offset)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if items == nil {
		items = []models.Upload{}
	}

	type uploadView struct {
		models.Upload
		URL      string `json:"url"`
		ThumbURL string `json:"thumbUrl,omitempty"`
	}
	views := make([]uploadView, len(items))
	for i, u := range items {
		views[i] = uploadView{Upload: u, URL: m.backend.URL(u.StorageKey)}
		if u.ThumbKey != nil {
			views[i].ThumbURL = m.backend.URL(*u.ThumbKey)
		}
	}
	writeJSON(w, http.StatusOK, views)
}

// Photo handles POST /api/photo. It returns the uploaded photo as a data
// URI for the preview flow without storing it.
func (m *Media) Photo(w http.ResponseWriter, r *http.Request) {
	data, _, ok := readImage(w, r)
	if !ok {
		return
	}
	contentType := imaging.DetectType(data)
	metrics.UploadsTotal.WithLabelValues("photo").Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"image":       imaging.DataURI(contentType, data),
		"contentType": contentType,
		"size":        len(data),
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return v
}
