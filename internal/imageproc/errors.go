// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package imageproc

import (
	"errors"
	"fmt"

	"kartela/internal/models"
)

var (
	// ErrTimeout is returned when the webhook did not answer in time.
	ErrTimeout = errors.New("image processing timed out")

	// ErrEndpointNotFound is returned when the webhook answered 404.
	ErrEndpointNotFound = errors.New("image processing endpoint not found")

	// ErrUpstream is returned for 5xx answers and while the circuit is open.
	ErrUpstream = errors.New("image processing server error")

	// ErrUnrecognizedResponse is returned when no probe matches the reply.
	ErrUnrecognizedResponse = errors.New("no recognized image in response")

	// ErrPhotoUploadDisabled rejects processing for palettes without photo upload.
	ErrPhotoUploadDisabled = errors.New("photo upload disabled for palette")

	// ErrEmptyImage rejects requests without an image payload.
	ErrEmptyImage = errors.New("image is required")

	// ErrItemRequired rejects requests without a selected item.
	ErrItemRequired = errors.New("item id is required")
)

// ConfigError reports a palette/webhook configuration problem detected
// before any network call is made.
type ConfigError struct {
	ItemID string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("image processing config for item %q: %v", e.ItemID, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ProcessingError wraps any other transport or decoding failure.
type ProcessingError struct {
	Cause error
}

func (e *ProcessingError) Error() string {
	return "image processing failed: " + e.Cause.Error()
}

func (e *ProcessingError) Unwrap() error { return e.Cause }

// errPaletteNotFound is wrapped in a ConfigError when no palette holds the item.
var errPaletteNotFound = errors.New("no palette contains the item")

// User-facing messages shown by the catalog browser.
const (
	MsgTimeout          = "İşlem zaman aşımına uğradı. Lütfen tekrar deneyin."
	MsgEndpointNotFound = "Görüntü işleme servisi bulunamadı. Lütfen bağlantı ayarlarını kontrol edin."
	MsgUpstream         = "Sunucu hatası. Lütfen daha sonra tekrar deneyin."
	MsgFailed           = "Görüntü işlenirken bir hata oluştu. Lütfen tekrar deneyin."
	MsgPaletteNotFound  = "Seçilen renk için palet bulunamadı."
	MsgWebhookDisabled  = "Bu palet için görüntü işleme etkin değil."
	MsgPhotoDisabled    = "Bu palet için fotoğraf yükleme kapalı."
	MsgEmptyImage       = "Lütfen önce bir fotoğraf yükleyin."
	MsgItemRequired     = "Lütfen bir renk veya desen seçin."
)

// UserMessage maps an error returned by a Processor to the Turkish message
// shown to the end user.
func UserMessage(err error) string {
	var missing *models.WebhookURLMissingError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return MsgTimeout
	case errors.Is(err, ErrEndpointNotFound):
		return MsgEndpointNotFound
	case errors.Is(err, ErrUpstream):
		return MsgUpstream
	case errors.Is(err, errPaletteNotFound):
		return MsgPaletteNotFound
	case errors.Is(err, models.ErrWebhookDisabled):
		return MsgWebhookDisabled
	case errors.As(err, &missing):
		return fmt.Sprintf("Webhook %s URL'i tanımlı değil. Lütfen palet ayarlarını kontrol edin.", missing.Mode)
	case errors.Is(err, ErrPhotoUploadDisabled):
		return MsgPhotoDisabled
	case errors.Is(err, ErrEmptyImage):
		return MsgEmptyImage
	case errors.Is(err, ErrItemRequired):
		return MsgItemRequired
	default:
		return MsgFailed
	}
}
