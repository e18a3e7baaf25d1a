// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging decodes uploaded images, builds JPEG thumbnails and
// converts between raw bytes and data URIs. Decoding is pure Go:
// JPEG, PNG and GIF from the standard library, WebP from golang.org/x/image.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"net/http"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// ThumbMaxWidth is the maximum thumbnail width in pixels.
	ThumbMaxWidth = 400

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// MaxPixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	MaxPixels = 100_000_000

	// DefaultMimeType is assumed for base64 payloads without a type.
	DefaultMimeType = "image/png"
)

var (
	// ErrTooLarge is returned for images above MaxPixels.
	ErrTooLarge = errors.New("image too large")

	// ErrNotDataURI is returned when a string is not a base64 data URI.
	ErrNotDataURI = errors.New("not a base64 data URI")
)

// thumbable are image types that support thumbnail generation.
// GIF is excluded to preserve animation; SVG is vector.
var thumbable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// DetectType sniffs the content type of data.
func DetectType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// IsImage reports whether the sniffed type of data is image/*.
func IsImage(data []byte) bool {
	return strings.HasPrefix(DetectType(data), "image/")
}

// Decode decodes a raster image after checking its dimensions.
func Decode(data []byte) (image.Image, string, error) {
	return DecodeLimited(data, MaxPixels)
}

// DecodeLimited is Decode with a caller-chosen pixel cap. The header is
// checked before any pixel data is allocated.
func DecodeLimited(data []byte, maxPixels int64) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Thumbnail creates a JPEG thumbnail constrained to maxWidth while
// preserving aspect ratio. Returns nil for non-thumbable types and for
// images already narrower than maxWidth.
func Thumbnail(data []byte, maxWidth int) ([]byte, error) {
	if !thumbable[DetectType(data)] {
		return nil, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Width <= maxWidth {
		return nil, nil
	}

	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	height := max(int(float64(bounds.Dy())*ratio), 1)

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI embeds data as "data:<mime>;base64,<payload>".
func DataURI(mimeType string, data []byte) string {
	return EncodedDataURI(mimeType, base64.StdEncoding.EncodeToString(data))
}

// EncodedDataURI builds a data URI from an already base64-encoded payload.
func EncodedDataURI(mimeType, b64 string) string {
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return "data:" + mimeType + ";base64," + b64
}

// IsDataURI reports whether s looks like a displayable data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:") && strings.Contains(s, ";base64,")
}

// ParseDataURI splits a base64 data URI into its mime type and bytes.
func ParseDataURI(s string) (string, []byte, error) {
	if !IsDataURI(s) {
		return "", nil, ErrNotDataURI
	}
	header, payload, _ := strings.Cut(strings.TrimPrefix(s, "data:"), ";base64,")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI: %w", err)
	}
	if header == "" {
		header = DefaultMimeType
	}
	return header, data, nil
}

// ExtensionFromType returns a file extension for known image MIME types.
func ExtensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ""
	}
}
