// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package whatsapp builds the click-to-chat link and its QR code from the
// store's WhatsApp settings.
package whatsapp

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"kartela/internal/models"
)

const (
	// DefaultQRSize is the QR code edge length in pixels.
	DefaultQRSize = 256

	minQRSize = 64
	maxQRSize = 1024
)

// ErrUnavailable is returned when WhatsApp contact is disabled or has no
// phone number.
var ErrUnavailable = errors.New("whatsapp contact not available")

// Link returns the wa.me link for the settings.
func Link(s models.WhatsAppSettings) (string, error) {
	link, ok := s.Link()
	if !ok {
		return "", ErrUnavailable
	}
	return link, nil
}

// QRCode renders the wa.me link as a PNG QR code. size is clamped to a
// sane range; zero selects DefaultQRSize.
func QRCode(s models.WhatsAppSettings, size int) ([]byte, error) {
	link, err := Link(s)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		size = DefaultQRSize
	}
	size = min(max(size, minQRSize), maxQRSize)

	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
