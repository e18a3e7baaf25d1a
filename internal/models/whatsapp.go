// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"net/url"
	"strings"
)

// DefaultWhatsAppMessage pre-fills the chat when no message is configured.
const DefaultWhatsAppMessage = "Merhaba, Kartela uygulaması hakkında bilgi almak istiyorum."

// WhatsAppSettings configures the floating contact button of the catalog.
type WhatsAppSettings struct {
	Enabled        bool   `json:"enabled"`
	PhoneNumber    string `json:"phoneNumber"`
	DefaultMessage string `json:"defaultMessage"`
}

// DefaultWhatsAppSettings is what a fresh installation starts with.
func DefaultWhatsAppSettings() WhatsAppSettings {
	return WhatsAppSettings{DefaultMessage: DefaultWhatsAppMessage}
}

// Normalize strips every non-digit from the phone number and restores the
// default message when it is blank.
func (s *WhatsAppSettings) Normalize() {
	s.PhoneNumber = DigitsOnly(s.PhoneNumber)
	s.DefaultMessage = strings.TrimSpace(s.DefaultMessage)
	if s.DefaultMessage == "" {
		s.DefaultMessage = DefaultWhatsAppMessage
	}
}

// Link returns the wa.me chat URL, or false when the button is disabled or
// no phone number is set.
func (s WhatsAppSettings) Link() (string, bool) {
	phone := DigitsOnly(s.PhoneNumber)
	if !s.Enabled || phone == "" {
		return "", false
	}
	msg := s.DefaultMessage
	if strings.TrimSpace(msg) == "" {
		msg = DefaultWhatsAppMessage
	}
	return "https://wa.me/" + phone + "?text=" + escapeComponent(msg), true
}

// escapeComponent percent-encodes s for a query value with spaces as %20.
// QueryEscape already turns a literal '+' into %2B, so every remaining '+'
// is a space.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// DigitsOnly drops every character that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
