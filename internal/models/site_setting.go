// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strconv"
	"time"
)

// Setting keys persisted in the settings table.
const (
	SettingWhatsAppEnabled = "whatsapp.enabled"
	SettingWhatsAppPhone   = "whatsapp.phone_number"
	SettingWhatsAppMessage = "whatsapp.default_message"
)

// Setting represents a single configuration key-value pair.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Settings is a convenience map for accessing settings by key.
type Settings map[string]string

// Get returns the value for a key, or the fallback if the key doesn't exist.
func (s Settings) Get(key, fallback string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return fallback
}

// WhatsApp assembles the WhatsApp settings from their individual rows.
func (s Settings) WhatsApp() WhatsAppSettings {
	enabled, _ := strconv.ParseBool(s.Get(SettingWhatsAppEnabled, "false"))
	return WhatsAppSettings{
		Enabled:        enabled,
		PhoneNumber:    s.Get(SettingWhatsAppPhone, ""),
		DefaultMessage: s.Get(SettingWhatsAppMessage, DefaultWhatsAppMessage),
	}
}

// WhatsAppSettingRows flattens w into the rows stored in the settings table.
func WhatsAppSettingRows(w WhatsAppSettings) Settings {
	return Settings{
		SettingWhatsAppEnabled: strconv.FormatBool(w.Enabled),
		SettingWhatsAppPhone:   w.PhoneNumber,
		SettingWhatsAppMessage: w.DefaultMessage,
	}
}
