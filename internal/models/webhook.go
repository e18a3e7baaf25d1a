// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// WebhookMode selects which of the two configured URLs is active.
type WebhookMode string

const (
	WebhookModeTest WebhookMode = "test"
	WebhookModeLive WebhookMode = "live"
)

// ErrWebhookDisabled is returned by Endpoint when the palette webhook is off.
var ErrWebhookDisabled = errors.New("webhook disabled")

// WebhookURLMissingError reports that the active mode has no URL configured.
type WebhookURLMissingError struct {
	Mode WebhookMode
}

func (e *WebhookURLMissingError) Error() string {
	return fmt.Sprintf("webhook %s url is not configured", e.Mode)
}

// WebhookConfig is the per-palette image-processing endpoint configuration.
type WebhookConfig struct {
	TestURL string      `json:"testUrl"`
	LiveURL string      `json:"liveUrl"`
	Mode    WebhookMode `json:"mode"`
	Enabled bool        `json:"enabled"`
}

// DefaultWebhookConfig is assigned to palettes created without one.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{Mode: WebhookModeTest}
}

// ActiveURL returns the URL for the current mode, which may be empty.
func (w WebhookConfig) ActiveURL() string {
	if w.Mode == WebhookModeLive {
		return strings.TrimSpace(w.LiveURL)
	}
	return strings.TrimSpace(w.TestURL)
}

// Endpoint returns the URL to call, or an error when the webhook is disabled
// or the active mode has no URL.
func (w WebhookConfig) Endpoint() (string, error) {
	if !w.Enabled {
		return "", ErrWebhookDisabled
	}
	u := w.ActiveURL()
	if u == "" {
		return "", &WebhookURLMissingError{Mode: w.effectiveMode()}
	}
	return u, nil
}

// Normalize fills an unknown mode with test and trims URLs.
func (w *WebhookConfig) Normalize() {
	w.Mode = w.effectiveMode()
	w.TestURL = strings.TrimSpace(w.TestURL)
	w.LiveURL = strings.TrimSpace(w.LiveURL)
}

func (w WebhookConfig) effectiveMode() WebhookMode {
	if w.Mode == WebhookModeLive {
		return WebhookModeLive
	}
	return WebhookModeTest
}

// UnmarshalJSON accepts both the dual-URL shape and the older single-URL
// shape {url, mode, enabled}. A legacy url lands in the slot named by its
// mode, and a legacy record without "enabled" is treated as enabled.
func (w *WebhookConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		TestURL *string     `json:"testUrl"`
		LiveURL *string     `json:"liveUrl"`
		URL     *string     `json:"url"`
		Mode    WebhookMode `json:"mode"`
		Enabled *bool       `json:"enabled"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode webhook: %w", err)
	}

	out := WebhookConfig{Mode: raw.Mode}
	if raw.TestURL != nil {
		out.TestURL = *raw.TestURL
	}
	if raw.LiveURL != nil {
		out.LiveURL = *raw.LiveURL
	}

	legacy := raw.URL != nil && raw.TestURL == nil && raw.LiveURL == nil
	if legacy {
		if out.effectiveMode() == WebhookModeLive {
			out.LiveURL = *raw.URL
		} else {
			out.TestURL = *raw.URL
		}
	}

	switch {
	case raw.Enabled != nil:
		out.Enabled = *raw.Enabled
	case legacy:
		out.Enabled = true
	}

	out.Normalize()
	*w = out
	return nil
}
