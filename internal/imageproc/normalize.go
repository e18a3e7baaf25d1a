// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package imageproc

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"kartela/internal/imaging"
)

// reply is the loosely typed webhook answer. Every field is optional and
// kept raw so a field of the wrong type only disqualifies its own probe.
type reply struct {
	ProcessedImage    json.RawMessage `json:"processedImage"`
	ProcessedImageURL json.RawMessage `json:"processedImageUrl"`
	Base64            json.RawMessage `json:"base64"`
	MimeType          json.RawMessage `json:"mimeType"`
	Data              json.RawMessage `json:"data"`

	nested *reply
}

// probe inspects a decoded reply and returns a displayable data URI.
type probe struct {
	name  string
	match func(r *reply) (string, bool)
}

// Probes are tried in this order and the first match wins:
//
//  1. processedImage holding a data URI
//  2. processedImageUrl holding a data URI
//  3. base64 with optional mimeType (default image/png)
//  4. data.processedImage or data.processedImageUrl holding a data URI
//  5. data.base64 with optional data.mimeType
var probes = []probe{
	{"processedImage", func(r *reply) (string, bool) { return dataURI(text(r.ProcessedImage)) }},
	{"processedImageUrl", func(r *reply) (string, bool) { return dataURI(text(r.ProcessedImageURL)) }},
	{"base64", func(r *reply) (string, bool) { return encoded(text(r.Base64), text(r.MimeType)) }},
	{"data.processedImage", func(r *reply) (string, bool) {
		if r.nested == nil {
			return "", false
		}
		if uri, ok := dataURI(text(r.nested.ProcessedImage)); ok {
			return uri, true
		}
		return dataURI(text(r.nested.ProcessedImageURL))
	}},
	{"data.base64", func(r *reply) (string, bool) {
		if r.nested == nil {
			return "", false
		}
		return encoded(text(r.nested.Base64), text(r.nested.MimeType))
	}},
}

// Normalize extracts the processed image from a webhook reply body.
// It returns ErrUnrecognizedResponse when no probe matches, including
// for bodies that are not JSON objects.
func Normalize(body []byte) (string, error) {
	var r reply
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnrecognizedResponse, err)
	}
	if len(r.Data) > 0 && r.Data[0] == '{' {
		var nested reply
		if err := json.Unmarshal(r.Data, &nested); err == nil {
			r.nested = &nested
		}
	}

	for _, p := range probes {
		if uri, ok := p.match(&r); ok {
			return uri, nil
		}
	}
	return "", ErrUnrecognizedResponse
}

// text returns raw as a string, or "" when raw is absent or not a JSON
// string.
func text(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func dataURI(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if imaging.IsDataURI(s) {
		return s, true
	}
	return "", false
}

func encoded(b64, mimeType string) (string, bool) {
	b64 = strings.TrimSpace(b64)
	if b64 == "" {
		return "", false
	}
	if imaging.IsDataURI(b64) {
		return b64, true
	}
	return imaging.EncodedDataURI(strings.TrimSpace(mimeType), b64), true
}
