// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imageproc produces recoloured previews of a customer photo by
// delegating to the webhook configured on the palette that owns the
// selected colour or pattern, and normalises the webhook's reply into a
// single data URI.
package imageproc

import (
	"context"
	"strings"

	"kartela/internal/models"
)

// Request is one "apply colour" action.
type Request struct {
	Image    string // data URI or bare base64 of the customer photo
	ItemID   string // id of the selected colour or pattern
	Category string // category the customer is browsing; defaults to the palette's
}

// Result is a successfully processed preview.
type Result struct {
	ProcessedImage string `json:"processedImage"`
	Success        bool   `json:"success"`
	Mock           bool   `json:"-"`
}

// Processor turns a Request into a processed preview.
type Processor interface {
	Process(ctx context.Context, req Request) (*Result, error)
}

// PaletteFinder resolves the palette owning an item. catalog.Store
// satisfies it.
type PaletteFinder interface {
	FindPaletteByItem(ctx context.Context, itemID string) (*models.Palette, error)
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Image) == "" {
		return ErrEmptyImage
	}
	if strings.TrimSpace(r.ItemID) == "" {
		return ErrItemRequired
	}
	return nil
}

// outbound is the JSON body POSTed to the webhook.
type outbound struct {
	Category string             `json:"category"`
	Palette  paletteRef         `json:"palette"`
	Item     itemDescriptor     `json:"item"`
	Image    string             `json:"image"`
	Mode     models.WebhookMode `json:"mode"`
}

type paletteRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// itemDescriptor flattens the selected item. Colour fields and pattern
// fields are mutually exclusive.
type itemDescriptor struct {
	Type        models.ItemType    `json:"type"`
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Code        string             `json:"code,omitempty"`
	Hex         string             `json:"hex,omitempty"`
	RGB         *models.RGB        `json:"rgb,omitempty"`
	PatternType models.PatternType `json:"patternType,omitempty"`
	ImageURL    string             `json:"imageUrl,omitempty"`
}

func describe(it models.Item) itemDescriptor {
	d := itemDescriptor{Type: it.Type, ID: it.ID(), Name: it.Name()}
	switch {
	case it.Color != nil:
		c := *it.Color
		_ = c.Normalize()
		rgb := c.RGB
		d.Code = c.Code
		d.Hex = c.Hex
		d.RGB = &rgb
	case it.Pattern != nil:
		d.PatternType = it.Pattern.Type
		if d.PatternType == "" {
			d.PatternType = models.PatternTypePattern
		}
		d.ImageURL = it.Pattern.ImageURL
	}
	return d
}

func buildRequest(req Request, p *models.Palette, it models.Item) outbound {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = p.CategoryID
	}
	wh := p.Webhook
	wh.Normalize()
	return outbound{
		Category: category,
		Palette:  paletteRef{ID: p.ID, Name: p.Name},
		Item:     describe(it),
		Image:    req.Image,
		Mode:     wh.Mode,
	}
}
