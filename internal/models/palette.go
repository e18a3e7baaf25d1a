// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"
)

// Palette is a named collection of colours and patterns belonging to one
// category and optionally one brand. Items are kept in display order.
type Palette struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Description        string        `json:"description"`
	CategoryID         string        `json:"categoryId"`
	BrandID            string        `json:"brandId,omitempty"`
	Items              []Item        `json:"items"`
	Webhook            WebhookConfig `json:"webhook"`
	PhotoUploadEnabled bool          `json:"photoUploadEnabled"`
	ProductName        string        `json:"productName,omitempty"`
	ProductImage       string        `json:"productImage,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// FindItem returns the item with the given ID.
func (p *Palette) FindItem(id string) (Item, bool) {
	for _, it := range p.Items {
		if it.ID() == id {
			return it, true
		}
	}
	return Item{}, false
}

// NormalizeItems validates every item and rejects duplicate item IDs.
func (p *Palette) NormalizeItems() error {
	if p.Items == nil {
		p.Items = []Item{}
	}
	seen := make(map[string]struct{}, len(p.Items))
	for i := range p.Items {
		if err := p.Items[i].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		id := p.Items[i].ID()
		if _, dup := seen[id]; dup {
			return fmt.Errorf("item %d: duplicate id %q", i, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
