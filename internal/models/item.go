// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// ItemType discriminates the two kinds of palette entries.
type ItemType string

const (
	ItemTypeColor   ItemType = "color"
	ItemTypePattern ItemType = "pattern"
)

// PatternType distinguishes textured finishes from repeating patterns.
type PatternType string

const (
	PatternTypeTexture PatternType = "texture"
	PatternTypePattern PatternType = "pattern"
)

// Pattern is a finish represented by an image rather than a hex value.
type Pattern struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	ImageURL string      `json:"imageUrl"`
	Type     PatternType `json:"type"`
}

// Item is one entry of a palette: exactly one of Color or Pattern is set,
// matching Type. On the wire it is {"type": "...", "data": {...}}.
type Item struct {
	Type    ItemType
	Color   *Color
	Pattern *Pattern
}

// ColorItem wraps c as a palette item.
func ColorItem(c Color) Item { return Item{Type: ItemTypeColor, Color: &c} }

// PatternItem wraps p as a palette item.
func PatternItem(p Pattern) Item { return Item{Type: ItemTypePattern, Pattern: &p} }

// ID returns the identifier of the wrapped colour or pattern.
func (it Item) ID() string {
	switch {
	case it.Color != nil:
		return it.Color.ID
	case it.Pattern != nil:
		return it.Pattern.ID
	}
	return ""
}

// Name returns the display name of the wrapped colour or pattern.
func (it Item) Name() string {
	switch {
	case it.Color != nil:
		return it.Color.Name
	case it.Pattern != nil:
		return it.Pattern.Name
	}
	return ""
}

// Validate checks the variant is consistent with Type and normalizes colours.
func (it *Item) Validate() error {
	switch it.Type {
	case ItemTypeColor:
		if it.Color == nil || it.Pattern != nil {
			return errors.New("colour item must carry exactly one colour")
		}
		if it.Color.ID == "" || it.Color.Name == "" {
			return errors.New("colour item requires id and name")
		}
		return it.Color.Normalize()
	case ItemTypePattern:
		if it.Pattern == nil || it.Color != nil {
			return errors.New("pattern item must carry exactly one pattern")
		}
		p := it.Pattern
		if p.ID == "" || p.Name == "" {
			return errors.New("pattern item requires id and name")
		}
		if p.ImageURL == "" {
			return fmt.Errorf("pattern %q: imageUrl is required", p.ID)
		}
		switch p.Type {
		case "":
			p.Type = PatternTypePattern
		case PatternTypeTexture, PatternTypePattern:
		default:
			return fmt.Errorf("pattern %q: unknown pattern type %q", p.ID, p.Type)
		}
		return nil
	}
	return fmt.Errorf("unknown item type %q", it.Type)
}

type itemWire struct {
	Type ItemType        `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON encodes the item as a tagged union.
func (it Item) MarshalJSON() ([]byte, error) {
	var (
		data []byte
		err  error
		typ  ItemType
	)
	switch {
	case it.Color != nil:
		typ = ItemTypeColor
		data, err = json.Marshal(it.Color)
	case it.Pattern != nil:
		typ = ItemTypePattern
		data, err = json.Marshal(it.Pattern)
	default:
		return nil, errors.New("marshal item: empty variant")
	}
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	return json.Marshal(itemWire{Type: typ, Data: data})
}

// UnmarshalJSON decodes a tagged item. An object without a "data" member is
// read as a bare colour, the shape older browser-stored palettes used.
func (it *Item) UnmarshalJSON(raw []byte) error {
	var w itemWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return fmt.Errorf("decode item: %w", err)
	}

	data := []byte(w.Data)
	if len(data) == 0 || string(data) == "null" {
		if w.Type != "" {
			return fmt.Errorf("decode item: %q item has no data", w.Type)
		}
		var c Color
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("decode colour item: %w", err)
		}
		*it = ColorItem(c)
		return nil
	}

	switch w.Type {
	case ItemTypeColor:
		var c Color
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("decode colour item: %w", err)
		}
		*it = ColorItem(c)
	case ItemTypePattern:
		var p Pattern
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode pattern item: %w", err)
		}
		*it = PatternItem(p)
	default:
		return fmt.Errorf("decode item: unknown type %q", w.Type)
	}
	return nil
}
