// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidHex is returned when a colour string is not of the form #RRGGBB.
var ErrInvalidHex = errors.New("invalid hex colour")

// RGB holds the three 8-bit channels of a colour.
type RGB struct {
	R int `json:"r" validate:"gte=0,lte=255"`
	G int `json:"g" validate:"gte=0,lte=255"`
	B int `json:"b" validate:"gte=0,lte=255"`
}

// Valid reports whether every channel is within [0,255].
func (c RGB) Valid() bool {
	return inByte(c.R) && inByte(c.G) && inByte(c.B)
}

// Hex formats the colour as an upper-case "#RRGGBB" string.
// Channels outside [0,255] are clamped.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", clampByte(c.R), clampByte(c.G), clampByte(c.B))
}

// ParseHex parses "#RRGGBB" (the leading '#' is optional, case-insensitive).
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return RGB{R: int(v >> 16 & 0xFF), G: int(v >> 8 & 0xFF), B: int(v & 0xFF)}, nil
}

// Color is a solid paint colour swatch.
type Color struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Code string `json:"code"`
	RGB  RGB    `json:"rgb"`
	Hex  string `json:"hex"`
}

// Normalize keeps Hex and RGB in sync. A non-empty Hex is authoritative and
// is rewritten in canonical upper-case form; otherwise Hex is derived from RGB.
func (c *Color) Normalize() error {
	if strings.TrimSpace(c.Hex) == "" {
		if !c.RGB.Valid() {
			return fmt.Errorf("colour %q: rgb channels must be within 0-255", c.ID)
		}
		c.Hex = c.RGB.Hex()
		return nil
	}
	rgb, err := ParseHex(c.Hex)
	if err != nil {
		return fmt.Errorf("colour %q: %w", c.ID, err)
	}
	c.RGB = rgb
	c.Hex = rgb.Hex()
	return nil
}

func inByte(v int) bool { return v >= 0 && v <= 255 }

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
