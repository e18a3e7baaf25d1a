// Package compare implements the before/after comparison: the divider
// state driven by pointer events, and a server-side composite of the two
// images split at the divider.
package compare

import (
	"strconv"
)

// DefaultPosition is where the divider starts, in percent.
const DefaultPosition = 50.0

// Slider tracks the divider position while a pointer drags it. The zero
// value is not ready for use; call NewSlider.
type Slider struct {
	position float64
	dragging bool
}

// NewSlider returns a slider centred at DefaultPosition.
func NewSlider() *Slider {
	return &Slider{position: DefaultPosition}
}

// Position returns the divider position in [0, 100].
func (s *Slider) Position() float64 { return s.position }

// Dragging reports whether a pointer is currently pressed.
func (s *Slider) Dragging() bool { return s.dragging }

// Press starts a drag. The divider does not jump to the press point.
func (s *Slider) Press() { s.dragging = true }

// Release ends a drag.
func (s *Slider) Release() { s.dragging = false }

// Leave ends a drag when the pointer leaves the tracking surface.
func (s *Slider) Leave() { s.dragging = false }

// Move updates the position from a pointer at clientX x over a surface
// starting at left with the given width. It is ignored unless dragging
// and returns the resulting position.
func (s *Slider) Move(x, left, width float64) float64 {
	if !s.dragging || width <= 0 {
		return s.position
	}
	s.position = Clamp((x - left) / width * 100)
	return s.position
}

// Reset restores the initial state, as when the view is reopened.
func (s *Slider) Reset() {
	s.position = DefaultPosition
	s.dragging = false
}

// ClipPath returns the CSS clip-path revealing the original image left of
// the divider.
func (s *Slider) ClipPath() string {
	return ClipPath(s.position)
}

// Clamp limits p to [0, 100]. NaN maps to 0.
func Clamp(p float64) float64 {
	switch {
	case p != p, p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// ClipPath formats the polygon for position p.
func ClipPath(p float64) string {
	v := strconv.FormatFloat(Clamp(p), 'f', -1, 64)
	return "polygon(0 0, " + v + "% 0, " + v + "% 100%, 0 100%)"
}
