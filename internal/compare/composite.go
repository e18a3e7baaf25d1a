package compare

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"

	"kartela/internal/imaging"
)

const (
	// dividerWidth is the width in pixels of the white divider line.
	dividerWidth = 2

	// MaxPixels caps each decoded input. 16 MP covers phone photos.
	MaxPixels = 16_000_000

	// MaxEdge caps the longest side of the rendered composite.
	MaxEdge = 1920
)

// fit returns w x h scaled down so the longest side is at most MaxEdge.
func fit(w, h int) (int, int) {
	longest := max(w, h)
	if longest <= MaxEdge {
		return w, h
	}
	scale := float64(MaxEdge) / float64(longest)
	return max(1, int(math.Round(float64(w)*scale))), max(1, int(math.Round(float64(h)*scale)))
}

// place draws src into r of dst, scaling only when the sizes differ.
func place(dst draw.Image, r image.Rectangle, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() == r.Dx() && sb.Dy() == r.Dy() {
		draw.Draw(dst, r, src, sb.Min, draw.Src)
		return
	}
	draw.BiLinear.Scale(dst, r, src, sb, draw.Src, nil)
}

// Composite renders original left of the divider and processed right of
// it. The output has the original's aspect ratio with its longest side
// capped at MaxEdge; both images are scaled to that size.
func Composite(original, processed image.Image, position float64) *image.RGBA {
	ob := original.Bounds()
	w, h := fit(ob.Dx(), ob.Dy())
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	place(dst, dst.Bounds(), processed)

	split := int(math.Round(Clamp(position) / 100 * float64(w)))
	if split > 0 {
		left := dst.SubImage(image.Rect(0, 0, split, h)).(*image.RGBA)
		place(left, dst.Bounds(), original)
	}

	if split > 0 && split < w {
		x0 := max(split-dividerWidth/2, 0)
		x1 := min(x0+dividerWidth, w)
		draw.Draw(dst, image.Rect(x0, 0, x1, h), image.NewUniform(color.White), image.Point{}, draw.Src)
	}
	return dst
}

// Render decodes both images, composites them and encodes a PNG. Inputs
// above MaxPixels are rejected with imaging.ErrTooLarge.
func Render(original, processed []byte, position float64) ([]byte, error) {
	orig, _, err := imaging.DecodeLimited(original, MaxPixels)
	if err != nil {
		return nil, fmt.Errorf("original: %w", err)
	}
	proc, _, err := imaging.DecodeLimited(processed, MaxPixels)
	if err != nil {
		return nil, fmt.Errorf("processed: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Composite(orig, proc, position)); err != nil {
		return nil, fmt.Errorf("encode composite: %w", err)
	}
	return buf.Bytes(), nil
}
