// Package compose builds the rounded-square icon layer used on tiles.
//
// Source icons are force-fit to a square (app store icon slots are square, so
// aspect ratio is intentionally not preserved) and clipped to a rounded
// rectangle through an anti-aliased alpha mask. When no icon could be
// resolved, [PlaceholderIcon] produces a flat-filled rounded rectangle with
// the same shape contract.
package compose

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// RoundedIcon resizes src to a targetSize square and clips it to a rounded
// rectangle with corner radius cornerFrac*targetSize. The result has
// transparent corners suitable for alpha compositing onto any background.
func RoundedIcon(src image.Image, targetSize int, cornerFrac float64) *image.NRGBA {
	resized := image.NewNRGBA(image.Rect(0, 0, targetSize, targetSize))
	draw.CatmullRom.Scale(resized, resized.Bounds(), src, src.Bounds(), draw.Src, nil)

	mask := RoundedRectMask(targetSize, cornerFrac*float64(targetSize))
	applyMask(resized, mask)
	return resized
}

// PlaceholderIcon returns a flat-filled rounded rectangle of the given size,
// corner radius cornerFrac*size, and fill color.
func PlaceholderIcon(size int, cornerFrac float64, fill color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	mask := RoundedRectMask(size, cornerFrac*float64(size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			a := mask.AlphaAt(x, y).A
			if a == 0 {
				continue
			}
			c := fill
			c.A = uint8(uint16(fill.A) * uint16(a) / 255)
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// RoundedRectMask returns a size x size alpha mask: 255 inside a rounded
// rectangle of the given corner radius, 0 outside, with a one-pixel
// anti-aliased edge.
func RoundedRectMask(size int, radius float64) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, size, size))
	half := float64(size) / 2.0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := roundedBoxSDF(float64(x)+0.5-half, float64(y)+0.5-half, half, half, radius)
			switch {
			case d <= -0.5:
				mask.SetAlpha(x, y, color.Alpha{A: 255})
			case d < 0.5:
				mask.SetAlpha(x, y, color.Alpha{A: uint8(math.Round(255 * (0.5 - d)))})
			}
		}
	}
	return mask
}

// applyMask multiplies img's alpha channel by the mask in place.
func applyMask(img *image.NRGBA, mask *image.Alpha) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			m := mask.AlphaAt(x, y).A
			if m == 255 {
				continue
			}
			p := img.NRGBAAt(x, y)
			p.A = uint8(uint16(p.A) * uint16(m) / 255)
			img.SetNRGBA(x, y, p)
		}
	}
}

// roundedBoxSDF returns the signed distance from (px, py) to a rounded rect
// centered at the origin with half-extents (bx, by) and corner radius r.
// Negative = inside, positive = outside.
func roundedBoxSDF(px, py, bx, by, r float64) float64 {
	qx := math.Abs(px) - bx + r
	qy := math.Abs(py) - by + r
	return math.Sqrt(math.Max(qx, 0)*math.Max(qx, 0)+math.Max(qy, 0)*math.Max(qy, 0)) +
		math.Min(math.Max(qx, qy), 0) - r
}
