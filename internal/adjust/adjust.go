// Package adjust implements per-pixel color adjustments on layer pixels.
// All operations mutate the image in place and leave alpha untouched
// unless stated otherwise. An optional coverage mask restricts the effect
// to selected pixels, with partial coverage blending the adjusted and
// original values.
package adjust

import (
	"image/color"
	"sort"

	"pixelforge/internal/canvas"
	"pixelforge/pkg/colorutil"

	"gonum.org/v1/gonum/stat"
)

// Mask reports selection coverage at a pixel: 0 leaves it untouched,
// 255 applies the adjustment fully. A nil Mask means full coverage.
type Mask func(x, y int) uint8

// Brightness shifts each channel by delta (-255 to 255).
func Brightness(img *canvas.TiledImage, delta float64, mask Mask) {
	pointOp(img, mask, func(c color.RGBA) color.RGBA {
		c.R = colorutil.Clamp8(float64(c.R) + delta)
		c.G = colorutil.Clamp8(float64(c.G) + delta)
		c.B = colorutil.Clamp8(float64(c.B) + delta)
		return c
	})
}

// Contrast scales channel distance from mid-gray. amount is -100 to 100;
// 0 is identity.
func Contrast(img *canvas.TiledImage, amount float64, mask Mask) {
	factor := (259 * (amount + 255)) / (255 * (259 - amount))
	pointOp(img, mask, func(c color.RGBA) color.RGBA {
		c.R = colorutil.Clamp8(factor*(float64(c.R)-128) + 128)
		c.G = colorutil.Clamp8(factor*(float64(c.G)-128) + 128)
		c.B = colorutil.Clamp8(factor*(float64(c.B)-128) + 128)
		return c
	})
}

// HueSaturation rotates hue by hueShift degrees and scales saturation by
// satScale (1.0 = unchanged).
func HueSaturation(img *canvas.TiledImage, hueShift, satScale float64, mask Mask) {
	pointOp(img, mask, func(c color.RGBA) color.RGBA {
		h, s, v := colorutil.RGBToHSV(float64(c.R), float64(c.G), float64(c.B))
		h += hueShift
		s *= satScale
		if s > 1 {
			s = 1
		}
		r, g, b := colorutil.HSVToRGB(h, s, v)
		c.R = colorutil.Clamp8(r)
		c.G = colorutil.Clamp8(g)
		c.B = colorutil.Clamp8(b)
		return c
	})
}

// Invert replaces each color channel with its complement.
func Invert(img *canvas.TiledImage, mask Mask) {
	pointOp(img, mask, func(c color.RGBA) color.RGBA {
		c.R = 255 - c.R
		c.G = 255 - c.G
		c.B = 255 - c.B
		return c
	})
}

// Grayscale converts each pixel to its Rec. 601 luma.
func Grayscale(img *canvas.TiledImage, mask Mask) {
	pointOp(img, mask, func(c color.RGBA) color.RGBA {
		y := colorutil.Clamp8(colorutil.Luminance(float64(c.R), float64(c.G), float64(c.B)))
		c.R, c.G, c.B = y, y, y
		return c
	})
}

// AutoContrast stretches the luminance range so the clipPercent darkest
// and brightest pixels saturate. Fully transparent pixels are excluded
// from the histogram. A degenerate range (uniform image) is a no-op.
func AutoContrast(img *canvas.TiledImage, clipPercent float64, mask Mask) {
	if clipPercent < 0 {
		clipPercent = 0
	}
	if clipPercent > 49 {
		clipPercent = 49
	}

	var lumas []float64
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			c := img.At(x, y)
			if c.A == 0 {
				continue
			}
			lumas = append(lumas, colorutil.Luminance(float64(c.R), float64(c.G), float64(c.B)))
		}
	}
	if len(lumas) < 2 {
		return
	}
	sort.Float64s(lumas)

	lo := stat.Quantile(clipPercent/100, stat.Empirical, lumas, nil)
	hi := stat.Quantile(1-clipPercent/100, stat.Empirical, lumas, nil)
	if hi-lo < 1 {
		return
	}
	scale := 255 / (hi - lo)

	pointOp(img, mask, func(c color.RGBA) color.RGBA {
		c.R = colorutil.Clamp8((float64(c.R) - lo) * scale)
		c.G = colorutil.Clamp8((float64(c.G) - lo) * scale)
		c.B = colorutil.Clamp8((float64(c.B) - lo) * scale)
		return c
	})
}

// pointOp applies fn to every pixel, blending by mask coverage.
func pointOp(img *canvas.TiledImage, mask Mask, fn func(color.RGBA) color.RGBA) {
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			cov := uint8(255)
			if mask != nil {
				cov = mask(x, y)
			}
			if cov == 0 {
				continue
			}
			orig := img.At(x, y)
			adjusted := fn(orig)
			if cov < 255 {
				adjusted = lerpRGBA(orig, adjusted, float64(cov)/255)
			}
			img.Set(x, y, adjusted)
		}
	}
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: colorutil.Clamp8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: colorutil.Clamp8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: colorutil.Clamp8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: colorutil.Clamp8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}
