package canvas

import (
	"image"
	"image/color"
)

const checkerSize = 8

var (
	checkerLight = color.RGBA{0xCC, 0xCC, 0xCC, 0xFF}
	checkerDark  = color.RGBA{0x99, 0x99, 0x99, 0xFF}
)

// draw is the raster drawing function. The raster is sized to the zoomed
// document, so w and h track imgSize.
func (ec *EditorCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	ec.drawCheckerboard(output)

	comp := ec.composite()
	if comp != nil {
		ec.blitScaled(output, comp)
	}

	if ec.selecting {
		r := image.Rectangle{Min: ec.selectStart, Max: ec.selectEnd}.Canon()
		ec.drawAnts(output, r)
	} else if bounds, ok := ec.state.Canvas.SelectionBounds(); ok {
		ec.drawAnts(output, bounds)
	}

	return output
}

// composite returns the document composite, rebuilding it only when the
// dirty generation has moved since the last draw.
func (ec *EditorCanvas) composite() *image.RGBA {
	s := ec.state.Canvas
	if s == nil {
		return nil
	}
	gen := s.DirtyGeneration()
	if ec.cached == nil || gen != ec.cachedGen {
		ec.cached = s.Composite()
		ec.cachedGen = gen
	}
	return ec.cached
}

// drawCheckerboard fills the output with the transparency pattern.
func (ec *EditorCanvas) drawCheckerboard(output *image.RGBA) {
	b := output.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := output.Pix[output.PixOffset(b.Min.X, y):output.PixOffset(b.Max.X, y)]
		for x := 0; x < b.Dx(); x++ {
			c := checkerLight
			if (x/checkerSize+y/checkerSize)%2 == 1 {
				c = checkerDark
			}
			row[x*4] = c.R
			row[x*4+1] = c.G
			row[x*4+2] = c.B
			row[x*4+3] = 0xFF
		}
	}
}

// blitScaled draws the composite onto the output at the current zoom using
// nearest-neighbor sampling, blending straight alpha over the checkerboard.
func (ec *EditorCanvas) blitScaled(output *image.RGBA, src *image.RGBA) {
	b := output.Bounds()
	srcB := src.Bounds()
	inv := 1.0 / ec.zoom

	for y := b.Min.Y; y < b.Max.Y; y++ {
		srcY := int(float64(y) * inv)
		if srcY >= srcB.Max.Y {
			break
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			srcX := int(float64(x) * inv)
			if srcX >= srcB.Max.X {
				break
			}
			si := src.PixOffset(srcX, srcY)
			a := int(src.Pix[si+3])
			if a == 0 {
				continue
			}
			di := output.PixOffset(x, y)
			if a == 255 {
				output.Pix[di] = src.Pix[si]
				output.Pix[di+1] = src.Pix[si+1]
				output.Pix[di+2] = src.Pix[si+2]
				continue
			}
			output.Pix[di] = uint8((int(src.Pix[si])*a + int(output.Pix[di])*(255-a)) / 255)
			output.Pix[di+1] = uint8((int(src.Pix[si+1])*a + int(output.Pix[di+1])*(255-a)) / 255)
			output.Pix[di+2] = uint8((int(src.Pix[si+2])*a + int(output.Pix[di+2])*(255-a)) / 255)
		}
	}
}

// drawAnts outlines a selection rectangle with a dashed black and white
// border. The rectangle is in image coordinates.
func (ec *EditorCanvas) drawAnts(output *image.RGBA, r image.Rectangle) {
	x1 := int(float64(r.Min.X) * ec.zoom)
	y1 := int(float64(r.Min.Y) * ec.zoom)
	x2 := int(float64(r.Max.X) * ec.zoom)
	y2 := int(float64(r.Max.Y) * ec.zoom)

	phase := ec.antsPhase
	for x := x1; x <= x2; x++ {
		setAnt(output, x, y1, x-x1+phase)
		setAnt(output, x, y2, x-x1+phase)
	}
	for y := y1; y <= y2; y++ {
		setAnt(output, x1, y, y-y1+phase)
		setAnt(output, x2, y, y-y1+phase)
	}
}

// setAnt writes one pixel of the dashed border, alternating every four
// pixels between black and white.
func setAnt(output *image.RGBA, x, y, step int) {
	b := output.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	c := color.RGBA{0, 0, 0, 255}
	if (step/4)%2 == 1 {
		c = color.RGBA{255, 255, 255, 255}
	}
	i := output.PixOffset(x, y)
	output.Pix[i] = c.R
	output.Pix[i+1] = c.G
	output.Pix[i+2] = c.B
	output.Pix[i+3] = 255
}
