package canvas

import (
	"image"
	"image/color"
)

// SelectionMode controls how a new selection shape combines with the
// existing mask.
type SelectionMode int

const (
	SelectReplace SelectionMode = iota
	SelectAdd
	SelectSubtract
	SelectIntersect
)

func (m SelectionMode) String() string {
	switch m {
	case SelectReplace:
		return "Replace"
	case SelectAdd:
		return "Add"
	case SelectSubtract:
		return "Subtract"
	case SelectIntersect:
		return "Intersect"
	default:
		return "Unknown"
	}
}

// SelectionShape is the geometric primitive rasterized into the mask.
type SelectionShape int

const (
	ShapeRectangle SelectionShape = iota
	ShapeEllipse
)

// HasSelection reports whether a non-empty mask is active.
func (s *State) HasSelection() bool {
	return s.SelectionMask != nil
}

// ClearSelection drops the mask; subsequent edits affect the whole layer.
func (s *State) ClearSelection() {
	s.SelectionMask = nil
}

// SelectAll sets a fully opaque mask over the whole canvas.
func (s *State) SelectAll() {
	mask := image.NewGray(s.Bounds())
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}
	s.SelectionMask = mask
}

// SelectedAt returns the mask coverage at (x, y): 255 when no selection
// is active (everything editable), 0 outside the canvas.
func (s *State) SelectedAt(x, y int) uint8 {
	if s.SelectionMask == nil {
		return 255
	}
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return 0
	}
	return s.SelectionMask.GrayAt(x, y).Y
}

// ApplySelection rasterizes shape over r and combines it with the current
// mask per mode. A combination that selects nothing clears the mask.
func (s *State) ApplySelection(shape SelectionShape, r image.Rectangle, mode SelectionMode) {
	r = r.Canon().Intersect(s.Bounds())
	incoming := image.NewGray(s.Bounds())
	rasterizeShape(incoming, shape, r)

	if s.SelectionMask == nil || mode == SelectReplace {
		if mode == SelectSubtract || mode == SelectIntersect {
			// Subtract/intersect against no selection means against "all".
			s.SelectAll()
		} else {
			s.SelectionMask = incoming
			s.normalizeSelection()
			return
		}
	}

	dst := s.SelectionMask
	for i := range dst.Pix {
		a := dst.Pix[i]
		b := incoming.Pix[i]
		switch mode {
		case SelectAdd:
			if b > a {
				dst.Pix[i] = b
			}
		case SelectSubtract:
			if b >= a {
				dst.Pix[i] = 0
			} else {
				dst.Pix[i] = a - b
			}
		case SelectIntersect:
			if b < a {
				dst.Pix[i] = b
			}
		}
	}
	s.normalizeSelection()
}

// InvertSelection flips the mask over the whole canvas. With no active
// selection the result is no change (everything was already editable).
func (s *State) InvertSelection() {
	if s.SelectionMask == nil {
		return
	}
	for i := range s.SelectionMask.Pix {
		s.SelectionMask.Pix[i] = 255 - s.SelectionMask.Pix[i]
	}
	s.normalizeSelection()
}

// TranslateSelection shifts the mask by (dx, dy); coverage pushed off the
// canvas is discarded.
func (s *State) TranslateSelection(dx, dy int) {
	if s.SelectionMask == nil || (dx == 0 && dy == 0) {
		return
	}
	moved := image.NewGray(s.Bounds())
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			sx, sy := x-dx, y-dy
			if sx < 0 || sy < 0 || sx >= s.Width || sy >= s.Height {
				continue
			}
			moved.SetGray(x, y, s.SelectionMask.GrayAt(sx, sy))
		}
	}
	s.SelectionMask = moved
	s.normalizeSelection()
}

// SelectionBounds returns the tight bounding box of nonzero mask coverage.
func (s *State) SelectionBounds() (image.Rectangle, bool) {
	if s.SelectionMask == nil {
		return image.Rectangle{}, false
	}
	minX, minY := s.Width, s.Height
	maxX, maxY := -1, -1
	for y := 0; y < s.Height; y++ {
		row := s.SelectionMask.Pix[y*s.SelectionMask.Stride : y*s.SelectionMask.Stride+s.Width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// DeleteSelectedPixels erases the active layer inside the selection,
// scaling alpha by mask coverage for soft edges. Returns the affected
// bounds (empty when nothing was selected).
func (s *State) DeleteSelectedPixels() image.Rectangle {
	bounds, ok := s.SelectionBounds()
	if !ok {
		return image.Rectangle{}
	}
	pixels := s.ActiveLayer().Pixels
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cov := s.SelectedAt(x, y)
			if cov == 0 {
				continue
			}
			c := pixels.At(x, y)
			if cov == 255 {
				pixels.Set(x, y, color.RGBA{})
				continue
			}
			keep := 1 - float64(cov)/255
			c.A = to8(float64(c.A) / 255 * keep)
			pixels.Set(x, y, c)
		}
	}
	s.MarkDirty(bounds)
	return bounds
}

// FillSelectedPixels paints c over the active layer inside the selection,
// blending by mask coverage at soft edges. Returns the affected bounds.
func (s *State) FillSelectedPixels(c color.RGBA) image.Rectangle {
	bounds, ok := s.SelectionBounds()
	if !ok {
		if s.SelectionMask != nil {
			return image.Rectangle{}
		}
		bounds = s.Bounds()
	}
	pixels := s.ActiveLayer().Pixels
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cov := s.SelectedAt(x, y)
			if cov == 0 {
				continue
			}
			if cov == 255 {
				pixels.Set(x, y, c)
				continue
			}
			scaled := c
			scaled.A = to8(float64(c.A) / 255 * float64(cov) / 255)
			pixels.Set(x, y, BlendPixel(pixels.At(x, y), scaled, BlendNormal, 1.0))
		}
	}
	s.MarkDirty(bounds)
	return bounds
}

func (s *State) normalizeSelection() {
	if s.SelectionMask == nil {
		return
	}
	for _, v := range s.SelectionMask.Pix {
		if v != 0 {
			return
		}
	}
	s.SelectionMask = nil
}

func rasterizeShape(dst *image.Gray, shape SelectionShape, r image.Rectangle) {
	if r.Empty() {
		return
	}
	switch shape {
	case ShapeRectangle:
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := dst.Pix[y*dst.Stride+r.Min.X : y*dst.Stride+r.Max.X]
			for i := range row {
				row[i] = 255
			}
		}
	case ShapeEllipse:
		cx := float64(r.Min.X+r.Max.X-1) / 2
		cy := float64(r.Min.Y+r.Max.Y-1) / 2
		rx := float64(r.Dx()) / 2
		ry := float64(r.Dy()) / 2
		if rx == 0 || ry == 0 {
			return
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				nx := (float64(x) - cx) / rx
				ny := (float64(y) - cy) / ry
				if nx*nx+ny*ny <= 1 {
					dst.SetGray(x, y, color.Gray{Y: 255})
				}
			}
		}
	}
}
