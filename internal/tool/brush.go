package tool

import (
	"image"
	"image/color"
	"math"

	"pixelforge/internal/canvas"
	"pixelforge/internal/history"
)

// Brush paints round stamps directly onto the active layer. Coverage from
// the selection mask scales the stamp's alpha so strokes respect soft
// selection edges.
type Brush struct {
	Size  float64
	Color color.RGBA

	last image.Point
}

// NewBrush returns a brush with a sensible default size.
func NewBrush(c color.RGBA) *Brush {
	return &Brush{Size: 8, Color: c}
}

// Begin starts a direct-mode gesture at p.
func (b *Brush) Begin(s *canvas.State, tr *history.StrokeTracker, p image.Point) {
	tr.StartDirect(s, "Brush Stroke")
	b.last = p
	b.stamp(s, tr, p)
}

// Move extends the stroke to p, filling the gap from the previous point.
func (b *Brush) Move(s *canvas.State, tr *history.StrokeTracker, p image.Point) {
	if !tr.Active() {
		return
	}
	interpolate(b.last, p, b.Size, func(q image.Point) {
		b.stamp(s, tr, q)
	})
	b.last = p
}

// End finishes the gesture; the returned command is nil for empty strokes.
func (b *Brush) End(s *canvas.State, tr *history.StrokeTracker) *history.StrokeCommand {
	return tr.Finish(s)
}

func (b *Brush) stamp(s *canvas.State, tr *history.StrokeTracker, p image.Point) {
	bounds := stampBounds(p, b.Size)
	pixels := s.ActiveLayer().Pixels
	radius := b.Size / 2

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if math.Hypot(float64(x-p.X), float64(y-p.Y)) > radius {
				continue
			}
			cov := s.SelectedAt(x, y)
			if cov == 0 {
				continue
			}
			c := b.Color
			if cov < 255 {
				c.A = uint8(int(c.A) * int(cov) / 255)
			}
			pixels.Set(x, y, canvas.BlendPixel(pixels.At(x, y), c, canvas.BlendNormal, 1.0))
		}
	}
	tr.ExpandBounds(bounds)
	s.MarkDirty(bounds)
}

// Eraser removes paint by drawing an alpha knock-out mask into the
// preview overlay; the erase only lands on the layer when the gesture
// finishes.
type Eraser struct {
	Size float64

	last image.Point
}

// NewEraser returns an eraser with a sensible default size.
func NewEraser() *Eraser {
	return &Eraser{Size: 16}
}

// Begin starts a preview-mode gesture in eraser mode at p.
func (e *Eraser) Begin(s *canvas.State, tr *history.StrokeTracker, p image.Point) {
	tr.StartPreview(s, "Eraser Stroke")
	s.PreviewIsEraser = true
	e.last = p
	e.stamp(s, tr, p)
}

// Move extends the erase to p.
func (e *Eraser) Move(s *canvas.State, tr *history.StrokeTracker, p image.Point) {
	if !tr.Active() {
		return
	}
	interpolate(e.last, p, e.Size, func(q image.Point) {
		e.stamp(s, tr, q)
	})
	e.last = p
}

// End commits the erase and returns its command.
func (e *Eraser) End(s *canvas.State, tr *history.StrokeTracker) *history.StrokeCommand {
	return tr.Finish(s)
}

func (e *Eraser) stamp(s *canvas.State, tr *history.StrokeTracker, p image.Point) {
	if s.PreviewLayer == nil {
		return
	}
	bounds := stampBounds(p, e.Size)
	radius := e.Size / 2

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if math.Hypot(float64(x-p.X), float64(y-p.Y)) > radius {
				continue
			}
			cov := s.SelectedAt(x, y)
			if cov == 0 {
				continue
			}
			s.PreviewLayer.Set(x, y, color.RGBA{A: cov})
		}
	}
	tr.ExpandBounds(bounds)
	s.MarkDirty(bounds)
}
