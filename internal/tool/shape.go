package tool

import (
	"image"

	"pixelforge/internal/canvas"
	"pixelforge/internal/history"

	"github.com/fogleman/gg"
)

// Shape draws line, rectangle, and ellipse primitives. While the pointer
// drags, the shape is rendered into the preview overlay; releasing
// commits it through the tracker.
type Shape struct {
	Kind      Kind // KindLine, KindRectangle, or KindEllipse
	Color     [4]float64
	LineWidth float64
	Filled    bool

	anchor     image.Point
	lastBounds image.Rectangle
}

// NewShape returns a shape tool with a 2px stroke in the given color.
func NewShape(kind Kind, r, g, b, a float64) *Shape {
	return &Shape{Kind: kind, Color: [4]float64{r, g, b, a}, LineWidth: 2}
}

// Begin starts a preview-mode gesture anchored at p.
func (sh *Shape) Begin(s *canvas.State, tr *history.StrokeTracker, p image.Point) {
	tr.StartPreview(s, sh.commandName())
	sh.anchor = p
	sh.lastBounds = image.Rectangle{}
	sh.Drag(s, tr, p)
}

// Drag re-renders the preview for the current pointer position.
func (sh *Shape) Drag(s *canvas.State, tr *history.StrokeTracker, p image.Point) {
	if !tr.Active() || s.PreviewLayer == nil {
		return
	}

	dc := gg.NewContext(s.Width, s.Height)
	dc.SetRGBA(sh.Color[0], sh.Color[1], sh.Color[2], sh.Color[3])
	dc.SetLineWidth(sh.LineWidth)

	switch sh.Kind {
	case KindLine:
		dc.DrawLine(float64(sh.anchor.X), float64(sh.anchor.Y), float64(p.X), float64(p.Y))
		dc.Stroke()
	case KindRectangle:
		r := image.Rectangle{Min: sh.anchor, Max: p}.Canon()
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		sh.paint(dc)
	case KindEllipse:
		r := image.Rectangle{Min: sh.anchor, Max: p}.Canon()
		dc.DrawEllipse(
			float64(r.Min.X)+float64(r.Dx())/2,
			float64(r.Min.Y)+float64(r.Dy())/2,
			float64(r.Dx())/2,
			float64(r.Dy())/2,
		)
		sh.paint(dc)
	}

	rendered, ok := dc.Image().(*image.RGBA)
	if !ok {
		return
	}
	s.PreviewLayer = canvas.FromRGBA(rendered)

	bounds := sh.gestureBounds(p)
	// Repaint both where the shape is now and where it was.
	dirty := bounds
	if !sh.lastBounds.Empty() {
		dirty = dirty.Union(sh.lastBounds)
	}
	sh.lastBounds = bounds
	tr.ExpandBounds(bounds)
	s.MarkDirty(dirty)
}

// End commits the shape to the active layer and returns its command.
func (sh *Shape) End(s *canvas.State, tr *history.StrokeTracker) *history.StrokeCommand {
	return tr.Finish(s)
}

// Cancel abandons the shape without touching the layer.
func (sh *Shape) Cancel(s *canvas.State, tr *history.StrokeTracker) {
	tr.Cancel(s)
}

func (sh *Shape) paint(dc *gg.Context) {
	if sh.Filled {
		dc.Fill()
	} else {
		dc.Stroke()
	}
}

func (sh *Shape) commandName() string {
	return sh.Kind.String()
}

// gestureBounds covers the shape between anchor and p plus line-width
// and anti-aliasing margins.
func (sh *Shape) gestureBounds(p image.Point) image.Rectangle {
	r := image.Rectangle{Min: sh.anchor, Max: p}.Canon()
	margin := int(sh.LineWidth) + 2
	return image.Rect(r.Min.X-margin, r.Min.Y-margin, r.Max.X+margin+1, r.Max.Y+margin+1)
}
