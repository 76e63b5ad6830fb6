package tool

import (
	"image"
	"image/color"
	"testing"

	"pixelforge/internal/canvas"
	"pixelforge/internal/history"
)

func TestBrushStroke(t *testing.T) {
	s := canvas.NewState(64, 64)
	tr := history.NewStrokeTracker()
	br := NewBrush(color.RGBA{255, 0, 0, 255})

	br.Begin(s, tr, image.Pt(10, 10))
	br.Move(s, tr, image.Pt(30, 10))
	cmd := br.End(s, tr)

	if cmd == nil {
		t.Fatalf("stroke produced no command")
	}
	// Stamps are contiguous along the path.
	for x := 10; x <= 30; x++ {
		if got := s.ActiveLayer().Pixels.At(x, 10); got != (color.RGBA{255, 0, 0, 255}) {
			t.Fatalf("gap in stroke at x=%d: %v", x, got)
		}
	}
	// Pixels outside the stamp radius are untouched.
	if got := s.ActiveLayer().Pixels.At(20, 30); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("stray paint at (20,30): %v", got)
	}

	cmd.Undo(s)
	if got := s.ActiveLayer().Pixels.At(20, 10); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("undo left paint: %v", got)
	}
}

func TestBrushRespectsSelection(t *testing.T) {
	s := canvas.NewState(64, 64)
	s.ApplySelection(canvas.ShapeRectangle, image.Rect(0, 0, 16, 64), canvas.SelectReplace)

	tr := history.NewStrokeTracker()
	br := NewBrush(color.RGBA{255, 0, 0, 255})
	br.Begin(s, tr, image.Pt(16, 20)) // stamp straddles the selection edge
	br.End(s, tr)

	if got := s.ActiveLayer().Pixels.At(14, 20); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("selected side not painted: %v", got)
	}
	if got := s.ActiveLayer().Pixels.At(18, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("unselected side painted: %v", got)
	}
}

func TestEraserStroke(t *testing.T) {
	s := canvas.NewState(64, 64)
	tr := history.NewStrokeTracker()
	er := NewEraser()

	er.Begin(s, tr, image.Pt(20, 20))

	// Nothing erased until the gesture ends.
	if got := s.ActiveLayer().Pixels.At(20, 20); got.A != 255 {
		t.Fatalf("eraser touched the layer mid-gesture: %v", got)
	}

	cmd := er.End(s, tr)
	if cmd == nil {
		t.Fatalf("erase produced no command")
	}
	if got := s.ActiveLayer().Pixels.At(20, 20); got.A != 0 {
		t.Fatalf("pixel not erased: %v", got)
	}

	cmd.Undo(s)
	if got := s.ActiveLayer().Pixels.At(20, 20); got.A != 255 {
		t.Fatalf("undo did not restore: %v", got)
	}
}

func TestShapeLineCommit(t *testing.T) {
	s := canvas.NewState(64, 64)
	tr := history.NewStrokeTracker()
	sh := NewShape(KindLine, 1, 0, 0, 1)
	sh.LineWidth = 3

	sh.Begin(s, tr, image.Pt(5, 32))
	sh.Drag(s, tr, image.Pt(60, 32))
	cmd := sh.End(s, tr)

	if cmd == nil {
		t.Fatalf("shape produced no command")
	}
	got := s.ActiveLayer().Pixels.At(30, 32)
	if got.R < 200 || got.G > 60 {
		t.Fatalf("line not drawn at midpoint: %v", got)
	}
}

func TestShapeRectanglePreviewOnlyUntilEnd(t *testing.T) {
	s := canvas.NewState(64, 64)
	tr := history.NewStrokeTracker()
	sh := NewShape(KindRectangle, 0, 0, 1, 1)
	sh.Filled = true

	sh.Begin(s, tr, image.Pt(10, 10))
	sh.Drag(s, tr, image.Pt(30, 30))

	if got := s.ActiveLayer().Pixels.At(20, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("shape leaked into layer before commit: %v", got)
	}
	// The composite shows the preview.
	comp := s.Composite().RGBAAt(20, 20)
	if comp.B < 200 {
		t.Fatalf("preview not visible in composite: %v", comp)
	}

	sh.End(s, tr)
	if got := s.ActiveLayer().Pixels.At(20, 20); got.B < 200 {
		t.Fatalf("commit missed: %v", got)
	}
}

func TestShapeCancelLeavesLayerClean(t *testing.T) {
	s := canvas.NewState(64, 64)
	tr := history.NewStrokeTracker()
	sh := NewShape(KindEllipse, 0, 1, 0, 1)
	sh.Filled = true

	sh.Begin(s, tr, image.Pt(10, 10))
	sh.Drag(s, tr, image.Pt(50, 50))
	sh.Cancel(s, tr)

	if s.PreviewLayer != nil {
		t.Fatalf("overlay survived cancel")
	}
	if got := s.ActiveLayer().Pixels.At(30, 30); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("cancel altered the layer: %v", got)
	}
}
