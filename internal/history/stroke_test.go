package history

import (
	"image"
	"image/color"
	"testing"

	"pixelforge/internal/canvas"
)

func TestStrokeTrackerDirect(t *testing.T) {
	s := canvas.NewState(32, 32)
	m := NewManager()
	tr := NewStrokeTracker()

	tr.StartDirect(s, "Brush Stroke")
	if !tr.Active() {
		t.Fatalf("tracker not active after start")
	}

	red := color.RGBA{255, 0, 0, 255}
	for x := 5; x < 15; x++ {
		s.ActiveLayer().Pixels.Set(x, 10, red)
	}
	tr.ExpandBounds(image.Rect(5, 10, 15, 11))

	cmd := tr.Finish(s)
	if cmd == nil {
		t.Fatalf("finish returned no command")
	}
	if tr.Active() {
		t.Fatalf("tracker still active after finish")
	}
	m.Push(cmd)

	m.Undo(s)
	if got := s.ActiveLayer().Pixels.At(10, 10); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("undo did not restore pre-stroke pixels: %v", got)
	}
	m.Redo(s)
	if got := s.ActiveLayer().Pixels.At(10, 10); got != red {
		t.Fatalf("redo did not restore stroke: %v", got)
	}
}

func TestStrokeTrackerPreview(t *testing.T) {
	s := canvas.NewState(32, 32)
	tr := NewStrokeTracker()

	tr.StartPreview(s, "Line")
	if s.PreviewLayer == nil {
		t.Fatalf("preview overlay not installed")
	}

	blue := color.RGBA{0, 0, 255, 255}
	s.PreviewLayer.Set(3, 3, blue)
	tr.ExpandBounds(image.Rect(3, 3, 4, 4))

	// Layer untouched while the gesture is live.
	if got := s.ActiveLayer().Pixels.At(3, 3); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("preview leaked into layer: %v", got)
	}

	cmd := tr.Finish(s)
	if cmd == nil {
		t.Fatalf("finish returned no command")
	}
	if s.PreviewLayer != nil {
		t.Fatalf("overlay not cleared by finish")
	}
	if got := s.ActiveLayer().Pixels.At(3, 3); got != blue {
		t.Fatalf("commit missed: %v", got)
	}

	cmd.Undo(s)
	if got := s.ActiveLayer().Pixels.At(3, 3); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("undo did not revert commit: %v", got)
	}
}

func TestStrokeTrackerEmptyGesture(t *testing.T) {
	s := canvas.NewState(16, 16)
	tr := NewStrokeTracker()

	t.Run("direct no bounds", func(t *testing.T) {
		tr.StartDirect(s, "Brush Stroke")
		if cmd := tr.Finish(s); cmd != nil {
			t.Fatalf("empty gesture produced a command")
		}
	})

	t.Run("preview no bounds", func(t *testing.T) {
		tr.StartPreview(s, "Line")
		if cmd := tr.Finish(s); cmd != nil {
			t.Fatalf("empty preview gesture produced a command")
		}
		if s.PreviewLayer != nil {
			t.Fatalf("overlay left behind")
		}
	})

	t.Run("bounds fully off canvas", func(t *testing.T) {
		tr.StartDirect(s, "Brush Stroke")
		tr.ExpandBounds(image.Rect(100, 100, 110, 110))
		if cmd := tr.Finish(s); cmd != nil {
			t.Fatalf("off-canvas gesture produced a command")
		}
	})
}

func TestStrokeTrackerCancelDirect(t *testing.T) {
	s := canvas.NewState(16, 16)
	tr := NewStrokeTracker()

	tr.StartDirect(s, "Brush Stroke")
	s.ActiveLayer().Pixels.Set(4, 4, color.RGBA{255, 0, 0, 255})
	tr.ExpandBounds(image.Rect(4, 4, 5, 5))

	tr.Cancel(s)
	if tr.Active() {
		t.Fatalf("tracker active after cancel")
	}
	if got := s.ActiveLayer().Pixels.At(4, 4); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("cancel did not restore layer: %v", got)
	}
}

func TestStrokeTrackerCancelPreview(t *testing.T) {
	s := canvas.NewState(16, 16)
	tr := NewStrokeTracker()

	tr.StartPreview(s, "Line")
	s.PreviewLayer.Set(4, 4, color.RGBA{255, 0, 0, 255})
	tr.ExpandBounds(image.Rect(4, 4, 5, 5))

	tr.Cancel(s)
	if s.PreviewLayer != nil {
		t.Fatalf("overlay survived cancel")
	}
	if got := s.ActiveLayer().Pixels.At(4, 4); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("cancel altered the layer: %v", got)
	}
}

func TestStrokeTrackerBoundsUnion(t *testing.T) {
	s := canvas.NewState(64, 64)
	tr := NewStrokeTracker()

	tr.StartDirect(s, "Brush Stroke")
	s.ActiveLayer().Pixels.Set(2, 2, color.RGBA{1, 0, 0, 255})
	s.ActiveLayer().Pixels.Set(50, 50, color.RGBA{2, 0, 0, 255})
	tr.ExpandBounds(image.Rect(2, 2, 3, 3))
	tr.ExpandBounds(image.Rect(50, 50, 51, 51))

	cmd := tr.Finish(s)
	if cmd == nil {
		t.Fatalf("no command")
	}
	if want := image.Rect(2, 2, 51, 51); !cmd.After.Bounds.Eq(want) {
		t.Fatalf("patch bounds = %v, want union %v", cmd.After.Bounds, want)
	}

	cmd.Undo(s)
	if got := s.ActiveLayer().Pixels.At(50, 50); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("undo missed far pixel: %v", got)
	}
}
