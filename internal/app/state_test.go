package app

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"pixelforge/internal/canvas"
)

func TestLayerOpsRecordHistory(t *testing.T) {
	s := NewState()

	s.AddLayer("paint")
	if len(s.Canvas.Layers) != 2 {
		t.Fatalf("layer not added")
	}
	if !s.History.CanUndo() {
		t.Fatalf("add layer not recorded")
	}

	s.Undo()
	if len(s.Canvas.Layers) != 1 {
		t.Fatalf("undo did not remove layer")
	}
	s.Redo()
	if len(s.Canvas.Layers) != 2 {
		t.Fatalf("redo did not restore layer")
	}
}

func TestAttributeOpsIgnoreNoOps(t *testing.T) {
	s := NewState()

	s.SetLayerVisibility(0, true) // already visible
	s.SetLayerOpacity(0, 1.0)     // already 1.0
	s.RenameLayer(0, "Background")
	s.SetLayerBlendMode(0, canvas.BlendNormal)

	if s.History.CanUndo() {
		t.Fatalf("no-op attribute changes were recorded")
	}
}

func TestModifiedFlagAndEvents(t *testing.T) {
	s := NewState()

	var layersEvents, historyEvents int
	s.On(EventLayersChanged, func(interface{}) { layersEvents++ })
	s.On(EventHistoryChanged, func(interface{}) { historyEvents++ })

	s.AddLayer("")
	if !s.Modified {
		t.Fatalf("edit did not set modified flag")
	}
	if layersEvents == 0 || historyEvents == 0 {
		t.Fatalf("events not emitted: layers=%d history=%d", layersEvents, historyEvents)
	}
}

func TestApplyAdjustmentUndo(t *testing.T) {
	s := NewState()
	s.ApplyAdjustment(AdjustInvert, 0, 0)

	if got := s.Canvas.ActiveLayer().Pixels.At(1, 1); got != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("invert missed: %v", got)
	}
	s.Undo()
	if got := s.Canvas.ActiveLayer().Pixels.At(1, 1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("undo missed: %v", got)
	}
}

func TestAdjustmentHonorsSelection(t *testing.T) {
	s := NewState()
	s.Select(canvas.ShapeRectangle, image.Rect(0, 0, 10, 10), canvas.SelectReplace)
	s.ApplyAdjustment(AdjustInvert, 0, 0)

	if got := s.Canvas.ActiveLayer().Pixels.At(5, 5); got != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("selected pixel not inverted: %v", got)
	}
	if got := s.Canvas.ActiveLayer().Pixels.At(20, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("unselected pixel inverted: %v", got)
	}
}

func TestResizeCanvasClearsHistory(t *testing.T) {
	s := NewState()
	s.AddLayer("a")
	if !s.History.CanUndo() {
		t.Fatalf("setup: nothing recorded")
	}

	s.ResizeCanvas(200, 100)
	if s.History.CanUndo() || s.History.CanRedo() {
		t.Fatalf("resize did not clear history")
	}
	if s.Canvas.Width != 200 || s.Canvas.Height != 100 {
		t.Fatalf("resize missed: %dx%d", s.Canvas.Width, s.Canvas.Height)
	}
}

func TestQuarterRotationSwapsDimensionsAndClearsHistory(t *testing.T) {
	s := NewState()
	s.AddLayer("a")

	w, h := s.Canvas.Width, s.Canvas.Height
	s.ApplyTransform(TransformRotate90CW)

	if s.Canvas.Width != h || s.Canvas.Height != w {
		t.Fatalf("dimensions = %dx%d, want swapped", s.Canvas.Width, s.Canvas.Height)
	}
	if s.History.CanUndo() {
		t.Fatalf("quarter rotation left stale history")
	}
}

func TestFlipTransformUndo(t *testing.T) {
	s := NewState()
	s.Canvas.ActiveLayer().Pixels.Set(0, 0, color.RGBA{1, 2, 3, 255})

	s.ApplyTransform(TransformFlipHorizontal)
	if got := s.Canvas.ActiveLayer().Pixels.At(s.Canvas.Width-1, 0); got != (color.RGBA{1, 2, 3, 255}) {
		t.Fatalf("flip missed: %v", got)
	}
	s.Undo()
	if got := s.Canvas.ActiveLayer().Pixels.At(0, 0); got != (color.RGBA{1, 2, 3, 255}) {
		t.Fatalf("undo missed: %v", got)
	}
}

func TestMergeDownUndoRestoresBothLayers(t *testing.T) {
	s := NewState()
	s.AddLayer("top")
	s.Canvas.ActiveLayer().Pixels.Set(2, 2, color.RGBA{9, 9, 9, 255})

	s.MergeDown(1)
	if len(s.Canvas.Layers) != 1 {
		t.Fatalf("merge missed")
	}
	s.Undo()
	if len(s.Canvas.Layers) != 2 {
		t.Fatalf("undo did not split layers")
	}
	if got := s.Canvas.Layers[1].Pixels.At(2, 2); got != (color.RGBA{9, 9, 9, 255}) {
		t.Fatalf("top layer pixels lost: %v", got)
	}
}

func TestProjectSaveOpen(t *testing.T) {
	s := NewState()
	s.AddLayer("ink")
	s.Canvas.ActiveLayer().Pixels.Set(3, 3, color.RGBA{10, 20, 30, 255})

	path := filepath.Join(t.TempDir(), "doc.pfproj")
	if err := s.SaveProject(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.Modified {
		t.Fatalf("save left modified flag set")
	}

	s2 := NewState()
	if err := s2.OpenProject(path); err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(s2.Canvas.Layers) != 2 {
		t.Fatalf("layers = %d", len(s2.Canvas.Layers))
	}
	if got := s2.Canvas.Layers[1].Pixels.At(3, 3); got != (color.RGBA{10, 20, 30, 255}) {
		t.Fatalf("pixel lost: %v", got)
	}
	if s2.History.CanUndo() {
		t.Fatalf("opened project has stale history")
	}
}

func TestDeleteAndFillSelection(t *testing.T) {
	s := NewState()
	s.Select(canvas.ShapeRectangle, image.Rect(0, 0, 8, 8), canvas.SelectReplace)

	s.FillSelection(color.RGBA{0, 128, 0, 255})
	if got := s.Canvas.ActiveLayer().Pixels.At(4, 4); got != (color.RGBA{0, 128, 0, 255}) {
		t.Fatalf("fill missed: %v", got)
	}

	s.DeleteSelection()
	if got := s.Canvas.ActiveLayer().Pixels.At(4, 4); got.A != 0 {
		t.Fatalf("delete missed: %v", got)
	}

	s.Undo() // delete
	if got := s.Canvas.ActiveLayer().Pixels.At(4, 4); got != (color.RGBA{0, 128, 0, 255}) {
		t.Fatalf("undo delete missed: %v", got)
	}
	s.Undo() // fill
	if got := s.Canvas.ActiveLayer().Pixels.At(4, 4); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("undo fill missed: %v", got)
	}
}
