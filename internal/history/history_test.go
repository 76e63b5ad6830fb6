package history

import (
	"image"
	"image/color"
	"testing"

	"pixelforge/internal/canvas"
)

// paintRect writes c over r on the active layer and returns a recorded
// stroke command, mimicking what a tool gesture produces.
func paintRect(s *canvas.State, r image.Rectangle, c color.RGBA) *StrokeCommand {
	before := CapturePatch(s, s.ActiveLayerIndex, r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s.ActiveLayer().Pixels.Set(x, y, c)
		}
	}
	s.MarkDirty(r)
	after := CapturePatch(s, s.ActiveLayerIndex, r)
	return &StrokeCommand{Name: "Brush Stroke", Before: before, After: after}
}

func TestUndoRedoInverse(t *testing.T) {
	s := canvas.NewState(32, 32)
	m := NewManager()

	red := color.RGBA{255, 0, 0, 255}
	r := image.Rect(4, 4, 12, 12)
	m.Push(paintRect(s, r, red))

	if got := s.ActiveLayer().Pixels.At(6, 6); got != red {
		t.Fatalf("paint did not apply: %v", got)
	}

	if !m.Undo(s) {
		t.Fatalf("undo unavailable")
	}
	if got := s.ActiveLayer().Pixels.At(6, 6); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("undo did not restore white: %v", got)
	}

	if !m.Redo(s) {
		t.Fatalf("redo unavailable")
	}
	if got := s.ActiveLayer().Pixels.At(6, 6); got != red {
		t.Fatalf("redo did not restore red: %v", got)
	}
}

func TestPushClearsRedo(t *testing.T) {
	s := canvas.NewState(16, 16)
	m := NewManager()

	m.Push(paintRect(s, image.Rect(0, 0, 4, 4), color.RGBA{255, 0, 0, 255}))
	m.Undo(s)
	if !m.CanRedo() {
		t.Fatalf("redo missing after undo")
	}

	m.Push(paintRect(s, image.Rect(8, 8, 12, 12), color.RGBA{0, 255, 0, 255}))
	if m.CanRedo() {
		t.Fatalf("redo survived a push")
	}
}

func TestAvailabilitySignals(t *testing.T) {
	s := canvas.NewState(8, 8)
	m := NewManager()

	if m.CanUndo() || m.CanRedo() {
		t.Fatalf("fresh manager reports availability")
	}
	if m.Undo(s) || m.Redo(s) {
		t.Fatalf("empty undo/redo reported success")
	}

	m.Push(paintRect(s, image.Rect(0, 0, 2, 2), color.RGBA{1, 1, 1, 255}))
	if !m.CanUndo() || m.CanRedo() {
		t.Fatalf("availability after push: undo=%v redo=%v", m.CanUndo(), m.CanRedo())
	}
	if m.UndoDescription() != "Brush Stroke" {
		t.Fatalf("undo description = %q", m.UndoDescription())
	}
}

func TestDepthEviction(t *testing.T) {
	s := canvas.NewState(8, 8)
	m := NewManagerWithLimits(3, 1<<30)

	for i := 0; i < 5; i++ {
		m.Push(paintRect(s, image.Rect(0, 0, 2, 2), color.RGBA{uint8(i), 0, 0, 255}))
	}
	if m.UndoCount() != 3 {
		t.Fatalf("undo depth = %d, want 3", m.UndoCount())
	}
	// The survivors are the newest three.
	undone := 0
	for m.Undo(s) {
		undone++
	}
	if undone != 3 {
		t.Fatalf("undid %d commands, want 3", undone)
	}
}

func TestMemoryEviction(t *testing.T) {
	s := canvas.NewState(64, 64)
	full := s.Bounds()
	// Each full-canvas stroke captures 2 * 64*64*4 = 32768 bytes.
	perCmd := (&StrokeCommand{
		Before: CapturePatch(s, 0, full),
		After:  CapturePatch(s, 0, full),
	}).MemorySize()

	m := NewManagerWithLimits(100, perCmd*2)
	for i := 0; i < 4; i++ {
		m.Push(paintRect(s, full, color.RGBA{uint8(i), 0, 0, 255}))
	}
	if m.UndoCount() != 2 {
		t.Fatalf("undo depth = %d after byte eviction, want 2", m.UndoCount())
	}
	if m.MemoryBytes() > perCmd*2 {
		t.Fatalf("tracked bytes %d exceed budget %d", m.MemoryBytes(), perCmd*2)
	}
}

func TestMemoryEvictionKeepsLastCommand(t *testing.T) {
	s := canvas.NewState(64, 64)
	m := NewManagerWithLimits(100, 10) // budget below any stroke's footprint

	m.Push(paintRect(s, s.Bounds(), color.RGBA{255, 0, 0, 255}))
	if m.UndoCount() != 1 {
		t.Fatalf("oversized single command evicted; depth = %d", m.UndoCount())
	}
}

func TestClear(t *testing.T) {
	s := canvas.NewState(8, 8)
	m := NewManager()
	m.Push(paintRect(s, image.Rect(0, 0, 2, 2), color.RGBA{1, 1, 1, 255}))
	m.Undo(s)
	m.Push(paintRect(s, image.Rect(2, 2, 4, 4), color.RGBA{2, 2, 2, 255}))

	m.Clear()
	if m.CanUndo() || m.CanRedo() || m.MemoryBytes() != 0 {
		t.Fatalf("clear left state: undo=%v redo=%v bytes=%d", m.CanUndo(), m.CanRedo(), m.MemoryBytes())
	}
}

func TestAddLayerUndoDropsLaterPaint(t *testing.T) {
	s := canvas.NewState(16, 16)
	m := NewManager()

	idx, name := s.AddLayer("")
	m.Push(&AddLayerCommand{Index: idx, Name: name})

	// Paint on the new layer after the add was recorded.
	m.Push(paintRect(s, image.Rect(0, 0, 4, 4), color.RGBA{255, 0, 0, 255}))

	m.Undo(s) // stroke
	m.Undo(s) // add

	if len(s.Layers) != 1 {
		t.Fatalf("layer not removed by undo: %d layers", len(s.Layers))
	}

	// Redoing the add restores an empty layer; the paint is gone until its
	// own command is redone.
	m.Redo(s)
	if len(s.Layers) != 2 {
		t.Fatalf("redo did not restore the layer")
	}
	if got := s.Layers[idx].Pixels.At(1, 1); got != (color.RGBA{}) {
		t.Fatalf("redone layer kept paint: %v", got)
	}
	m.Redo(s)
	if got := s.Layers[idx].Pixels.At(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("stroke redo missed: %v", got)
	}
}

func TestDeleteLayerRoundTrip(t *testing.T) {
	s := canvas.NewState(8, 8)
	s.AddLayer("paint")
	s.ActiveLayer().Pixels.Set(2, 2, color.RGBA{7, 7, 7, 255})

	m := NewManager()
	removed := s.RemoveLayer(1)
	m.Push(&DeleteLayerCommand{Index: 1, Layer: removed})

	m.Undo(s)
	if len(s.Layers) != 2 {
		t.Fatalf("undo did not reinsert layer")
	}
	if got := s.Layers[1].Pixels.At(2, 2); got != (color.RGBA{7, 7, 7, 255}) {
		t.Fatalf("reinserted layer lost pixels: %v", got)
	}

	m.Redo(s)
	if len(s.Layers) != 1 {
		t.Fatalf("redo did not remove layer again")
	}
}

func TestMoveLayerCommand(t *testing.T) {
	s := canvas.NewState(8, 8)
	s.AddLayer("a")
	s.AddLayer("b")

	m := NewManager()
	s.MoveLayer(2, 0)
	m.Push(&MoveLayerCommand{From: 2, To: 0})

	m.Undo(s)
	if s.Layers[2].Name != "b" {
		t.Fatalf("undo did not restore order: top is %q", s.Layers[2].Name)
	}
	m.Redo(s)
	if s.Layers[0].Name != "b" {
		t.Fatalf("redo did not reapply move: bottom is %q", s.Layers[0].Name)
	}
}

func TestAttributeCommands(t *testing.T) {
	s := canvas.NewState(8, 8)
	m := NewManager()

	t.Run("opacity", func(t *testing.T) {
		s.ActiveLayer().SetOpacity(0.4)
		m.Push(&OpacityCommand{Index: 0, Old: 1.0, New: 0.4})
		m.Undo(s)
		if s.ActiveLayer().Opacity != 1.0 {
			t.Fatalf("opacity after undo = %v", s.ActiveLayer().Opacity)
		}
		m.Redo(s)
		if s.ActiveLayer().Opacity != 0.4 {
			t.Fatalf("opacity after redo = %v", s.ActiveLayer().Opacity)
		}
	})

	t.Run("visibility", func(t *testing.T) {
		s.ActiveLayer().Visible = false
		m.Push(&VisibilityCommand{Index: 0, Old: true, New: false})
		m.Undo(s)
		if !s.ActiveLayer().Visible {
			t.Fatalf("visibility not restored")
		}
	})

	t.Run("rename", func(t *testing.T) {
		s.ActiveLayer().Name = "Sketch"
		m.Push(&RenameLayerCommand{Index: 0, Old: "Background", New: "Sketch"})
		m.Undo(s)
		if s.ActiveLayer().Name != "Background" {
			t.Fatalf("name after undo = %q", s.ActiveLayer().Name)
		}
	})

	t.Run("blend mode", func(t *testing.T) {
		s.ActiveLayer().BlendMode = canvas.BlendMultiply
		m.Push(&BlendModeCommand{Index: 0, Old: canvas.BlendNormal, New: canvas.BlendMultiply})
		m.Undo(s)
		if s.ActiveLayer().BlendMode != canvas.BlendNormal {
			t.Fatalf("blend mode after undo = %v", s.ActiveLayer().BlendMode)
		}
	})
}

func TestSnapshotCommand(t *testing.T) {
	s := canvas.NewState(8, 8)
	s.AddLayer("top")
	s.ActiveLayer().Pixels.Set(1, 1, color.RGBA{5, 5, 5, 255})

	before := TakeSnapshot(s)
	s.Flatten()
	after := TakeSnapshot(s)
	cmd := &SnapshotCommand{Name: "Flatten", Before: before, After: after}

	cmd.Undo(s)
	if len(s.Layers) != 2 {
		t.Fatalf("undo did not restore stack: %d layers", len(s.Layers))
	}
	if got := s.Layers[1].Pixels.At(1, 1); got != (color.RGBA{5, 5, 5, 255}) {
		t.Fatalf("undo lost pixels: %v", got)
	}

	cmd.Redo(s)
	if len(s.Layers) != 1 {
		t.Fatalf("redo did not reflatten")
	}

	// Repeated cycles keep working: the snapshot is not consumed.
	cmd.Undo(s)
	cmd.Redo(s)
	if len(s.Layers) != 1 {
		t.Fatalf("second redo failed")
	}
}

func TestSingleLayerSnapshotCommand(t *testing.T) {
	s := canvas.NewState(8, 8)
	before := s.ActiveLayer().Clone()
	s.ActiveLayer().Pixels.SetAll(color.RGBA{0, 0, 0, 255})
	after := s.ActiveLayer().Clone()

	cmd := &SingleLayerSnapshotCommand{Name: "Invert", Index: 0, Before: before, After: after}
	cmd.Undo(s)
	if got := s.ActiveLayer().Pixels.At(3, 3); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("undo pixel = %v, want white", got)
	}
	cmd.Redo(s)
	if got := s.ActiveLayer().Pixels.At(3, 3); got != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("redo pixel = %v, want black", got)
	}
}
