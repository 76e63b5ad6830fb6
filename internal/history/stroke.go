package history

import (
	"image"
	"image/color"
	"log"

	"pixelforge/internal/canvas"
)

// StrokeTracker turns one paint gesture into exactly one StrokeCommand.
// Tools begin a gesture in one of two modes:
//
//   - Preview: the tool draws into the canvas preview overlay; the layer
//     itself is untouched until Finish commits the overlay.
//   - Direct: the tool writes straight into the active layer; the tracker
//     clones the layer's pixels up front so the pre-stroke state survives.
//
// In both modes the tool reports touched regions through ExpandBounds, and
// Finish captures before/after patches over the accumulated rectangle.
type StrokeTracker struct {
	name       string
	layerIndex int
	direct     bool
	active     bool

	// backup is the pre-stroke clone of the active layer (direct mode only).
	backup *canvas.TiledImage

	bounds    image.Rectangle
	hasBounds bool
}

// NewStrokeTracker returns an idle tracker.
func NewStrokeTracker() *StrokeTracker {
	return &StrokeTracker{}
}

// Active reports whether a gesture is in progress.
func (t *StrokeTracker) Active() bool { return t.active }

// StartPreview begins a preview-mode gesture: an empty overlay is
// installed on the canvas for the tool to draw into.
func (t *StrokeTracker) StartPreview(s *canvas.State, name string) {
	if t.active {
		log.Printf("stroke: StartPreview while a gesture is active; cancelling previous")
		t.Cancel(s)
	}
	t.reset(name, s.ActiveLayerIndex, false)
	s.PreviewLayer = canvas.NewTiledImage(s.Width, s.Height, color.RGBA{})
	s.PreviewBlendMode = canvas.BlendNormal
	t.active = true
}

// StartDirect begins a direct-mode gesture, cloning the active layer's
// pixels as the undo reference.
func (t *StrokeTracker) StartDirect(s *canvas.State, name string) {
	if t.active {
		log.Printf("stroke: StartDirect while a gesture is active; cancelling previous")
		t.Cancel(s)
	}
	t.reset(name, s.ActiveLayerIndex, true)
	t.backup = s.ActiveLayer().Pixels.Clone()
	t.active = true
}

func (t *StrokeTracker) reset(name string, layerIndex int, direct bool) {
	t.name = name
	t.layerIndex = layerIndex
	t.direct = direct
	t.backup = nil
	t.bounds = image.Rectangle{}
	t.hasBounds = false
}

// ExpandBounds unions r into the gesture's touched region.
func (t *StrokeTracker) ExpandBounds(r image.Rectangle) {
	if !t.active {
		return
	}
	if t.hasBounds {
		t.bounds = t.bounds.Union(r)
	} else {
		t.bounds = r
		t.hasBounds = true
	}
}

// Finish ends the gesture and returns its single StrokeCommand, or nil if
// the gesture never touched any pixels. In preview mode the overlay is
// committed to the layer here. The returned command has already been
// applied; the caller only pushes it.
func (t *StrokeTracker) Finish(s *canvas.State) *StrokeCommand {
	if !t.active {
		return nil
	}
	defer t.clear()

	if !t.hasBounds || t.bounds.Intersect(s.Bounds()).Empty() {
		if !t.direct {
			s.ClearPreview()
		}
		return nil
	}
	bounds := t.bounds.Intersect(s.Bounds())

	var before *PixelPatch
	if t.direct {
		before = CapturePatchFromImage(t.backup, t.layerIndex, bounds)
	} else {
		before = CapturePatch(s, t.layerIndex, bounds)
		s.CommitPreview(bounds)
	}
	after := CapturePatch(s, t.layerIndex, bounds)

	return &StrokeCommand{Name: t.name, Before: before, After: after}
}

// Cancel abandons the gesture. Preview mode discards the overlay; direct
// mode restores the touched region from the pre-stroke clone.
func (t *StrokeTracker) Cancel(s *canvas.State) {
	if !t.active {
		return
	}
	defer t.clear()

	if t.direct {
		if t.hasBounds {
			bounds := t.bounds.Intersect(s.Bounds())
			if !bounds.Empty() {
				restore := CapturePatchFromImage(t.backup, t.layerIndex, bounds)
				restore.Apply(s)
			}
		}
		return
	}
	s.ClearPreview()
	if t.hasBounds {
		s.MarkDirty(t.bounds)
	}
}

func (t *StrokeTracker) clear() {
	t.active = false
	t.backup = nil
	t.hasBounds = false
	t.bounds = image.Rectangle{}
}
