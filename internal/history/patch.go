// Package history implements record-after-the-fact undo/redo: operations
// mutate the canvas first, then push a Command capturing enough state to
// reverse and reapply themselves. Nothing here replays user input.
package history

import (
	"image"

	"pixelforge/internal/canvas"
)

// PixelPatch is a rectangular capture of layer pixels, the unit of stroke
// undo data. Patches store straight-alpha RGBA rows for exactly Bounds.
type PixelPatch struct {
	LayerIndex int
	Bounds     image.Rectangle
	Pixels     *image.RGBA
}

// CapturePatch copies the region r of the given layer out of the live
// canvas state.
func CapturePatch(s *canvas.State, layerIndex int, r image.Rectangle) *PixelPatch {
	r = r.Intersect(s.Bounds())
	return &PixelPatch{
		LayerIndex: layerIndex,
		Bounds:     r,
		Pixels:     s.Layers[layerIndex].Pixels.ExtractRegion(r),
	}
}

// CapturePatchFromImage copies the region r out of an arbitrary tiled
// image, typically a pre-stroke clone of a layer.
func CapturePatchFromImage(src *canvas.TiledImage, layerIndex int, r image.Rectangle) *PixelPatch {
	r = r.Intersect(image.Rect(0, 0, src.Width(), src.Height()))
	return &PixelPatch{
		LayerIndex: layerIndex,
		Bounds:     r,
		Pixels:     src.ExtractRegion(r),
	}
}

// Apply writes the patch back into its layer. Applying to a canvas whose
// dimensions changed since capture is undefined; the manager's Clear-on-
// resize policy prevents that case from arising.
func (p *PixelPatch) Apply(s *canvas.State) {
	if p.LayerIndex < 0 || p.LayerIndex >= len(s.Layers) {
		return
	}
	s.Layers[p.LayerIndex].Pixels.BlitRGBA(p.Bounds.Min.X, p.Bounds.Min.Y, p.Pixels)
	s.Layers[p.LayerIndex].InvalidateLOD()
	s.MarkDirty(p.Bounds)
}

// MemoryBytes reports the patch payload size for history accounting.
func (p *PixelPatch) MemoryBytes() int {
	if p.Pixels == nil {
		return 0
	}
	return len(p.Pixels.Pix)
}

// StrokeCommand undoes and redoes one paint gesture via before/after
// patches over the stroke's bounding rectangle.
type StrokeCommand struct {
	Name   string
	Before *PixelPatch
	After  *PixelPatch
}

func (c *StrokeCommand) Description() string { return c.Name }

func (c *StrokeCommand) Undo(s *canvas.State) { c.Before.Apply(s) }

func (c *StrokeCommand) Redo(s *canvas.State) { c.After.Apply(s) }

func (c *StrokeCommand) MemorySize() int {
	return c.Before.MemoryBytes() + c.After.MemoryBytes()
}
