package canvas

import (
	"image"
	"image/color"
	"runtime"
	"strconv"
	"sync"
)

// State is the document model: an ordered layer stack (index 0 = bottom),
// the active layer pointer, the transient preview overlay, the selection
// mask, and dirty-region bookkeeping. It is owned by a single goroutine;
// the compositor may fan work out internally but exposes no partial results.
type State struct {
	Width  int
	Height int

	// Layers is never empty; ActiveLayerIndex is always a valid index.
	Layers           []*Layer
	ActiveLayerIndex int

	// PreviewLayer holds uncommitted tool output blended over the active
	// layer at composite time. PreviewIsEraser interprets the overlay as an
	// alpha knock-out mask; PreviewReplacesLayer substitutes it for the
	// active layer's pixels entirely (warp-style tools).
	PreviewLayer         *TiledImage
	PreviewBlendMode     BlendMode
	PreviewIsEraser      bool
	PreviewReplacesLayer bool

	// SelectionMask is nil when nothing is selected; otherwise a Width×Height
	// gray image where 0 = unselected and 255 = fully selected.
	SelectionMask *image.Gray

	dirtyRect       image.Rectangle
	hasDirty        bool
	dirtyGeneration uint64
}

// NewState creates a document with a single white background layer.
func NewState(w, h int) *State {
	bg := NewLayer("Background", w, h, color.RGBA{255, 255, 255, 255})
	return &State{
		Width:  w,
		Height: h,
		Layers: []*Layer{bg},
	}
}

// Bounds returns the full canvas rectangle.
func (s *State) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// ActiveLayer returns the layer edits currently target.
func (s *State) ActiveLayer() *Layer {
	return s.Layers[s.ActiveLayerIndex]
}

// MarkDirty unions r into the pending dirty rect and bumps the generation
// counter. Only the active layer's thumbnail is invalidated; use
// MarkAllDirty for operations that touch every layer.
func (s *State) MarkDirty(r image.Rectangle) {
	s.accumulateDirty(r)
	s.ActiveLayer().InvalidateLOD()
}

// MarkAllDirty marks the whole canvas dirty and invalidates every layer's
// thumbnail. Structural operations (reorder, merge, flatten) use this.
func (s *State) MarkAllDirty() {
	s.accumulateDirty(s.Bounds())
	for _, l := range s.Layers {
		l.InvalidateLOD()
	}
}

func (s *State) accumulateDirty(r image.Rectangle) {
	r = r.Intersect(s.Bounds())
	if s.hasDirty {
		s.dirtyRect = s.dirtyRect.Union(r)
	} else {
		s.dirtyRect = r
		s.hasDirty = true
	}
	s.dirtyGeneration++
}

// DirtyGeneration is a monotonic change counter. Consumers (thumbnail
// caches, texture uploads) compare it against their last-seen value
// instead of diffing pixels.
func (s *State) DirtyGeneration() uint64 {
	return s.dirtyGeneration
}

// TakeDirtyRect returns and clears the accumulated dirty rect. The second
// result is false when nothing changed since the last call.
func (s *State) TakeDirtyRect() (image.Rectangle, bool) {
	if !s.hasDirty {
		return image.Rectangle{}, false
	}
	r := s.dirtyRect
	s.dirtyRect = image.Rectangle{}
	s.hasDirty = false
	return r, true
}

// ClearPreview discards the preview overlay and its modes.
func (s *State) ClearPreview() {
	s.PreviewLayer = nil
	s.PreviewBlendMode = BlendNormal
	s.PreviewIsEraser = false
	s.PreviewReplacesLayer = false
}

// Composite flattens the visible layer stack (plus any preview overlay)
// into a single straight-alpha RGBA buffer.
func (s *State) Composite() *image.RGBA {
	return s.CompositeRegion(s.Bounds())
}

// CompositeLOD returns a composite downscaled to at most LODMaxEdge on its
// longest side, for zoomed-out display.
func (s *State) CompositeLOD() *image.RGBA {
	return ScaleToFit(s.Composite(), LODMaxEdge)
}

// CompositeRegion flattens only the pixels inside r (clamped to the
// canvas). The output buffer is positioned at r.Min. Rows are processed
// on a bounded worker pool; the result is indistinguishable from a
// sequential pass.
func (s *State) CompositeRegion(r image.Rectangle) *image.RGBA {
	r = r.Intersect(s.Bounds())
	out := image.NewRGBA(r)
	if r.Empty() {
		return out
	}

	workers := runtime.NumCPU()
	if workers > r.Dy() {
		workers = r.Dy()
	}
	if workers < 1 {
		workers = 1
	}
	rowsPer := (r.Dy() + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		y0 := r.Min.Y + w*rowsPer
		y1 := minInt(y0+rowsPer, r.Max.Y)
		if y0 >= y1 {
			break
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			for y := y0; y < y1; y++ {
				for x := r.Min.X; x < r.Max.X; x++ {
					c := s.compositePixel(x, y)
					off := out.PixOffset(x, y)
					out.Pix[off] = c.R
					out.Pix[off+1] = c.G
					out.Pix[off+2] = c.B
					out.Pix[off+3] = c.A
				}
			}
		}(y0, y1)
	}
	wg.Wait()
	return out
}

// compositePixel blends the layer stack bottom-to-top at one coordinate.
// The preview overlay is folded into the active layer's pixel before that
// layer is composited, so the preview inherits its blend mode and opacity.
func (s *State) compositePixel(x, y int) color.RGBA {
	var base color.RGBA
	for li, layer := range s.Layers {
		if !layer.Visible {
			continue
		}
		top := layer.Pixels.At(x, y)
		if li == s.ActiveLayerIndex && s.PreviewLayer != nil {
			top = s.applyPreview(top, x, y)
		}
		base = BlendPixel(base, top, layer.BlendMode, layer.Opacity)
	}
	return base
}

func (s *State) applyPreview(top color.RGBA, x, y int) color.RGBA {
	pp := s.PreviewLayer.At(x, y)
	switch {
	case s.PreviewReplacesLayer:
		return pp
	case pp.A == 0:
		return top
	case s.PreviewIsEraser:
		// Eraser mask: the overlay's alpha says how much to knock out.
		keep := 1 - float64(pp.A)/255
		top.A = to8(float64(top.A) / 255 * keep)
		return top
	default:
		return BlendPixel(top, pp, s.PreviewBlendMode, 1.0)
	}
}

// CommitPreview bakes the preview overlay into the active layer over r
// (clamped to the canvas), honoring the preview's eraser/replace modes,
// then discards the overlay.
func (s *State) CommitPreview(r image.Rectangle) {
	if s.PreviewLayer == nil {
		return
	}
	r = r.Intersect(s.Bounds())
	pixels := s.ActiveLayer().Pixels
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			pixels.Set(x, y, s.applyPreview(pixels.At(x, y), x, y))
		}
	}
	s.ClearPreview()
	s.MarkDirty(r)
}

// ---- layer structure -------------------------------------------------------

// InsertLayer places layer at index (clamped) and makes it active.
func (s *State) InsertLayer(index int, layer *Layer) {
	if index < 0 {
		index = 0
	}
	if index > len(s.Layers) {
		index = len(s.Layers)
	}
	s.Layers = append(s.Layers, nil)
	copy(s.Layers[index+1:], s.Layers[index:])
	s.Layers[index] = layer
	s.ActiveLayerIndex = index
	s.MarkAllDirty()
}

// AddLayer creates a transparent layer above the active one and returns
// its index and name.
func (s *State) AddLayer(name string) (int, string) {
	if name == "" {
		name = newLayerName(len(s.Layers) + 1)
	}
	layer := NewLayer(name, s.Width, s.Height, color.RGBA{})
	idx := s.ActiveLayerIndex + 1
	s.InsertLayer(idx, layer)
	return idx, name
}

// RemoveLayer deletes the layer at index and returns it. The last remaining
// layer is never removed (the stack must stay non-empty); removal of it
// returns nil.
func (s *State) RemoveLayer(index int) *Layer {
	if len(s.Layers) <= 1 || index < 0 || index >= len(s.Layers) {
		return nil
	}
	removed := s.Layers[index]
	s.Layers = append(s.Layers[:index], s.Layers[index+1:]...)
	if s.ActiveLayerIndex >= len(s.Layers) {
		s.ActiveLayerIndex = len(s.Layers) - 1
	} else if s.ActiveLayerIndex > index {
		s.ActiveLayerIndex--
	}
	s.MarkAllDirty()
	return removed
}

// MoveLayer reorders a layer between stack positions, keeping the active
// pointer on the same layer it referenced before the move.
func (s *State) MoveLayer(from, to int) bool {
	if from == to || from < 0 || to < 0 || from >= len(s.Layers) || to >= len(s.Layers) {
		return false
	}
	layer := s.Layers[from]
	s.Layers = append(s.Layers[:from], s.Layers[from+1:]...)
	s.Layers = append(s.Layers[:to], append([]*Layer{layer}, s.Layers[to:]...)...)

	switch {
	case s.ActiveLayerIndex == from:
		s.ActiveLayerIndex = to
	case from < s.ActiveLayerIndex && to >= s.ActiveLayerIndex:
		s.ActiveLayerIndex--
	case from > s.ActiveLayerIndex && to <= s.ActiveLayerIndex:
		s.ActiveLayerIndex++
	}
	s.MarkAllDirty()
	return true
}

// DuplicateLayer clones the layer at index, inserting the copy above it.
// Returns the new index, or -1 if index is invalid.
func (s *State) DuplicateLayer(index int) int {
	if index < 0 || index >= len(s.Layers) {
		return -1
	}
	src := s.Layers[index]
	dup := src.Clone()
	dup.Name = src.Name + " copy"
	s.InsertLayer(index+1, dup)
	return index + 1
}

// MergeDown blends the layer at index into the one below it and removes it.
// Returns false for the bottom layer or invalid indices.
func (s *State) MergeDown(index int) bool {
	if index <= 0 || index >= len(s.Layers) {
		return false
	}
	top := s.Layers[index]
	bottom := s.Layers[index-1]

	if top.Visible {
		for y := 0; y < s.Height; y++ {
			for x := 0; x < s.Width; x++ {
				blended := BlendPixel(bottom.Pixels.At(x, y), top.Pixels.At(x, y), top.BlendMode, top.Opacity)
				bottom.Pixels.Set(x, y, blended)
			}
		}
	}

	s.Layers = append(s.Layers[:index], s.Layers[index+1:]...)
	if s.ActiveLayerIndex >= index && s.ActiveLayerIndex > 0 {
		s.ActiveLayerIndex--
	}
	s.MarkAllDirty()
	return true
}

// Flatten composites the whole stack into a single background layer.
func (s *State) Flatten() {
	if len(s.Layers) <= 1 {
		return
	}
	flat := s.Composite()
	bg := NewLayer("Background", s.Width, s.Height, color.RGBA{255, 255, 255, 255})
	bg.Pixels = FromRGBA(flat)
	s.Layers = []*Layer{bg}
	s.ActiveLayerIndex = 0
	s.MarkAllDirty()
}

// Resize changes the canvas dimensions, cropping or extending every layer
// at the top-left origin. History referencing the old dimensions is no
// longer valid; callers must clear it.
func (s *State) Resize(w, h int) {
	if w <= 0 || h <= 0 || (w == s.Width && h == s.Height) {
		return
	}
	keep := image.Rect(0, 0, minInt(w, s.Width), minInt(h, s.Height))
	for _, layer := range s.Layers {
		old := layer.Pixels
		resized := NewTiledImage(w, h, old.Fill())
		resized.BlitRGBA(0, 0, old.ExtractRegion(keep))
		layer.Pixels = resized
		layer.InvalidateLOD()
	}
	s.Width = w
	s.Height = h
	s.SelectionMask = nil
	s.MarkAllDirty()
}

func newLayerName(n int) string {
	return "Layer " + strconv.Itoa(n)
}
