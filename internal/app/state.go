// Package app provides application lifecycle management, document state, and events.
package app

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sync"

	"pixelforge/internal/adjust"
	"pixelforge/internal/canvas"
	"pixelforge/internal/filter"
	"pixelforge/internal/history"
	"pixelforge/internal/imageio"
	"pixelforge/internal/project"
)

// State holds the application state: the open document, its undo history,
// the in-flight stroke, and event listeners for the UI.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	Modified    bool

	// Document
	Canvas  *canvas.State
	History *history.Manager
	Stroke  *history.StrokeTracker

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventDocumentNew
	EventCanvasChanged
	EventLayersChanged
	EventSelectionChanged
	EventHistoryChanged
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// DefaultCanvasWidth and DefaultCanvasHeight size a freshly created document.
const (
	DefaultCanvasWidth  = 1024
	DefaultCanvasHeight = 768
)

// NewState creates a new application state with an empty document.
func NewState() *State {
	return &State{
		Canvas:    canvas.NewState(DefaultCanvasWidth, DefaultCanvasHeight),
		History:   history.NewManager(),
		Stroke:    history.NewStrokeTracker(),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the document as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// NewDocument replaces the current document with a blank canvas.
func (s *State) NewDocument(width, height int) {
	s.mu.Lock()
	s.Canvas = canvas.NewState(width, height)
	s.History.Clear()
	s.ProjectPath = ""
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventDocumentNew, nil)
	s.Emit(EventLayersChanged, nil)
	s.Emit(EventCanvasChanged, nil)
}

// OpenProject loads a .pfproj file, replacing the current document.
func (s *State) OpenProject(path string) error {
	loaded, err := project.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Canvas = loaded
	s.History.Clear()
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectLoaded, path)
	s.Emit(EventLayersChanged, nil)
	s.Emit(EventCanvasChanged, nil)
	return nil
}

// SaveProject writes the document to a .pfproj file.
func (s *State) SaveProject(path string) error {
	if err := project.Save(path, s.Canvas); err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	return nil
}

// ImportImageAsLayer loads an image file as a new layer above the active one.
func (s *State) ImportImageAsLayer(path string) error {
	img, err := imageio.Load(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	layer := &canvas.Layer{
		Name:      name,
		Visible:   true,
		Opacity:   1.0,
		BlendMode: canvas.BlendNormal,
		Pixels:    img,
	}
	idx := s.Canvas.ActiveLayerIndex + 1
	s.Canvas.InsertLayer(idx, layer)
	s.History.Push(&history.InsertLayerCommand{Name: "Import Image", Index: idx, Layer: layer})

	s.afterEdit()
	s.Emit(EventLayersChanged, nil)
	return nil
}

// ExportFlattened writes the composited document to an image file.
func (s *State) ExportFlattened(path string) error {
	flat := canvas.FromRGBA(s.Canvas.Composite())
	return imageio.Save(path, flat)
}

// Undo reverts the most recent edit.
func (s *State) Undo() bool {
	if !s.History.Undo(s.Canvas) {
		return false
	}
	s.afterEdit()
	s.Emit(EventLayersChanged, nil)
	return true
}

// Redo reapplies the most recently undone edit.
func (s *State) Redo() bool {
	if !s.History.Redo(s.Canvas) {
		return false
	}
	s.afterEdit()
	s.Emit(EventLayersChanged, nil)
	return true
}

// PushStroke records a finished stroke command, ignoring nil (empty
// gestures produce no command).
func (s *State) PushStroke(cmd *history.StrokeCommand) {
	if cmd == nil {
		return
	}
	s.History.Push(cmd)
	s.afterEdit()
}

// AddLayer creates an empty layer above the active one.
func (s *State) AddLayer(name string) {
	idx, finalName := s.Canvas.AddLayer(name)
	s.History.Push(&history.AddLayerCommand{Index: idx, Name: finalName})
	s.afterEdit()
	s.Emit(EventLayersChanged, nil)
}

// DeleteLayer removes the layer at index; the last layer is kept.
func (s *State) DeleteLayer(index int) {
	removed := s.Canvas.RemoveLayer(index)
	if removed == nil {
		return
	}
	s.History.Push(&history.DeleteLayerCommand{Index: index, Layer: removed})
	s.afterEdit()
	s.Emit(EventLayersChanged, nil)
}

// DuplicateLayer clones the layer at index.
func (s *State) DuplicateLayer(index int) {
	newIdx := s.Canvas.DuplicateLayer(index)
	if newIdx < 0 {
		return
	}
	s.History.Push(&history.InsertLayerCommand{Name: "Duplicate Layer", Index: newIdx, Layer: s.Canvas.Layers[newIdx]})
	s.afterEdit()
	s.Emit(EventLayersChanged, nil)
}

// MoveLayer reorders the layer stack.
func (s *State) MoveLayer(from, to int) {
	if !s.Canvas.MoveLayer(from, to) {
		return
	}
	s.History.Push(&history.MoveLayerCommand{From: from, To: to})
	s.afterEdit()
	s.Emit(EventLayersChanged, nil)
}

// SetLayerOpacity changes a layer's opacity, recording old and new values.
func (s *State) SetLayerOpacity(index int, opacity float64) {
	if index < 0 || index >= len(s.Canvas.Layers) {
		return
	}
	layer := s.Canvas.Layers[index]
	old := layer.Opacity
	layer.SetOpacity(opacity)
	if layer.Opacity == old {
		return
	}
	s.Canvas.MarkAllDirty()
	s.History.Push(&history.OpacityCommand{Index: index, Old: old, New: layer.Opacity})
	s.afterEdit()
}

// SetLayerVisibility toggles a layer's visibility.
func (s *State) SetLayerVisibility(index int, visible bool) {
	if index < 0 || index >= len(s.Canvas.Layers) {
		return
	}
	layer := s.Canvas.Layers[index]
	if layer.Visible == visible {
		return
	}
	layer.Visible = visible
	s.Canvas.MarkAllDirty()
	s.History.Push(&history.VisibilityCommand{Index: index, Old: !visible, New: visible})
	s.afterEdit()
	s.Emit(EventLayersChanged, nil)
}

// RenameLayer changes a layer's display name.
func (s *State) RenameLayer(index int, name string) {
	if index < 0 || index >= len(s.Canvas.Layers) || name == "" {
		return
	}
	layer := s.Canvas.Layers[index]
	if layer.Name == name {
		return
	}
	old := layer.Name
	layer.Name = name
	s.History.Push(&history.RenameLayerCommand{Index: index, Old: old, New: name})
	s.SetModified(true)
	s.Emit(EventLayersChanged, nil)
}

// SetLayerBlendMode changes how a layer combines with the stack below.
func (s *State) SetLayerBlendMode(index int, mode canvas.BlendMode) {
	if index < 0 || index >= len(s.Canvas.Layers) {
		return
	}
	layer := s.Canvas.Layers[index]
	if layer.BlendMode == mode {
		return
	}
	old := layer.BlendMode
	layer.BlendMode = mode
	s.Canvas.MarkAllDirty()
	s.History.Push(&history.BlendModeCommand{Index: index, Old: old, New: mode})
	s.afterEdit()
}

// MergeDown blends the layer at index into the one below, with a full
// snapshot for undo since two layers change at once.
func (s *State) MergeDown(index int) {
	before := history.TakeSnapshot(s.Canvas)
	if !s.Canvas.MergeDown(index) {
		return
	}
	after := history.TakeSnapshot(s.Canvas)
	s.History.Push(&history.SnapshotCommand{Name: "Merge Down", Before: before, After: after})
	s.afterEdit()
	s.Emit(EventLayersChanged, nil)
}

// Flatten composites the whole stack into a single layer.
func (s *State) Flatten() {
	if len(s.Canvas.Layers) <= 1 {
		return
	}
	before := history.TakeSnapshot(s.Canvas)
	s.Canvas.Flatten()
	after := history.TakeSnapshot(s.Canvas)
	s.History.Push(&history.SnapshotCommand{Name: "Flatten", Before: before, After: after})
	s.afterEdit()
	s.Emit(EventLayersChanged, nil)
}

// Transform applies a whole-canvas transform with full-snapshot undo.
type Transform int

const (
	TransformFlipHorizontal Transform = iota
	TransformFlipVertical
	TransformRotate180
	TransformRotate90CW
	TransformRotate90CCW
)

func (t Transform) String() string {
	switch t {
	case TransformFlipHorizontal:
		return "Flip Horizontal"
	case TransformFlipVertical:
		return "Flip Vertical"
	case TransformRotate180:
		return "Rotate 180"
	case TransformRotate90CW:
		return "Rotate 90 CW"
	case TransformRotate90CCW:
		return "Rotate 90 CCW"
	default:
		return "Transform"
	}
}

// ApplyTransform flips or rotates every layer. Quarter turns swap the
// canvas dimensions and clear history, since recorded patches no longer
// line up.
func (s *State) ApplyTransform(t Transform) {
	c := s.Canvas
	switch t {
	case TransformFlipHorizontal, TransformFlipVertical, TransformRotate180:
		before := history.TakeSnapshot(c)
		for _, layer := range c.Layers {
			switch t {
			case TransformFlipHorizontal:
				layer.Pixels.FlipHorizontal()
			case TransformFlipVertical:
				layer.Pixels.FlipVertical()
			case TransformRotate180:
				layer.Pixels.Rotate180()
			}
		}
		c.MarkAllDirty()
		after := history.TakeSnapshot(c)
		s.History.Push(&history.SnapshotCommand{Name: t.String(), Before: before, After: after})
	case TransformRotate90CW, TransformRotate90CCW:
		for _, layer := range c.Layers {
			if t == TransformRotate90CW {
				layer.Pixels = layer.Pixels.Rotate90CW()
			} else {
				layer.Pixels = layer.Pixels.Rotate90CCW()
			}
		}
		c.Width, c.Height = c.Height, c.Width
		c.SelectionMask = nil
		c.MarkAllDirty()
		s.History.Clear()
	}
	s.afterEdit()
	s.Emit(EventCanvasChanged, nil)
}

// ResizeCanvas crops or extends the document. History is cleared because
// recorded patches reference the old dimensions.
func (s *State) ResizeCanvas(width, height int) {
	if width == s.Canvas.Width && height == s.Canvas.Height {
		return
	}
	s.Canvas.Resize(width, height)
	s.History.Clear()
	s.afterEdit()
	s.Emit(EventCanvasChanged, nil)
	s.Emit(EventSelectionChanged, nil)
}

// Adjustment identifies a color adjustment applied to the active layer.
type Adjustment int

const (
	AdjustBrightness Adjustment = iota
	AdjustContrast
	AdjustHueSaturation
	AdjustInvert
	AdjustGrayscale
	AdjustAutoContrast
)

func (a Adjustment) String() string {
	switch a {
	case AdjustBrightness:
		return "Brightness"
	case AdjustContrast:
		return "Contrast"
	case AdjustHueSaturation:
		return "Hue/Saturation"
	case AdjustInvert:
		return "Invert"
	case AdjustGrayscale:
		return "Grayscale"
	case AdjustAutoContrast:
		return "Auto Contrast"
	default:
		return "Adjustment"
	}
}

// ApplyAdjustment runs a color adjustment over the active layer, limited
// to the selection when one is active, with single-layer snapshot undo.
func (s *State) ApplyAdjustment(a Adjustment, amount, amount2 float64) {
	c := s.Canvas
	idx := c.ActiveLayerIndex
	before := c.ActiveLayer().Clone()

	mask := s.selectionMaskFn()
	pixels := c.ActiveLayer().Pixels
	switch a {
	case AdjustBrightness:
		adjust.Brightness(pixels, amount, mask)
	case AdjustContrast:
		adjust.Contrast(pixels, amount, mask)
	case AdjustHueSaturation:
		adjust.HueSaturation(pixels, amount, amount2, mask)
	case AdjustInvert:
		adjust.Invert(pixels, mask)
	case AdjustGrayscale:
		adjust.Grayscale(pixels, mask)
	case AdjustAutoContrast:
		adjust.AutoContrast(pixels, amount, mask)
	}

	c.MarkDirty(c.Bounds())
	s.History.Push(&history.SingleLayerSnapshotCommand{
		Name:   a.String(),
		Index:  idx,
		Before: before,
		After:  c.ActiveLayer().Clone(),
	})
	s.afterEdit()
}

// Filter identifies a convolution filter applied to the active layer.
type Filter int

const (
	FilterGaussianBlur Filter = iota
	FilterMedianBlur
	FilterSharpen
)

func (f Filter) String() string {
	switch f {
	case FilterGaussianBlur:
		return "Gaussian Blur"
	case FilterMedianBlur:
		return "Median Blur"
	case FilterSharpen:
		return "Sharpen"
	default:
		return "Filter"
	}
}

// ApplyFilter runs a filter over the active layer. The region defaults to
// the selection bounds, or the whole canvas with nothing selected.
func (s *State) ApplyFilter(f Filter, amount float64) error {
	c := s.Canvas
	idx := c.ActiveLayerIndex
	region := c.Bounds()
	if r, ok := c.SelectionBounds(); ok {
		region = r
	}

	before := c.ActiveLayer().Clone()
	pixels := c.ActiveLayer().Pixels

	var err error
	switch f {
	case FilterGaussianBlur:
		err = filter.GaussianBlur(pixels, region, int(amount))
	case FilterMedianBlur:
		err = filter.MedianBlur(pixels, region, int(amount))
	case FilterSharpen:
		err = filter.Sharpen(pixels, region, amount)
	default:
		err = fmt.Errorf("unknown filter %d", f)
	}
	if err != nil {
		return err
	}

	c.MarkDirty(region)
	s.History.Push(&history.SingleLayerSnapshotCommand{
		Name:   f.String(),
		Index:  idx,
		Before: before,
		After:  c.ActiveLayer().Clone(),
	})
	s.afterEdit()
	return nil
}

// InpaintSelection reconstructs the selected pixels of the active layer
// from their surroundings.
func (s *State) InpaintSelection(radius float64) error {
	c := s.Canvas
	region, ok := c.SelectionBounds()
	if !ok {
		return fmt.Errorf("inpaint requires a selection")
	}

	idx := c.ActiveLayerIndex
	before := c.ActiveLayer().Clone()
	grow := int(radius) + 4
	padded := region.Inset(-grow).Intersect(c.Bounds())

	err := filter.Inpaint(c.ActiveLayer().Pixels, padded, func(x, y int) uint8 {
		if c.SelectionMask == nil {
			return 0
		}
		return c.SelectedAt(x, y)
	}, radius)
	if err != nil {
		return err
	}

	c.MarkDirty(padded)
	s.History.Push(&history.SingleLayerSnapshotCommand{
		Name:   "Inpaint",
		Index:  idx,
		Before: before,
		After:  c.ActiveLayer().Clone(),
	})
	s.afterEdit()
	return nil
}

// DeleteSelection erases the selected pixels of the active layer.
func (s *State) DeleteSelection() {
	c := s.Canvas
	bounds, ok := c.SelectionBounds()
	if !ok {
		return
	}
	before := history.CapturePatch(c, c.ActiveLayerIndex, bounds)
	c.DeleteSelectedPixels()
	after := history.CapturePatch(c, c.ActiveLayerIndex, bounds)
	s.History.Push(&history.StrokeCommand{Name: "Delete Selection", Before: before, After: after})
	s.afterEdit()
}

// FillSelection paints the selected pixels (or the whole layer with no
// selection) with a solid color.
func (s *State) FillSelection(col color.RGBA) {
	c := s.Canvas
	bounds, ok := c.SelectionBounds()
	if !ok {
		bounds = c.Bounds()
	}
	before := history.CapturePatch(c, c.ActiveLayerIndex, bounds)
	c.FillSelectedPixels(col)
	after := history.CapturePatch(c, c.ActiveLayerIndex, bounds)
	s.History.Push(&history.StrokeCommand{Name: "Fill", Before: before, After: after})
	s.afterEdit()
}

// Select applies a selection shape and notifies listeners.
func (s *State) Select(shape canvas.SelectionShape, r image.Rectangle, mode canvas.SelectionMode) {
	s.Canvas.ApplySelection(shape, r, mode)
	s.Emit(EventSelectionChanged, nil)
	s.Emit(EventCanvasChanged, nil)
}

// SelectAll selects the whole canvas.
func (s *State) SelectAll() {
	s.Canvas.SelectAll()
	s.Emit(EventSelectionChanged, nil)
	s.Emit(EventCanvasChanged, nil)
}

// ClearSelection drops the selection mask.
func (s *State) ClearSelection() {
	s.Canvas.ClearSelection()
	s.Emit(EventSelectionChanged, nil)
	s.Emit(EventCanvasChanged, nil)
}

// InvertSelection inverts the selection mask.
func (s *State) InvertSelection() {
	s.Canvas.InvertSelection()
	s.Emit(EventSelectionChanged, nil)
	s.Emit(EventCanvasChanged, nil)
}

// selectionMaskFn adapts the canvas selection into an adjustment mask.
func (s *State) selectionMaskFn() adjust.Mask {
	if !s.Canvas.HasSelection() {
		return nil
	}
	return func(x, y int) uint8 {
		return s.Canvas.SelectedAt(x, y)
	}
}

// afterEdit runs the shared bookkeeping every mutation ends with.
func (s *State) afterEdit() {
	s.SetModified(true)
	s.Emit(EventHistoryChanged, nil)
	s.Emit(EventCanvasChanged, nil)
}
