// Package canvas provides the interactive editor viewport with pan, zoom,
// and pointer routing for the active tool.
package canvas

import (
	"image"
	"time"

	"pixelforge/internal/app"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25

	antsInterval = 150 * time.Millisecond
)

// Tool represents the current interaction tool.
type Tool int

const (
	ToolPan Tool = iota
	ToolSelect
	ToolBrush
	ToolEraser
	ToolLine
	ToolRectangle
	ToolEllipse
)

// String returns the tool's display name.
func (t Tool) String() string {
	switch t {
	case ToolPan:
		return "Pan"
	case ToolSelect:
		return "Select"
	case ToolBrush:
		return "Brush"
	case ToolEraser:
		return "Eraser"
	case ToolLine:
		return "Line"
	case ToolRectangle:
		return "Rectangle"
	case ToolEllipse:
		return "Ellipse"
	}
	return "Unknown"
}

// EditorCanvas displays the composited document and routes pointer
// gestures to the active tool.
type EditorCanvas struct {
	widget.BaseWidget

	state *app.State

	// Display state
	raster *fynecanvas.Raster
	zoom   float64

	// Cached composite, rebuilt when the document's dirty generation moves.
	cached     *image.RGBA
	cachedGen  uint64
	antsPhase  int

	// Interaction state
	tool       Tool
	stroking   bool
	lastStroke image.Point

	// Rubber-band selection (image coordinates)
	selecting   bool
	selectStart image.Point
	selectEnd   image.Point

	// Container
	scroll  *zoomScroll
	content *draggableContent
	imgSize fyne.Size

	// Fit to window
	fitToWindow    bool
	lastScrollSize fyne.Size

	// Callbacks
	onZoomChange  func(zoom float64)
	onSelect      func(r image.Rectangle)
	onStrokeBegin func(p image.Point)
	onStrokeMove  func(p image.Point)
	onStrokeEnd   func(p image.Point)
	onRightClick  func(p image.Point)
}

// zoomScroll wraps a scroll container but intercepts the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *EditorCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *EditorCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	// Wheel zooms, it does not scroll
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

// Size returns the scroll container's size.
func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

// Refresh refreshes the scroll container.
func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// draggableContent wraps the raster to handle mouse events.
type draggableContent struct {
	widget.BaseWidget
	canvas *EditorCanvas
	raster *fynecanvas.Raster
}

func newDraggableContent(ec *EditorCanvas, raster *fynecanvas.Raster) *draggableContent {
	dc := &draggableContent{
		canvas: ec,
		raster: raster,
	}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (dc *draggableContent) CreateRenderer() fyne.WidgetRenderer {
	return &draggableContentRenderer{content: dc}
}

func (dc *draggableContent) MinSize() fyne.Size {
	return dc.raster.MinSize()
}

// imagePoint converts a widget-relative event position to image coordinates.
func (dc *draggableContent) imagePoint(pos fyne.Position) image.Point {
	return image.Pt(
		int(float64(pos.X)/dc.canvas.zoom),
		int(float64(pos.Y)/dc.canvas.zoom),
	)
}

func (dc *draggableContent) Dragged(ev *fyne.DragEvent) {
	ec := dc.canvas
	p := dc.imagePoint(ev.Position)

	switch ec.tool {
	case ToolSelect:
		if !ec.selecting {
			ec.selecting = true
			start := ev.Position
			start.X -= ev.Dragged.DX
			start.Y -= ev.Dragged.DY
			ec.selectStart = dc.imagePoint(start)
		}
		ec.selectEnd = p
		ec.Refresh()

	case ToolBrush, ToolEraser, ToolLine, ToolRectangle, ToolEllipse:
		if !ec.stroking {
			ec.stroking = true
			start := ev.Position
			start.X -= ev.Dragged.DX
			start.Y -= ev.Dragged.DY
			if ec.onStrokeBegin != nil {
				ec.onStrokeBegin(dc.imagePoint(start))
			}
		}
		if ec.onStrokeMove != nil {
			ec.onStrokeMove(p)
		}
		ec.lastStroke = p
		ec.Refresh()
	}
}

func (dc *draggableContent) DragEnd() {
	ec := dc.canvas

	if ec.selecting {
		ec.selecting = false
		if ec.onSelect != nil {
			ec.onSelect(image.Rectangle{Min: ec.selectStart, Max: ec.selectEnd}.Canon())
		}
		ec.Refresh()
		return
	}

	if ec.stroking {
		ec.stroking = false
		if ec.onStrokeEnd != nil {
			ec.onStrokeEnd(ec.lastStroke)
		}
		ec.Refresh()
	}
}

// Tapped handles single clicks, treated as a zero-length stroke for the
// painting tools.
func (dc *draggableContent) Tapped(ev *fyne.PointEvent) {
	ec := dc.canvas
	size := dc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}

	p := dc.imagePoint(ev.Position)
	switch ec.tool {
	case ToolBrush, ToolEraser:
		if ec.onStrokeBegin != nil {
			ec.onStrokeBegin(p)
		}
		if ec.onStrokeEnd != nil {
			ec.onStrokeEnd(p)
		}
		ec.Refresh()
	}
}

// TappedSecondary handles right-click events.
func (dc *draggableContent) TappedSecondary(ev *fyne.PointEvent) {
	ec := dc.canvas
	if ec.onRightClick == nil {
		return
	}
	size := dc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}
	ec.onRightClick(dc.imagePoint(ev.Position))
}

type draggableContentRenderer struct {
	content *draggableContent
}

func (r *draggableContentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *draggableContentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *draggableContentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *draggableContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *draggableContentRenderer) Destroy() {}

// NewEditorCanvas creates the editor viewport for the given document state.
func NewEditorCanvas(state *app.State) *EditorCanvas {
	ec := &EditorCanvas{
		state:   state,
		zoom:    1.0,
		tool:    ToolBrush,
		imgSize: fyne.NewSize(400, 300),
	}

	ec.raster = fynecanvas.NewRaster(ec.draw)
	ec.raster.ScaleMode = fynecanvas.ImageScalePixels
	ec.raster.SetMinSize(ec.imgSize)

	// Wrap raster in draggable content for mouse events
	ec.content = newDraggableContent(ec, ec.raster)

	// Zoomable scroll container (wheel = zoom, drag handles = pan)
	ec.scroll = newZoomScroll(ec.content, ec)

	state.On(app.EventCanvasChanged, func(interface{}) { ec.Refresh() })
	state.On(app.EventSelectionChanged, func(interface{}) { ec.Refresh() })
	state.On(app.EventDocumentNew, func(interface{}) { ec.DocumentChanged() })
	state.On(app.EventProjectLoaded, func(interface{}) { ec.DocumentChanged() })

	// Advance the selection border's dash phase while a selection exists.
	go func() {
		ticker := time.NewTicker(antsInterval)
		defer ticker.Stop()
		for range ticker.C {
			if ec.selecting || ec.state.Canvas.HasSelection() {
				ec.antsPhase++
				ec.raster.Refresh()
			}
		}
	}()

	ec.ExtendBaseWidget(ec)
	return ec
}

// Container returns the canvas container for embedding in layouts.
func (ec *EditorCanvas) Container() fyne.CanvasObject {
	return ec.scroll
}

// DocumentChanged resets the viewport after a new or loaded document.
func (ec *EditorCanvas) DocumentChanged() {
	ec.cached = nil
	ec.selecting = false
	ec.stroking = false
	ec.updateContentSize()
}

// SetZoom sets the zoom level.
func (ec *EditorCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	ec.zoom = zoom
	ec.updateContentSize()

	if ec.onZoomChange != nil {
		ec.onZoomChange(zoom)
	}
}

// GetZoom returns the current zoom level.
func (ec *EditorCanvas) GetZoom() float64 {
	return ec.zoom
}

// ZoomIn increases the zoom level.
func (ec *EditorCanvas) ZoomIn() {
	ec.SetZoom(ec.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (ec *EditorCanvas) ZoomOut() {
	ec.SetZoom(ec.zoom / zoomStep)
}

// FitToWindow adjusts zoom so the whole document fits the visible area.
func (ec *EditorCanvas) FitToWindow() {
	w, h := ec.state.Canvas.Width, ec.state.Canvas.Height
	if w == 0 || h == 0 {
		return
	}

	viewSize := ec.scroll.Size()
	if viewSize.Width <= 0 || viewSize.Height <= 0 {
		return
	}

	zoomX := float64(viewSize.Width) / float64(w)
	zoomY := float64(viewSize.Height) / float64(h)

	zoom := zoomX
	if zoomY < zoomX {
		zoom = zoomY
	}

	ec.SetZoom(zoom * 0.95) // Leave a small margin
}

// SetFitToWindow enables or disables auto-fit on resize.
func (ec *EditorCanvas) SetFitToWindow(fit bool) {
	ec.fitToWindow = fit
	if fit {
		ec.FitToWindow()
	}
}

// GetFitToWindow returns the current fit-to-window state.
func (ec *EditorCanvas) GetFitToWindow() bool {
	return ec.fitToWindow
}

// CheckResize re-fits the view after the scroll container is resized.
func (ec *EditorCanvas) CheckResize(size fyne.Size) {
	if !ec.fitToWindow {
		return
	}
	if size.Width > 0 && size.Height > 0 && size != ec.lastScrollSize {
		ec.lastScrollSize = size
		ec.FitToWindow()
	}
}

// SetTool sets the current interaction tool.
func (ec *EditorCanvas) SetTool(tool Tool) {
	ec.tool = tool
	ec.selecting = false
}

// GetTool returns the current interaction tool.
func (ec *EditorCanvas) GetTool() Tool {
	return ec.tool
}

// OnZoomChange sets a callback for zoom changes.
func (ec *EditorCanvas) OnZoomChange(callback func(zoom float64)) {
	ec.onZoomChange = callback
}

// OnSelect sets a callback for rubber-band selection completion.
// The rectangle is in image coordinates.
func (ec *EditorCanvas) OnSelect(callback func(r image.Rectangle)) {
	ec.onSelect = callback
}

// OnStroke sets the callbacks for paint gestures. Points are in image
// coordinates.
func (ec *EditorCanvas) OnStroke(begin, move, end func(p image.Point)) {
	ec.onStrokeBegin = begin
	ec.onStrokeMove = move
	ec.onStrokeEnd = end
}

// OnRightClick sets a callback for right-click events.
func (ec *EditorCanvas) OnRightClick(callback func(p image.Point)) {
	ec.onRightClick = callback
}

// Refresh refreshes the canvas display.
func (ec *EditorCanvas) Refresh() {
	ec.raster.Refresh()
}

// updateContentSize updates the content size from document size and zoom.
func (ec *EditorCanvas) updateContentSize() {
	w, h := ec.state.Canvas.Width, ec.state.Canvas.Height
	if w == 0 || h == 0 {
		ec.imgSize = fyne.NewSize(400, 300)
	} else {
		ec.imgSize = fyne.NewSize(float32(float64(w)*ec.zoom), float32(float64(h)*ec.zoom))
	}

	ec.raster.SetMinSize(ec.imgSize)
	ec.raster.Resize(ec.imgSize)
	if ec.content != nil {
		ec.content.Resize(ec.imgSize)
		ec.content.Refresh()
	}
	ec.raster.Refresh()
	if ec.scroll != nil {
		ec.scroll.Refresh()
	}
}

// CreateRenderer implements fyne.Widget.
func (ec *EditorCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &editorCanvasRenderer{canvas: ec}
}

type editorCanvasRenderer struct {
	canvas *EditorCanvas
}

func (r *editorCanvasRenderer) Layout(size fyne.Size) {
	if r.canvas.scroll != nil {
		r.canvas.scroll.Resize(size)
	} else if r.canvas.content != nil {
		r.canvas.content.Resize(size)
	}
	r.canvas.CheckResize(size)
}

func (r *editorCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *editorCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *editorCanvasRenderer) Objects() []fyne.CanvasObject {
	if r.canvas.scroll != nil {
		return []fyne.CanvasObject{r.canvas.scroll}
	}
	return []fyne.CanvasObject{r.canvas.content}
}

func (r *editorCanvasRenderer) Destroy() {}
