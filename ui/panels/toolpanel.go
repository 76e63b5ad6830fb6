package panels

import (
	"fmt"
	"image"
	"image/color"

	"pixelforge/internal/app"
	"pixelforge/internal/history"
	"pixelforge/internal/tool"
	uicanvas "pixelforge/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	pfcanvas "pixelforge/internal/canvas"
)

// ToolsPanel owns the paint tools and routes canvas gestures to them.
type ToolsPanel struct {
	state     *app.State
	canvas    *uicanvas.EditorCanvas
	window    fyne.Window
	container fyne.CanvasObject

	brush  *tool.Brush
	eraser *tool.Eraser
	shape  *tool.Shape

	paintColor color.RGBA

	toolSelect  *widget.RadioGroup
	sizeSlider  *widget.Slider
	sizeLabel   *widget.Label
	colorSwatch *widget.Button
	filledCheck *widget.Check
	widthSlider *widget.Slider

	selectModeGroup *widget.RadioGroup
	selectMode      pfcanvas.SelectionMode
}

// NewToolsPanel creates the tools panel and wires the canvas callbacks.
func NewToolsPanel(state *app.State, cvs *uicanvas.EditorCanvas) *ToolsPanel {
	tp := &ToolsPanel{
		state:      state,
		canvas:     cvs,
		paintColor: color.RGBA{0, 0, 0, 255},
		selectMode: pfcanvas.SelectReplace,
	}

	tp.brush = tool.NewBrush(tp.paintColor)
	tp.eraser = tool.NewEraser()
	tp.shape = tool.NewShape(tool.KindLine, 0, 0, 0, 1)

	toolNames := []string{"Pan", "Select", "Brush", "Eraser", "Line", "Rectangle", "Ellipse"}
	tp.toolSelect = widget.NewRadioGroup(toolNames, func(selected string) {
		tp.setToolByName(selected)
	})
	tp.toolSelect.SetSelected("Brush")

	tp.sizeLabel = widget.NewLabel("Size: 8")
	tp.sizeSlider = widget.NewSlider(1, 128)
	tp.sizeSlider.SetValue(8)
	tp.sizeSlider.OnChanged = func(v float64) {
		tp.brush.Size = v
		tp.eraser.Size = v
		tp.sizeLabel.SetText(fmt.Sprintf("Size: %d", int(v)))
	}

	tp.colorSwatch = widget.NewButton("Color...", func() {
		tp.showColorPicker()
	})

	tp.filledCheck = widget.NewCheck("Filled", func(checked bool) {
		tp.shape.Filled = checked
	})

	tp.widthSlider = widget.NewSlider(1, 32)
	tp.widthSlider.SetValue(2)
	tp.widthSlider.OnChanged = func(v float64) {
		tp.shape.LineWidth = v
	}

	tp.selectModeGroup = widget.NewRadioGroup(
		[]string{"Replace", "Add", "Subtract", "Intersect"},
		func(selected string) {
			switch selected {
			case "Add":
				tp.selectMode = pfcanvas.SelectAdd
			case "Subtract":
				tp.selectMode = pfcanvas.SelectSubtract
			case "Intersect":
				tp.selectMode = pfcanvas.SelectIntersect
			default:
				tp.selectMode = pfcanvas.SelectReplace
			}
		})
	tp.selectModeGroup.SetSelected("Replace")
	tp.selectModeGroup.Horizontal = true

	selectAllBtn := widget.NewButton("All", func() { state.SelectAll() })
	deselectBtn := widget.NewButton("None", func() { state.ClearSelection() })
	invertBtn := widget.NewButton("Invert", func() { state.InvertSelection() })
	deleteBtn := widget.NewButton("Delete", func() { state.DeleteSelection() })
	fillBtn := widget.NewButton("Fill", func() { state.FillSelection(tp.paintColor) })

	tp.container = container.NewVBox(
		widget.NewCard("Tool", "", tp.toolSelect),
		widget.NewCard("Brush", "", container.NewVBox(
			tp.sizeLabel,
			tp.sizeSlider,
			tp.colorSwatch,
		)),
		widget.NewCard("Shape", "", container.NewVBox(
			tp.filledCheck,
			widget.NewLabel("Line Width"),
			tp.widthSlider,
		)),
		widget.NewCard("Selection", "", container.NewVBox(
			tp.selectModeGroup,
			container.NewHBox(selectAllBtn, deselectBtn, invertBtn),
			container.NewHBox(deleteBtn, fillBtn),
		)),
	)

	// Route canvas gestures to the active tool.
	cvs.OnStroke(tp.strokeBegin, tp.strokeMove, tp.strokeEnd)
	cvs.OnSelect(func(r image.Rectangle) {
		shape := pfcanvas.ShapeRectangle
		state.Select(shape, r, tp.selectMode)
	})

	return tp
}

// Container returns the panel container.
func (tp *ToolsPanel) Container() fyne.CanvasObject {
	return tp.container
}

// SetWindow sets the parent window for dialogs.
func (tp *ToolsPanel) SetWindow(w fyne.Window) {
	tp.window = w
}

// SetTool switches the active tool, from the panel or a menu shortcut.
func (tp *ToolsPanel) SetTool(t uicanvas.Tool) {
	tp.toolSelect.SetSelected(t.String())
}

func (tp *ToolsPanel) setToolByName(name string) {
	switch name {
	case "Pan":
		tp.canvas.SetTool(uicanvas.ToolPan)
	case "Select":
		tp.canvas.SetTool(uicanvas.ToolSelect)
	case "Brush":
		tp.canvas.SetTool(uicanvas.ToolBrush)
	case "Eraser":
		tp.canvas.SetTool(uicanvas.ToolEraser)
	case "Line":
		tp.canvas.SetTool(uicanvas.ToolLine)
		tp.shape.Kind = tool.KindLine
	case "Rectangle":
		tp.canvas.SetTool(uicanvas.ToolRectangle)
		tp.shape.Kind = tool.KindRectangle
	case "Ellipse":
		tp.canvas.SetTool(uicanvas.ToolEllipse)
		tp.shape.Kind = tool.KindEllipse
	}
}

func (tp *ToolsPanel) showColorPicker() {
	if tp.window == nil {
		return
	}
	picker := dialog.NewColorPicker("Paint Color", "", func(c color.Color) {
		r, g, b, a := c.RGBA()
		tp.paintColor = color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
		tp.brush.Color = tp.paintColor
		tp.shape.Color = [4]float64{
			float64(tp.paintColor.R) / 255,
			float64(tp.paintColor.G) / 255,
			float64(tp.paintColor.B) / 255,
			float64(tp.paintColor.A) / 255,
		}
	}, tp.window)
	picker.Advanced = true
	picker.Show()
}

// PaintColor returns the current paint color.
func (tp *ToolsPanel) PaintColor() color.RGBA {
	return tp.paintColor
}

// Gesture routing. Each stroke runs through the shared tracker on the
// application state, so at most one gesture is in flight.

func (tp *ToolsPanel) strokeBegin(p image.Point) {
	s := tp.state.Canvas
	tr := tp.state.Stroke
	switch tp.canvas.GetTool() {
	case uicanvas.ToolBrush:
		tp.brush.Begin(s, tr, p)
	case uicanvas.ToolEraser:
		tp.eraser.Begin(s, tr, p)
	case uicanvas.ToolLine, uicanvas.ToolRectangle, uicanvas.ToolEllipse:
		tp.shape.Begin(s, tr, p)
	}
}

func (tp *ToolsPanel) strokeMove(p image.Point) {
	s := tp.state.Canvas
	tr := tp.state.Stroke
	switch tp.canvas.GetTool() {
	case uicanvas.ToolBrush:
		tp.brush.Move(s, tr, p)
	case uicanvas.ToolEraser:
		tp.eraser.Move(s, tr, p)
	case uicanvas.ToolLine, uicanvas.ToolRectangle, uicanvas.ToolEllipse:
		tp.shape.Drag(s, tr, p)
	}
}

func (tp *ToolsPanel) strokeEnd(p image.Point) {
	s := tp.state.Canvas
	tr := tp.state.Stroke

	var cmd *history.StrokeCommand
	switch tp.canvas.GetTool() {
	case uicanvas.ToolBrush:
		cmd = tp.brush.End(s, tr)
	case uicanvas.ToolEraser:
		cmd = tp.eraser.End(s, tr)
	case uicanvas.ToolLine, uicanvas.ToolRectangle, uicanvas.ToolEllipse:
		cmd = tp.shape.End(s, tr)
	default:
		return
	}
	tp.state.PushStroke(cmd)
}
