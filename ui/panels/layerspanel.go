package panels

import (
	"fmt"

	"pixelforge/internal/app"
	pfcanvas "pixelforge/internal/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// LayersPanel shows the layer stack, top layer first, with per-layer
// attribute controls.
type LayersPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	list          *widget.List
	opacitySlider *widget.Slider
	opacityLabel  *widget.Label
	blendSelect   *widget.Select

	// Guards against feedback loops while the widgets are being synced
	// from the model.
	syncing bool
}

// NewLayersPanel creates a new layers panel.
func NewLayersPanel(state *app.State) *LayersPanel {
	lp := &LayersPanel{state: state}

	lp.list = widget.NewList(
		func() int {
			return len(state.Canvas.Layers)
		},
		func() fyne.CanvasObject {
			check := widget.NewCheck("", nil)
			label := widget.NewLabel("layer")
			return container.NewHBox(check, label)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			index := lp.layerIndex(id)
			if index < 0 || index >= len(state.Canvas.Layers) {
				return
			}
			layer := state.Canvas.Layers[index]

			box := obj.(*fyne.Container)
			check := box.Objects[0].(*widget.Check)
			label := box.Objects[1].(*widget.Label)

			check.OnChanged = nil
			check.SetChecked(layer.Visible)
			check.OnChanged = func(visible bool) {
				state.SetLayerVisibility(index, visible)
			}

			name := layer.Name
			if index == state.Canvas.ActiveLayerIndex {
				label.TextStyle = fyne.TextStyle{Bold: true}
			} else {
				label.TextStyle = fyne.TextStyle{}
			}
			label.SetText(name)
		},
	)
	lp.list.OnSelected = func(id widget.ListItemID) {
		index := lp.layerIndex(id)
		if index >= 0 && index < len(state.Canvas.Layers) {
			state.Canvas.ActiveLayerIndex = index
			lp.syncControls()
			lp.list.Refresh()
		}
	}

	lp.opacityLabel = widget.NewLabel("Opacity: 100%")
	lp.opacitySlider = widget.NewSlider(0, 100)
	lp.opacitySlider.SetValue(100)
	lp.opacitySlider.OnChanged = func(v float64) {
		lp.opacityLabel.SetText(fmt.Sprintf("Opacity: %d%%", int(v)))
		if lp.syncing {
			return
		}
		state.SetLayerOpacity(state.Canvas.ActiveLayerIndex, v/100)
	}

	var modeNames []string
	for _, m := range pfcanvas.AllBlendModes() {
		modeNames = append(modeNames, m.String())
	}
	lp.blendSelect = widget.NewSelect(modeNames, func(selected string) {
		if lp.syncing {
			return
		}
		mode := pfcanvas.BlendModeFromString(selected)
		state.SetLayerBlendMode(state.Canvas.ActiveLayerIndex, mode)
	})

	addBtn := widget.NewButton("Add", func() { state.AddLayer("") })
	deleteBtn := widget.NewButton("Delete", func() {
		state.DeleteLayer(state.Canvas.ActiveLayerIndex)
	})
	dupBtn := widget.NewButton("Duplicate", func() {
		state.DuplicateLayer(state.Canvas.ActiveLayerIndex)
	})
	renameBtn := widget.NewButton("Rename...", func() { lp.showRenameDialog() })
	upBtn := widget.NewButton("Up", func() {
		i := state.Canvas.ActiveLayerIndex
		state.MoveLayer(i, i+1)
	})
	downBtn := widget.NewButton("Down", func() {
		i := state.Canvas.ActiveLayerIndex
		state.MoveLayer(i, i-1)
	})
	mergeBtn := widget.NewButton("Merge Down", func() {
		state.MergeDown(state.Canvas.ActiveLayerIndex)
	})

	controls := container.NewVBox(
		lp.opacityLabel,
		lp.opacitySlider,
		widget.NewLabel("Blend Mode"),
		lp.blendSelect,
		container.NewHBox(addBtn, deleteBtn, dupBtn),
		container.NewHBox(upBtn, downBtn, mergeBtn),
		renameBtn,
	)

	lp.container = container.NewBorder(nil, controls, nil, nil, lp.list)

	state.On(app.EventLayersChanged, func(interface{}) { lp.Sync() })
	state.On(app.EventDocumentNew, func(interface{}) { lp.Sync() })
	state.On(app.EventProjectLoaded, func(interface{}) { lp.Sync() })

	lp.syncControls()
	return lp
}

// Container returns the panel container.
func (lp *LayersPanel) Container() fyne.CanvasObject {
	return lp.container
}

// SetWindow sets the parent window for dialogs.
func (lp *LayersPanel) SetWindow(w fyne.Window) {
	lp.window = w
}

// Sync refreshes the list and controls from the document state.
func (lp *LayersPanel) Sync() {
	lp.list.Refresh()
	lp.syncControls()
}

// layerIndex maps a display row to a stack index. Row 0 shows the top
// layer.
func (lp *LayersPanel) layerIndex(id widget.ListItemID) int {
	return len(lp.state.Canvas.Layers) - 1 - id
}

func (lp *LayersPanel) syncControls() {
	layer := lp.state.Canvas.ActiveLayer()
	if layer == nil {
		return
	}
	lp.syncing = true
	lp.opacitySlider.SetValue(layer.Opacity * 100)
	lp.blendSelect.SetSelected(layer.BlendMode.String())
	lp.syncing = false
}

func (lp *LayersPanel) showRenameDialog() {
	if lp.window == nil {
		return
	}
	layer := lp.state.Canvas.ActiveLayer()
	if layer == nil {
		return
	}
	entry := widget.NewEntry()
	entry.SetText(layer.Name)
	dialog.ShowForm("Rename Layer", "Rename", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", entry)},
		func(ok bool) {
			if !ok || entry.Text == "" {
				return
			}
			lp.state.RenameLayer(lp.state.Canvas.ActiveLayerIndex, entry.Text)
		}, lp.window)
}
