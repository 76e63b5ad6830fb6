package panels

import (
	"fmt"

	"pixelforge/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// HistoryPanel lists the undo stack, oldest entry first, with undo and
// redo buttons and a memory readout.
type HistoryPanel struct {
	state     *app.State
	container fyne.CanvasObject

	list        *widget.List
	undoButton  *widget.Button
	redoButton  *widget.Button
	memoryLabel *widget.Label
}

// NewHistoryPanel creates a new history panel.
func NewHistoryPanel(state *app.State) *HistoryPanel {
	hp := &HistoryPanel{state: state}

	hp.list = widget.NewList(
		func() int {
			return len(state.History.UndoDescriptions())
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("entry")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			descs := state.History.UndoDescriptions()
			if id < len(descs) {
				obj.(*widget.Label).SetText(descs[id])
			}
		},
	)

	hp.undoButton = widget.NewButton("Undo", func() { state.Undo() })
	hp.redoButton = widget.NewButton("Redo", func() { state.Redo() })
	hp.memoryLabel = widget.NewLabel("")

	controls := container.NewVBox(
		container.NewHBox(hp.undoButton, hp.redoButton),
		hp.memoryLabel,
	)
	hp.container = container.NewBorder(nil, controls, nil, nil, hp.list)

	state.On(app.EventHistoryChanged, func(interface{}) { hp.Sync() })
	state.On(app.EventDocumentNew, func(interface{}) { hp.Sync() })
	state.On(app.EventProjectLoaded, func(interface{}) { hp.Sync() })

	hp.Sync()
	return hp
}

// Container returns the panel container.
func (hp *HistoryPanel) Container() fyne.CanvasObject {
	return hp.container
}

// Sync refreshes the list and button states from the history manager.
func (hp *HistoryPanel) Sync() {
	hp.list.Refresh()

	if hp.state.History.CanUndo() {
		hp.undoButton.SetText("Undo " + hp.state.History.UndoDescription())
		hp.undoButton.Enable()
	} else {
		hp.undoButton.SetText("Undo")
		hp.undoButton.Disable()
	}
	if hp.state.History.CanRedo() {
		hp.redoButton.SetText("Redo " + hp.state.History.RedoDescription())
		hp.redoButton.Enable()
	} else {
		hp.redoButton.SetText("Redo")
		hp.redoButton.Disable()
	}

	mb := float64(hp.state.History.MemoryBytes()) / (1024 * 1024)
	hp.memoryLabel.SetText(fmt.Sprintf("%d entries, %.1f MB", hp.state.History.UndoCount(), mb))
}
