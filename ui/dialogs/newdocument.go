// Package dialogs provides parameterized dialogs for document and
// adjustment operations.
package dialogs

import (
	"fmt"
	"strconv"

	"pixelforge/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ShowNewDocument asks for canvas dimensions and creates a new document.
func ShowNewDocument(win fyne.Window, state *app.State) {
	widthEntry := widget.NewEntry()
	widthEntry.SetText(strconv.Itoa(app.DefaultCanvasWidth))
	heightEntry := widget.NewEntry()
	heightEntry.SetText(strconv.Itoa(app.DefaultCanvasHeight))

	items := []*widget.FormItem{
		widget.NewFormItem("Width (px)", widthEntry),
		widget.NewFormItem("Height (px)", heightEntry),
	}

	dialog.ShowForm("New Document", "Create", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		w, h, err := parseDimensions(widthEntry.Text, heightEntry.Text)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		state.NewDocument(w, h)
	}, win)
}

// ShowResizeCanvas asks for new canvas dimensions. Content is cropped or
// extended at the origin, and the undo history is discarded.
func ShowResizeCanvas(win fyne.Window, state *app.State) {
	widthEntry := widget.NewEntry()
	widthEntry.SetText(strconv.Itoa(state.Canvas.Width))
	heightEntry := widget.NewEntry()
	heightEntry.SetText(strconv.Itoa(state.Canvas.Height))

	items := []*widget.FormItem{
		widget.NewFormItem("Width (px)", widthEntry),
		widget.NewFormItem("Height (px)", heightEntry),
	}

	dialog.ShowForm("Resize Canvas", "Resize", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		w, h, err := parseDimensions(widthEntry.Text, heightEntry.Text)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		dialog.ShowConfirm("Resize Canvas",
			"Resizing clears the undo history. Continue?",
			func(confirmed bool) {
				if confirmed {
					state.ResizeCanvas(w, h)
				}
			}, win)
	}, win)
}

func parseDimensions(widthText, heightText string) (int, int, error) {
	w, err := strconv.Atoi(widthText)
	if err != nil || w < 1 {
		return 0, 0, fmt.Errorf("invalid width %q", widthText)
	}
	h, err := strconv.Atoi(heightText)
	if err != nil || h < 1 {
		return 0, 0, fmt.Errorf("invalid height %q", heightText)
	}
	return w, h, nil
}
