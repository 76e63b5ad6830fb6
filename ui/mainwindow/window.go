// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"pixelforge/internal/app"
	"pixelforge/internal/imageio"
	"pixelforge/internal/version"
	"pixelforge/ui/canvas"
	"pixelforge/ui/dialogs"
	"pixelforge/ui/panels"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	prefKeyLastDir     = "lastDirectory"
	prefKeyLastProject = "lastProject"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	canvas    *canvas.EditorCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	zoomLabel *widget.Label

	// Menu items that need state tracking
	fitToWindowItem *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State) *MainWindow {
	win := fyneApp.NewWindow("PixelForge")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewEditorCanvas(mw.state)

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("100%")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,               // top
		nil,                   // bottom
		nil,                   // left
		nil,                   // right
		mw.canvas.Container(), // center
	)

	// Main layout: side panel | canvas area
	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil, // top
		container.NewPadded(container.NewHBox(mw.statusBar, mw.zoomLabel)), // bottom
		nil,   // left
		nil,   // right
		split, // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1280, 800))
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", func() {
		mw.onZoomOut()
	})
	zoomInBtn := widget.NewButton("+", func() {
		mw.onZoomIn()
	})
	fitBtn := widget.NewButton("Fit", func() {
		mw.onToggleFitToWindow()
	})
	actualBtn := widget.NewButton("1:1", func() {
		mw.onActualSize()
	})
	undoBtn := widget.NewButton("Undo", func() { mw.onUndo() })
	redoBtn := widget.NewButton("Redo", func() { mw.onRedo() })

	return container.NewHBox(
		undoBtn,
		redoBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		actualBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New...", mw.onNewDocument),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Image as Layer...", mw.onImportImage),
		fyne.NewMenuItem("Export Image...", mw.onExportImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
	)

	imageMenu := fyne.NewMenu("Image",
		fyne.NewMenuItem("Brightness / Contrast...", func() {
			dialogs.ShowBrightnessContrast(mw.Window, mw.state)
		}),
		fyne.NewMenuItem("Hue / Saturation...", func() {
			dialogs.ShowHueSaturation(mw.Window, mw.state)
		}),
		fyne.NewMenuItem("Auto Contrast...", func() {
			dialogs.ShowAutoContrast(mw.Window, mw.state)
		}),
		fyne.NewMenuItem("Invert", func() {
			mw.state.ApplyAdjustment(app.AdjustInvert, 0, 0)
		}),
		fyne.NewMenuItem("Grayscale", func() {
			mw.state.ApplyAdjustment(app.AdjustGrayscale, 0, 0)
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Flip Horizontal", func() {
			mw.state.ApplyTransform(app.TransformFlipHorizontal)
		}),
		fyne.NewMenuItem("Flip Vertical", func() {
			mw.state.ApplyTransform(app.TransformFlipVertical)
		}),
		fyne.NewMenuItem("Rotate 180", func() {
			mw.state.ApplyTransform(app.TransformRotate180)
		}),
		fyne.NewMenuItem("Rotate 90 CW", func() {
			mw.state.ApplyTransform(app.TransformRotate90CW)
		}),
		fyne.NewMenuItem("Rotate 90 CCW", func() {
			mw.state.ApplyTransform(app.TransformRotate90CCW)
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Resize Canvas...", func() {
			dialogs.ShowResizeCanvas(mw.Window, mw.state)
		}),
	)

	layerMenu := fyne.NewMenu("Layer",
		fyne.NewMenuItem("Add Layer", func() { mw.state.AddLayer("") }),
		fyne.NewMenuItem("Duplicate Layer", func() {
			mw.state.DuplicateLayer(mw.state.Canvas.ActiveLayerIndex)
		}),
		fyne.NewMenuItem("Delete Layer", func() {
			mw.state.DeleteLayer(mw.state.Canvas.ActiveLayerIndex)
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Merge Down", func() {
			mw.state.MergeDown(mw.state.Canvas.ActiveLayerIndex)
		}),
		fyne.NewMenuItem("Flatten Image", func() { mw.state.Flatten() }),
	)

	selectMenu := fyne.NewMenu("Select",
		fyne.NewMenuItem("All", func() { mw.state.SelectAll() }),
		fyne.NewMenuItem("None", func() { mw.state.ClearSelection() }),
		fyne.NewMenuItem("Invert", func() { mw.state.InvertSelection() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete Pixels", func() { mw.state.DeleteSelection() }),
		fyne.NewMenuItem("Content-Aware Fill...", func() {
			dialogs.ShowInpaint(mw.Window, mw.state)
		}),
	)

	filterMenu := fyne.NewMenu("Filter",
		fyne.NewMenuItem("Gaussian Blur...", func() {
			dialogs.ShowFilter(mw.Window, mw.state, app.FilterGaussianBlur)
		}),
		fyne.NewMenuItem("Median Blur...", func() {
			dialogs.ShowFilter(mw.Window, mw.state, app.FilterMedianBlur)
		}),
		fyne.NewMenuItem("Sharpen...", func() {
			dialogs.ShowFilter(mw.Window, mw.state, app.FilterSharpen)
		}),
	)

	mw.fitToWindowItem = fyne.NewMenuItem("  Fit to Window", mw.onToggleFitToWindow)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		mw.fitToWindowItem,
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mainMenu := fyne.NewMainMenu(fileMenu, editMenu, imageMenu, layerMenu,
		selectMenu, filterMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mainMenu)
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventProjectLoaded, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle("PixelForge - " + filepath.Base(path))
			mw.updateStatus("Project loaded: " + path)
			mw.app.Preferences().SetString(prefKeyLastProject, path)
		}
	})

	mw.state.On(app.EventProjectSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle("PixelForge - " + filepath.Base(path))
			mw.updateStatus("Project saved: " + path)
			mw.app.Preferences().SetString(prefKeyLastProject, path)
		}
	})

	mw.state.On(app.EventDocumentNew, func(data interface{}) {
		mw.SetTitle("PixelForge - Untitled")
		mw.updateStatus(fmt.Sprintf("New document %dx%d",
			mw.state.Canvas.Width, mw.state.Canvas.Height))
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})

	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", zoom*100))
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	dir := filepath.Dir(filePath)
	mw.app.Preferences().SetString(prefKeyLastDir, dir)
}

// RestoreLastProject reopens the project from the previous session, if any.
func (mw *MainWindow) RestoreLastProject() {
	path := mw.app.Preferences().String(prefKeyLastProject)
	if path == "" {
		return
	}
	if err := mw.state.OpenProject(path); err != nil {
		mw.updateStatus("Could not reopen " + filepath.Base(path))
		return
	}
	mw.state.SetModified(false)
}

// Menu action handlers

func (mw *MainWindow) onNewDocument() {
	if mw.state.Modified {
		dialog.ShowConfirm("New Document",
			"Discard unsaved changes?",
			func(confirmed bool) {
				if confirmed {
					dialogs.ShowNewDocument(mw.Window, mw.state)
				}
			}, mw.Window)
		return
	}
	dialogs.ShowNewDocument(mw.Window, mw.state)
}

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.OpenProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".pfproj"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveProject() {
	if mw.state.ProjectPath == "" {
		mw.onSaveProjectAs()
		return
	}
	if err := mw.state.SaveProject(mw.state.ProjectPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != ".pfproj" {
			path += ".pfproj"
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveProject(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName("untitled.pfproj")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onImportImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.ImportImageAsLayer(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Imported " + filepath.Base(path))
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(imageio.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExportImage() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !imageio.IsSupportedFormat(path) {
			path += ".png"
		}
		mw.saveLastDir(path)
		if err := mw.state.ExportFlattened(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported " + filepath.Base(path))
	}, mw.Window)
	fd.SetFileName("untitled.png")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onUndo() {
	if mw.state.Undo() {
		mw.updateStatus("Undone")
	}
}

func (mw *MainWindow) onRedo() {
	if mw.state.Redo() {
		mw.updateStatus("Redone")
	}
}

func (mw *MainWindow) onZoomIn() {
	mw.disableFitToWindow()
	mw.canvas.ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.disableFitToWindow()
	mw.canvas.ZoomOut()
}

func (mw *MainWindow) onToggleFitToWindow() {
	enabled := !mw.canvas.GetFitToWindow()
	mw.canvas.SetFitToWindow(enabled)

	if enabled {
		mw.fitToWindowItem.Label = "✓ Fit to Window"
	} else {
		mw.fitToWindowItem.Label = "  Fit to Window"
	}
}

func (mw *MainWindow) onActualSize() {
	mw.disableFitToWindow()
	mw.canvas.SetZoom(1.0)
}

func (mw *MainWindow) disableFitToWindow() {
	if mw.canvas.GetFitToWindow() {
		mw.canvas.SetFitToWindow(false)
		mw.fitToWindowItem.Label = "  Fit to Window"
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About PixelForge",
		fmt.Sprintf("PixelForge v%s\n\n"+
			"A layered raster image editor.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
