// Package panels provides UI panels for the application.
package panels

import (
	"pixelforge/internal/app"
	"pixelforge/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	canvas    *canvas.EditorCanvas
	container *container.AppTabs

	// Tab content
	toolsPanel   *ToolsPanel
	layersPanel  *LayersPanel
	historyPanel *HistoryPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State, cvs *canvas.EditorCanvas) *SidePanel {
	sp := &SidePanel{
		state:  state,
		canvas: cvs,
	}

	sp.toolsPanel = NewToolsPanel(state, cvs)
	sp.layersPanel = NewLayersPanel(state)
	sp.historyPanel = NewHistoryPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Tools", sp.toolsPanel.Container()),
		container.NewTabItem("Layers", sp.layersPanel.Container()),
		container.NewTabItem("History", sp.historyPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Tools returns the tools panel for menu and shortcut wiring.
func (sp *SidePanel) Tools() *ToolsPanel {
	return sp.toolsPanel
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.toolsPanel.SetWindow(w)
	sp.layersPanel.SetWindow(w)
}
