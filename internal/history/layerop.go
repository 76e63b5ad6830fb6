package history

import (
	"image/color"

	"pixelforge/internal/canvas"
)

// metaCommandBytes is the nominal footprint charged for commands that
// capture only indices, names, or scalar attributes.
const metaCommandBytes = 64

// AddLayerCommand records the insertion of a new empty layer. Undoing it
// removes the layer wholesale: pixels painted onto it after the add are
// not preserved, since the add was recorded before they existed.
type AddLayerCommand struct {
	Index int
	Name  string
}

func (c *AddLayerCommand) Description() string { return "Add Layer" }

func (c *AddLayerCommand) Undo(s *canvas.State) {
	s.RemoveLayer(c.Index)
}

func (c *AddLayerCommand) Redo(s *canvas.State) {
	layer := canvas.NewLayer(c.Name, s.Width, s.Height, color.RGBA{})
	s.InsertLayer(c.Index, layer)
}

func (c *AddLayerCommand) MemorySize() int { return metaCommandBytes }

// DeleteLayerCommand keeps the removed layer so undo can reinsert it.
type DeleteLayerCommand struct {
	Index int
	Layer *canvas.Layer
}

func (c *DeleteLayerCommand) Description() string { return "Delete Layer" }

func (c *DeleteLayerCommand) Undo(s *canvas.State) {
	s.InsertLayer(c.Index, c.Layer)
}

func (c *DeleteLayerCommand) Redo(s *canvas.State) {
	s.RemoveLayer(c.Index)
}

func (c *DeleteLayerCommand) MemorySize() int {
	return c.Layer.Pixels.MemoryBytes()
}

// InsertLayerCommand records the insertion of a layer with existing
// content (duplicate, image import). The layer is kept so redo reproduces
// it exactly even if its source has since changed.
type InsertLayerCommand struct {
	Name  string
	Index int
	Layer *canvas.Layer
}

func (c *InsertLayerCommand) Description() string { return c.Name }

func (c *InsertLayerCommand) Undo(s *canvas.State) {
	s.RemoveLayer(c.Index)
}

func (c *InsertLayerCommand) Redo(s *canvas.State) {
	s.InsertLayer(c.Index, c.Layer)
}

func (c *InsertLayerCommand) MemorySize() int {
	return c.Layer.Pixels.MemoryBytes()
}

// MoveLayerCommand records a stack reorder.
type MoveLayerCommand struct {
	From int
	To   int
}

func (c *MoveLayerCommand) Description() string { return "Move Layer" }

func (c *MoveLayerCommand) Undo(s *canvas.State) { s.MoveLayer(c.To, c.From) }

func (c *MoveLayerCommand) Redo(s *canvas.State) { s.MoveLayer(c.From, c.To) }

func (c *MoveLayerCommand) MemorySize() int { return metaCommandBytes }

// OpacityCommand records an opacity change on one layer.
type OpacityCommand struct {
	Index int
	Old   float64
	New   float64
}

func (c *OpacityCommand) Description() string { return "Layer Opacity" }

func (c *OpacityCommand) Undo(s *canvas.State) { c.apply(s, c.Old) }

func (c *OpacityCommand) Redo(s *canvas.State) { c.apply(s, c.New) }

func (c *OpacityCommand) apply(s *canvas.State, v float64) {
	if c.Index < 0 || c.Index >= len(s.Layers) {
		return
	}
	s.Layers[c.Index].SetOpacity(v)
	s.MarkAllDirty()
}

func (c *OpacityCommand) MemorySize() int { return metaCommandBytes }

// VisibilityCommand records a visibility toggle on one layer.
type VisibilityCommand struct {
	Index int
	Old   bool
	New   bool
}

func (c *VisibilityCommand) Description() string { return "Layer Visibility" }

func (c *VisibilityCommand) Undo(s *canvas.State) { c.apply(s, c.Old) }

func (c *VisibilityCommand) Redo(s *canvas.State) { c.apply(s, c.New) }

func (c *VisibilityCommand) apply(s *canvas.State, v bool) {
	if c.Index < 0 || c.Index >= len(s.Layers) {
		return
	}
	s.Layers[c.Index].Visible = v
	s.MarkAllDirty()
}

func (c *VisibilityCommand) MemorySize() int { return metaCommandBytes }

// RenameLayerCommand records a layer name change.
type RenameLayerCommand struct {
	Index int
	Old   string
	New   string
}

func (c *RenameLayerCommand) Description() string { return "Rename Layer" }

func (c *RenameLayerCommand) Undo(s *canvas.State) { c.apply(s, c.Old) }

func (c *RenameLayerCommand) Redo(s *canvas.State) { c.apply(s, c.New) }

func (c *RenameLayerCommand) apply(s *canvas.State, name string) {
	if c.Index < 0 || c.Index >= len(s.Layers) {
		return
	}
	s.Layers[c.Index].Name = name
}

func (c *RenameLayerCommand) MemorySize() int {
	return metaCommandBytes + len(c.Old) + len(c.New)
}

// BlendModeCommand records a blend mode change on one layer.
type BlendModeCommand struct {
	Index int
	Old   canvas.BlendMode
	New   canvas.BlendMode
}

func (c *BlendModeCommand) Description() string { return "Layer Blend Mode" }

func (c *BlendModeCommand) Undo(s *canvas.State) { c.apply(s, c.Old) }

func (c *BlendModeCommand) Redo(s *canvas.State) { c.apply(s, c.New) }

func (c *BlendModeCommand) apply(s *canvas.State, m canvas.BlendMode) {
	if c.Index < 0 || c.Index >= len(s.Layers) {
		return
	}
	s.Layers[c.Index].BlendMode = m
	s.MarkAllDirty()
}

func (c *BlendModeCommand) MemorySize() int { return metaCommandBytes }
