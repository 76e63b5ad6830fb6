package history

import "pixelforge/internal/canvas"

// CanvasSnapshot is a deep copy of the whole layer stack. Used by
// operations whose effect cannot be expressed as a bounded patch, such as
// merge-down, flatten, and whole-canvas transforms.
type CanvasSnapshot struct {
	Layers           []*canvas.Layer
	ActiveLayerIndex int
	Width            int
	Height           int
}

// TakeSnapshot deep-copies the current canvas state.
func TakeSnapshot(s *canvas.State) *CanvasSnapshot {
	layers := make([]*canvas.Layer, len(s.Layers))
	for i, l := range s.Layers {
		layers[i] = l.Clone()
	}
	return &CanvasSnapshot{
		Layers:           layers,
		ActiveLayerIndex: s.ActiveLayerIndex,
		Width:            s.Width,
		Height:           s.Height,
	}
}

// Restore writes the snapshot back into s. Layers are cloned on the way
// in so the snapshot stays intact across repeated undo/redo cycles.
func (snap *CanvasSnapshot) Restore(s *canvas.State) {
	layers := make([]*canvas.Layer, len(snap.Layers))
	for i, l := range snap.Layers {
		layers[i] = l.Clone()
	}
	s.Layers = layers
	s.ActiveLayerIndex = snap.ActiveLayerIndex
	s.Width = snap.Width
	s.Height = snap.Height
	s.MarkAllDirty()
}

// MemoryBytes sums the pixel footprint of all snapshot layers.
func (snap *CanvasSnapshot) MemoryBytes() int {
	total := 0
	for _, l := range snap.Layers {
		total += l.Pixels.MemoryBytes()
	}
	return total
}

// SnapshotCommand undoes and redoes by swapping whole canvas snapshots.
type SnapshotCommand struct {
	Name   string
	Before *CanvasSnapshot
	After  *CanvasSnapshot
}

func (c *SnapshotCommand) Description() string { return c.Name }

func (c *SnapshotCommand) Undo(s *canvas.State) { c.Before.Restore(s) }

func (c *SnapshotCommand) Redo(s *canvas.State) { c.After.Restore(s) }

func (c *SnapshotCommand) MemorySize() int {
	return c.Before.MemoryBytes() + c.After.MemoryBytes()
}

// SingleLayerSnapshotCommand captures one layer before and after an
// operation that rewrites it wholesale (filters, adjustments over the
// full layer).
type SingleLayerSnapshotCommand struct {
	Name   string
	Index  int
	Before *canvas.Layer
	After  *canvas.Layer
}

func (c *SingleLayerSnapshotCommand) Description() string { return c.Name }

func (c *SingleLayerSnapshotCommand) Undo(s *canvas.State) { c.apply(s, c.Before) }

func (c *SingleLayerSnapshotCommand) Redo(s *canvas.State) { c.apply(s, c.After) }

func (c *SingleLayerSnapshotCommand) apply(s *canvas.State, l *canvas.Layer) {
	if c.Index < 0 || c.Index >= len(s.Layers) {
		return
	}
	s.Layers[c.Index] = l.Clone()
	s.MarkAllDirty()
}

func (c *SingleLayerSnapshotCommand) MemorySize() int {
	return c.Before.Pixels.MemoryBytes() + c.After.Pixels.MemoryBytes()
}
