package history

import (
	"log"

	"pixelforge/internal/canvas"
)

// Command is one undoable edit. Commands are recorded after the edit has
// already been applied to the canvas, so Redo must reproduce the edit from
// captured state, never by replaying input.
type Command interface {
	Description() string
	Undo(s *canvas.State)
	Redo(s *canvas.State)
	// MemorySize is the approximate heap footprint of the captured state,
	// in bytes, used for eviction accounting.
	MemorySize() int
}

const (
	// DefaultMaxDepth bounds the undo stack length.
	DefaultMaxDepth = 50
	// DefaultMaxBytes bounds the combined captured-state footprint of the
	// undo stack (100 MB).
	DefaultMaxBytes = 100 << 20
)

// Manager owns the undo and redo stacks. Pushing a new command discards
// all redo state; exceeding the depth or byte budget evicts the oldest
// undo entries first.
type Manager struct {
	undo []Command
	redo []Command

	maxDepth int
	maxBytes int
	bytes    int
}

// NewManager returns a Manager with the default depth and byte budgets.
func NewManager() *Manager {
	return &Manager{maxDepth: DefaultMaxDepth, maxBytes: DefaultMaxBytes}
}

// NewManagerWithLimits returns a Manager with explicit budgets. Values
// below 1 fall back to the defaults.
func NewManagerWithLimits(maxDepth, maxBytes int) *Manager {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	if maxBytes < 1 {
		maxBytes = DefaultMaxBytes
	}
	return &Manager{maxDepth: maxDepth, maxBytes: maxBytes}
}

// Push records an already-applied command and clears the redo stack.
func (m *Manager) Push(cmd Command) {
	m.undo = append(m.undo, cmd)
	m.bytes += cmd.MemorySize()
	m.redo = nil
	m.evict()
}

func (m *Manager) evict() {
	evicted := 0
	for len(m.undo) > m.maxDepth || (m.bytes > m.maxBytes && len(m.undo) > 1) {
		m.bytes -= m.undo[0].MemorySize()
		m.undo[0] = nil
		m.undo = m.undo[1:]
		evicted++
	}
	if evicted > 0 {
		log.Printf("history: evicted %d oldest entries (%d remain, %d bytes)", evicted, len(m.undo), m.bytes)
	}
}

// CanUndo reports whether an undo step is available.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// UndoDescription names the command Undo would revert, or "".
func (m *Manager) UndoDescription() string {
	if len(m.undo) == 0 {
		return ""
	}
	return m.undo[len(m.undo)-1].Description()
}

// RedoDescription names the command Redo would reapply, or "".
func (m *Manager) RedoDescription() string {
	if len(m.redo) == 0 {
		return ""
	}
	return m.redo[len(m.redo)-1].Description()
}

// Undo reverts the most recent command against s. Returns false when the
// undo stack is empty.
func (m *Manager) Undo(s *canvas.State) bool {
	if len(m.undo) == 0 {
		return false
	}
	cmd := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.bytes -= cmd.MemorySize()
	cmd.Undo(s)
	m.redo = append(m.redo, cmd)
	return true
}

// Redo reapplies the most recently undone command against s. Returns
// false when the redo stack is empty.
func (m *Manager) Redo(s *canvas.State) bool {
	if len(m.redo) == 0 {
		return false
	}
	cmd := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	cmd.Redo(s)
	m.undo = append(m.undo, cmd)
	m.bytes += cmd.MemorySize()
	return true
}

// Clear drops both stacks. Called when the canvas dimensions change,
// since captured patches no longer line up with the document.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
	m.bytes = 0
}

// UndoCount returns the undo stack depth.
func (m *Manager) UndoCount() int { return len(m.undo) }

// RedoCount returns the redo stack depth.
func (m *Manager) RedoCount() int { return len(m.redo) }

// MemoryBytes returns the tracked footprint of the undo stack.
func (m *Manager) MemoryBytes() int { return m.bytes }

// UndoDescriptions lists undo entries oldest-first, for the history panel.
func (m *Manager) UndoDescriptions() []string {
	out := make([]string, len(m.undo))
	for i, c := range m.undo {
		out[i] = c.Description()
	}
	return out
}
