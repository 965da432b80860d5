package ui

import "github.com/piwi3910/BlockPack/internal/model"

const defaultMaxDepth = 50

// Snapshot captures the edited problem at a point in time.
type Snapshot struct {
	Space  model.Space
	Blocks []model.Block
	Label  string // what the edit did, e.g. "Add Block"
}

// History manages undo/redo stacks of problem snapshots.
type History struct {
	undoStack []Snapshot
	redoStack []Snapshot
	maxDepth  int
}

// NewHistory creates a History with the default max depth of 50.
func NewHistory() *History {
	return &History{
		maxDepth: defaultMaxDepth,
	}
}

// Push saves a snapshot onto the undo stack and clears the redo stack.
// Call it before the edit is applied.
func (h *History) Push(s Snapshot) {
	h.undoStack = append(h.undoStack, s)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[len(h.undoStack)-h.maxDepth:]
	}
	h.redoStack = nil
}

// Undo pops the most recent snapshot and pushes current onto the redo
// stack. It reports false when there is nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return last, true
}

// Redo pops the most recent undone snapshot and pushes current onto the
// undo stack. It reports false when there is nothing to redo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return last, true
}

func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

// MakeSnapshot copies a problem's space and blocks under label.
func MakeSnapshot(p model.Problem, label string) Snapshot {
	var blocks []model.Block
	if p.Blocks != nil {
		blocks = make([]model.Block, len(p.Blocks))
		copy(blocks, p.Blocks)
	}
	return Snapshot{Space: p.Space, Blocks: blocks, Label: label}
}

// Apply writes the snapshot back into p, renumbering the blocks.
func (s Snapshot) Apply(p *model.Problem) {
	p.Space = s.Space
	p.Blocks = nil
	if s.Blocks != nil {
		p.Blocks = make([]model.Block, len(s.Blocks))
		copy(p.Blocks, s.Blocks)
	}
	p.Renumber()
}
