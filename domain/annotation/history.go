package annotation

import "slices"

// DefaultHistoryCapacity bounds each of the undo and redo stacks.
const DefaultHistoryCapacity = 150

// HistoryEntry is a full copy of the annotation state.
type HistoryEntry struct {
	Boxes       Snapshot
	Classes     *ClassTable
	ActiveClass int
	DetectorRan bool
}

// Equal compares boxes, classes, active class and the detector flag.
func (e HistoryEntry) Equal(o HistoryEntry) bool {
	return e.Boxes.Equal(o.Boxes) &&
		e.Classes.Equal(o.Classes) &&
		e.ActiveClass == o.ActiveClass &&
		e.DetectorRan == o.DetectorRan
}

// History is a bounded undo/redo store. When a stack exceeds its capacity the
// oldest entries are evicted first. It does not span images; call Reset when
// the open image changes.
type History struct {
	capacity int
	undo     []HistoryEntry
	redo     []HistoryEntry
}

// NewHistory returns an empty history. Non-positive capacities use the default.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

func (h *History) Capacity() int { return h.capacity }

// Push records e as the newest undo step and clears the redo stack.
func (h *History) Push(e HistoryEntry) {
	h.undo = h.trim(append(h.undo, e))
	h.redo = h.redo[:0]
}

// PushUndo snapshots s before a mutation.
func (h *History) PushUndo(s *State) { h.Push(s.Capture()) }

// Undo restores the most recent entry into s, saving the current state for
// redo. It reports false when there is nothing to undo.
func (h *History) Undo(s *State) bool {
	if len(h.undo) == 0 {
		return false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = h.trim(append(h.redo, s.Capture()))
	s.Restore(prev)
	return true
}

// Redo is the mirror of Undo.
func (h *History) Redo(s *State) bool {
	if len(h.redo) == 0 {
		return false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = h.trim(append(h.undo, s.Capture()))
	s.Restore(next)
	return true
}

// Reset clears both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}

func (h *History) UndoDepth() int { return len(h.undo) }
func (h *History) RedoDepth() int { return len(h.redo) }

// UndoEntries returns the undo stack oldest first.
func (h *History) UndoEntries() []HistoryEntry { return slices.Clone(h.undo) }

func (h *History) trim(stack []HistoryEntry) []HistoryEntry {
	if over := len(stack) - h.capacity; over > 0 {
		stack = slices.Delete(stack, 0, over)
	}
	return stack
}
