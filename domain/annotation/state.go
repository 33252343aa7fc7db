package annotation

// State is the editable annotation state of the open image: its boxes, the
// class table, the class used for new boxes and whether a detector has
// filled it.
type State struct {
	Boxes       []Box
	Classes     *ClassTable
	ActiveClass int
	DetectorRan bool
}

// NewState returns an empty state with no active class.
func NewState() *State {
	return &State{Classes: NewClassTable(), ActiveClass: NoClass}
}

// Snapshot captures the box list.
func (s *State) Snapshot() Snapshot {
	if s == nil {
		return nil
	}
	return SnapshotOf(s.Boxes)
}

// Capture deep-copies the state into a history entry.
func (s *State) Capture() HistoryEntry {
	return HistoryEntry{
		Boxes:       s.Snapshot(),
		Classes:     s.Classes.Clone(),
		ActiveClass: s.ActiveClass,
		DetectorRan: s.DetectorRan,
	}
}

// Restore replaces the state with e. Selection is cleared.
func (s *State) Restore(e HistoryEntry) {
	s.Boxes = e.Boxes.Boxes()
	s.Classes = e.Classes.Clone()
	s.ActiveClass = e.ActiveClass
	s.DetectorRan = e.DetectorRan
	s.FixActiveClass()
}

// FixActiveClass falls back to the lowest class id when the active class no
// longer exists, or to NoClass when the table is empty.
func (s *State) FixActiveClass() {
	if s.Classes.Has(s.ActiveClass) {
		return
	}
	s.ActiveClass = s.Classes.Lowest()
}

// Load replaces the boxes with snap, keeping the class table.
func (s *State) Load(snap Snapshot) {
	s.Boxes = snap.Boxes()
}

// SelectedIndices returns the indices of selected boxes in order.
func (s *State) SelectedIndices() []int {
	var out []int
	for i, b := range s.Boxes {
		if b.Selected {
			out = append(out, i)
		}
	}
	return out
}

func (s *State) SelectedCount() int {
	n := 0
	for _, b := range s.Boxes {
		if b.Selected {
			n++
		}
	}
	return n
}

// ClearSelection deselects every box and reports whether anything changed.
func (s *State) ClearSelection() bool {
	changed := false
	for i := range s.Boxes {
		if s.Boxes[i].Selected {
			s.Boxes[i].Selected = false
			changed = true
		}
	}
	return changed
}

// SelectOnly selects box i and deselects all others.
func (s *State) SelectOnly(i int) {
	for j := range s.Boxes {
		s.Boxes[j].Selected = j == i
	}
}

// HitTest returns the topmost visible box containing (x, y), or -1.
// Boxes later in the list are drawn on top and win ties.
func (s *State) HitTest(x, y int) int {
	for i := len(s.Boxes) - 1; i >= 0; i-- {
		b := s.Boxes[i]
		if !s.Classes.Visible(b.ClassID) {
			continue
		}
		if b.Contains(x, y) {
			return i
		}
	}
	return -1
}

// VisibleCount counts boxes whose class is visible.
func (s *State) VisibleCount() int {
	n := 0
	for _, b := range s.Boxes {
		if s.Classes.Visible(b.ClassID) {
			n++
		}
	}
	return n
}

// CountClass counts boxes of class id.
func (s *State) CountClass(id int) int {
	n := 0
	for _, b := range s.Boxes {
		if b.ClassID == id {
			n++
		}
	}
	return n
}
