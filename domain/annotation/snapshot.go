package annotation

import "sort"

// Entry is one persisted box without selection state.
type Entry struct {
	X1, Y1, X2, Y2 int
	ClassID        int
}

// Box converts the entry back into an unselected box.
func (e Entry) Box() Box { return NewBox(e.X1, e.Y1, e.X2, e.Y2, e.ClassID) }

// Snapshot is the ordered box list of one image. Treat it as immutable once
// handed to another owner; Clone before mutating.
type Snapshot []Entry

// SnapshotOf captures boxes in order.
func SnapshotOf(boxes []Box) Snapshot {
	out := make(Snapshot, len(boxes))
	for i, b := range boxes {
		out[i] = Entry{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2, ClassID: b.ClassID}
	}
	return out
}

// Boxes materialises the snapshot as unselected boxes.
func (s Snapshot) Boxes() []Box {
	out := make([]Box, len(s))
	for i, e := range s {
		out[i] = e.Box()
	}
	return out
}

func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

// ClassIDs returns the distinct class ids in ascending order.
func (s Snapshot) ClassIDs() []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, e := range s {
		if _, ok := seen[e.ClassID]; ok {
			continue
		}
		seen[e.ClassID] = struct{}{}
		ids = append(ids, e.ClassID)
	}
	sort.Ints(ids)
	return ids
}

func (s Snapshot) Equal(o Snapshot) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}
