package interaction

import (
	"fmt"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

// SelectClassHotkey makes the d-th class by ascending id the active class.
func (c *Controller) SelectClassHotkey(d int) bool {
	id, ok := c.state.Classes.Nth(d)
	if !ok {
		c.status("No class #%d (only %d defined).", d, c.state.Classes.Len())
		return false
	}
	c.state.ActiveClass = id
	def, _ := c.state.Classes.Get(id)
	c.status("Active class: %s (%d).", def.Name, id)
	return true
}

// SetActiveClass selects the class used for new boxes.
func (c *Controller) SetActiveClass(id int) error {
	if !c.state.Classes.Has(id) {
		return fmt.Errorf("%w: %d", annotation.ErrUnknownClass, id)
	}
	c.state.ActiveClass = id
	return nil
}

// SelectAt selects the topmost box under the view point alone, without
// starting a gesture. It returns the index or -1.
func (c *Controller) SelectAt(vx, vy float64) int {
	if !c.loaded {
		return -1
	}
	ix, iy := c.view.ToImage(vx, vy, true)
	hit := c.state.HitTest(ix, iy)
	if hit >= 0 {
		c.state.SelectOnly(hit)
	}
	return hit
}

// ClearSelection deselects all boxes.
func (c *Controller) ClearSelection() { c.state.ClearSelection() }

// DeleteSelected removes every selected box in one undo step.
func (c *Controller) DeleteSelected() int {
	n := c.state.SelectedCount()
	if n == 0 {
		c.status("Delete: no selection.")
		return 0
	}
	c.pushUndo()
	kept := c.state.Boxes[:0:0]
	for _, b := range c.state.Boxes {
		if !b.Selected {
			kept = append(kept, b)
		}
	}
	c.state.Boxes = kept
	c.changed()
	c.status("Deleted %d selected box(es).", n)
	return n
}

// ClearBoxes removes all boxes of the open image after confirmation.
func (c *Controller) ClearBoxes() bool {
	n := len(c.state.Boxes)
	if n == 0 {
		c.status("No boxes to clear.")
		return false
	}
	if !c.confirm("Clear all boxes?", fmt.Sprintf("Delete all %d box(es) on this image? Undo restores them.", n)) {
		c.status("Clear cancelled.")
		return false
	}
	c.pushUndo()
	c.state.Boxes = nil
	c.changed()
	c.status("Cleared boxes.")
	return true
}

// SetSelectedClass reassigns the selected boxes to class id. History is
// recorded only when at least one box changes.
func (c *Controller) SetSelectedClass(id int) bool {
	def, ok := c.state.Classes.Get(id)
	if !ok {
		c.status("Class id %d does not exist.", id)
		return false
	}
	changed := false
	for i := range c.state.Boxes {
		b := &c.state.Boxes[i]
		if !b.Selected || b.ClassID == id {
			continue
		}
		if !changed {
			c.pushUndo()
			changed = true
		}
		b.ClassID = id
	}
	if changed {
		c.changed()
		c.status("Changed selected box(es) to class %d (%s).", id, def.Name)
	}
	return changed
}

// Nudge moves the selected boxes by (dx, dy) pixels in one undo step.
func (c *Controller) Nudge(dx, dy int) bool {
	if !c.loaded {
		return false
	}
	sel := c.state.SelectedIndices()
	if len(sel) == 0 {
		return false
	}
	c.pushUndo()
	for _, i := range sel {
		c.state.Boxes[i].MoveBy(dx, dy, c.size)
	}
	c.changed()
	return true
}

// Copy stores the selected boxes for Paste.
func (c *Controller) Copy() int {
	var picked []annotation.Box
	for _, b := range c.state.Boxes {
		if b.Selected {
			picked = append(picked, b)
		}
	}
	if len(picked) == 0 {
		c.status("Copy: no selection.")
		return 0
	}
	c.clipboard = annotation.SnapshotOf(picked)
	c.pasteCount = 0
	c.status("Copied %d box(es).", len(picked))
	return len(picked)
}

// Paste inserts the copied boxes shifted by a growing offset, selects them
// and returns how many were added.
func (c *Controller) Paste() int {
	if !c.loaded || len(c.clipboard) == 0 {
		c.status("Paste: nothing to paste.")
		return 0
	}
	if c.state.Classes.Len() == 0 {
		c.status("Paste failed: no labels exist.")
		return 0
	}
	c.pasteCount++
	off := c.opts.PasteNudge * (c.pasteCount % 6)
	var pasted []annotation.Box
	for _, e := range c.clipboard {
		cls := e.ClassID
		if !c.state.Classes.Has(cls) {
			cls = c.state.Classes.Lowest()
		}
		w, h := e.X2-e.X1, e.Y2-e.Y1
		nx1 := min(max(e.X1+off, 0), c.size.W-1)
		ny1 := min(max(e.Y1+off, 0), c.size.H-1)
		nx2 := min(max(nx1+w, 0), c.size.W-1)
		ny2 := min(max(ny1+h, 0), c.size.H-1)
		nb := annotation.NewBox(nx1, ny1, nx2, ny2, cls)
		if !nb.SizeOK(c.opts.MinSide) {
			continue
		}
		nb.Selected = true
		pasted = append(pasted, nb)
	}
	if len(pasted) == 0 {
		c.status("Paste failed: out of bounds.")
		return 0
	}
	c.pushUndo()
	c.state.ClearSelection()
	c.state.Boxes = append(c.state.Boxes, pasted...)
	c.changed()
	c.status("Pasted %d box(es) (selected).", len(pasted))
	return len(pasted)
}

// Undo reverts the last committed change.
func (c *Controller) Undo() bool {
	c.setGesture(nil)
	if !c.history.Undo(c.state) {
		c.status("Nothing to undo.")
		return false
	}
	c.changed()
	c.status("Undo.")
	return true
}

// Redo re-applies the last undone change.
func (c *Controller) Redo() bool {
	c.setGesture(nil)
	if !c.history.Redo(c.state) {
		c.status("Nothing to redo.")
		return false
	}
	c.changed()
	c.status("Redo.")
	return true
}

// ApplyDetections replaces the boxes with detector output as one undo step.
// Unknown class ids are added using names, falling back to class_<id>.
func (c *Controller) ApplyDetections(snap annotation.Snapshot, names map[int]string) {
	c.setGesture(nil)
	c.pushUndo()
	c.state.Load(snap)
	for _, id := range snap.ClassIDs() {
		c.state.Classes.Ensure(id, names[id])
	}
	c.state.DetectorRan = true
	c.state.FixActiveClass()
	c.changed()
}

// DetectorRan reports whether detections were applied to the open image.
func (c *Controller) DetectorRan() bool { return c.state.DetectorRan }
