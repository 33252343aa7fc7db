package interaction

import (
	"fmt"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

// AddClass creates a new class. The first class becomes active.
func (c *Controller) AddClass(name string) (annotation.ClassDefinition, error) {
	trial := c.state.Classes.Clone()
	if _, err := trial.Add(name); err != nil {
		c.status("Cannot add label: %v.", err)
		return annotation.ClassDefinition{}, err
	}
	c.pushUndo()
	def, _ := c.state.Classes.Add(name)
	if !c.state.Classes.Has(c.state.ActiveClass) {
		c.state.ActiveClass = def.ID
	}
	c.changed()
	c.status("Added label %q as id %d.", def.Name, def.ID)
	return def, nil
}

// RemoveClass deletes class id together with all its boxes. Confirmation is
// requested when the class is in use.
func (c *Controller) RemoveClass(id int) error {
	def, ok := c.state.Classes.Get(id)
	if !ok {
		c.status("Class id %d does not exist.", id)
		return fmt.Errorf("%w: %d", annotation.ErrUnknownClass, id)
	}
	if n := c.state.CountClass(id); n > 0 {
		msg := fmt.Sprintf("Class %q (id %d) has %d boxes. Delete them and remove the class?", def.Name, id, n)
		if !c.confirm("Class in use", msg) {
			c.status("Remove cancelled.")
			return nil
		}
	}
	c.pushUndo()
	kept := c.state.Boxes[:0:0]
	for _, b := range c.state.Boxes {
		if b.ClassID != id {
			kept = append(kept, b)
		}
	}
	c.state.Boxes = kept
	_ = c.state.Classes.Remove(id)
	c.state.FixActiveClass()
	c.changed()
	c.status("Removed class id %d.", id)
	return nil
}

// RenameClass changes a class name; names stay unique ignoring case.
func (c *Controller) RenameClass(id int, name string) error {
	trial := c.state.Classes.Clone()
	if err := trial.Rename(id, name); err != nil {
		c.status("Cannot rename: %v.", err)
		return err
	}
	c.pushUndo()
	_ = c.state.Classes.Rename(id, name)
	c.changed()
	c.status("Renamed class %d to %q.", id, name)
	return nil
}

// RecolorClass sets the display colour of a class.
func (c *Controller) RecolorClass(id int, color annotation.RGB) error {
	if !c.state.Classes.Has(id) {
		return fmt.Errorf("%w: %d", annotation.ErrUnknownClass, id)
	}
	c.pushUndo()
	_ = c.state.Classes.SetColor(id, color)
	c.changed()
	c.status("Colour set for class %d: %s", id, color.Hex())
	return nil
}

// MergeClasses reassigns every box of src to dst and removes src.
func (c *Controller) MergeClasses(src, dst int) error {
	if src == dst {
		c.status("Source and target are the same.")
		return annotation.ErrSameClass
	}
	sd, okS := c.state.Classes.Get(src)
	dd, okD := c.state.Classes.Get(dst)
	if !okS || !okD {
		c.status("Source or target id does not exist.")
		return fmt.Errorf("%w: %d -> %d", annotation.ErrUnknownClass, src, dst)
	}
	msg := fmt.Sprintf("Merge %q (id %d) into %q (id %d)?", sd.Name, src, dd.Name, dst)
	if !c.confirm("Confirm merge", msg) {
		c.status("Merge cancelled.")
		return nil
	}
	c.pushUndo()
	for i := range c.state.Boxes {
		if c.state.Boxes[i].ClassID == src {
			c.state.Boxes[i].ClassID = dst
		}
	}
	_ = c.state.Classes.Remove(src)
	c.state.FixActiveClass()
	c.changed()
	c.status("Merged class %d into %d.", src, dst)
	return nil
}

// SetClassVisible toggles whether boxes of a class are drawn and hittable.
// Hidden boxes are deselected.
func (c *Controller) SetClassVisible(id int, visible bool) error {
	if err := c.state.Classes.SetVisible(id, visible); err != nil {
		return err
	}
	if !visible {
		for i := range c.state.Boxes {
			if c.state.Boxes[i].ClassID == id {
				c.state.Boxes[i].Selected = false
			}
		}
	}
	return nil
}
