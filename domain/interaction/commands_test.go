package interaction

import (
	"errors"
	"testing"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

func TestSelectClassHotkey(t *testing.T) {
	c, rec := newTestController(t)
	if _, err := c.AddClass("car"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !c.SelectClassHotkey(2) || c.State().ActiveClass != 1 {
		t.Fatalf("hotkey 2 must pick id 1, active=%d", c.State().ActiveClass)
	}
	if c.SelectClassHotkey(5) {
		t.Fatalf("hotkey beyond the class count must fail")
	}
	if rec.last() != "No class #5 (only 2 defined)." {
		t.Fatalf("unexpected status %q", rec.last())
	}
}

func TestDeleteSelectedIsOneStep(t *testing.T) {
	c, _ := newTestController(t,
		annotation.NewBox(0, 0, 10, 10, 0),
		annotation.NewBox(20, 20, 30, 30, 0),
		annotation.NewBox(40, 40, 50, 50, 0),
	)
	c.State().Boxes[0].Selected = true
	c.State().Boxes[2].Selected = true
	if n := c.DeleteSelected(); n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	if len(c.State().Boxes) != 1 || c.State().Boxes[0].X1 != 20 {
		t.Fatalf("unexpected remaining boxes %+v", c.State().Boxes)
	}
	c.Undo()
	if len(c.State().Boxes) != 3 {
		t.Fatalf("undo must restore all boxes")
	}
	if c.State().SelectedCount() != 0 {
		t.Fatalf("undo must clear the selection")
	}
}

func TestClearBoxesRespectsConfirm(t *testing.T) {
	c, rec := newTestController(t, annotation.NewBox(0, 0, 10, 10, 0))
	rec.confirm = false
	if c.ClearBoxes() || len(c.State().Boxes) != 1 {
		t.Fatalf("declined clear must keep boxes")
	}
	rec.confirm = true
	if !c.ClearBoxes() || len(c.State().Boxes) != 0 {
		t.Fatalf("confirmed clear must remove boxes")
	}
}

func TestSetSelectedClassRecordsOnlyOnChange(t *testing.T) {
	c, _ := newTestController(t, annotation.NewBox(0, 0, 10, 10, 0))
	c.State().Boxes[0].Selected = true
	if c.SetSelectedClass(0) {
		t.Fatalf("same class must not count as a change")
	}
	if c.History().UndoDepth() != 0 {
		t.Fatalf("no-op must not push history")
	}
	def, _ := c.AddClass("car")
	c.History().Reset()
	if !c.SetSelectedClass(def.ID) || c.State().Boxes[0].ClassID != def.ID {
		t.Fatalf("expected reassignment to %d", def.ID)
	}
	if c.History().UndoDepth() != 1 {
		t.Fatalf("expected one history entry, got %d", c.History().UndoDepth())
	}
}

func TestNudgeClampsAtEdge(t *testing.T) {
	c, _ := newTestController(t, annotation.NewBox(0, 0, 10, 10, 0))
	c.State().Boxes[0].Selected = true
	c.Nudge(-1, 0)
	if b := c.State().Boxes[0]; b.X1 != 0 || b.X2 != 10 {
		t.Fatalf("nudge past the edge must clamp, got %+v", b)
	}
	c.Nudge(5, 3)
	if b := c.State().Boxes[0]; b.X1 != 5 || b.Y1 != 3 {
		t.Fatalf("unexpected nudge result %+v", b)
	}
}

func TestCopyPasteOffsets(t *testing.T) {
	c, _ := newTestController(t, annotation.NewBox(10, 10, 30, 30, 0))
	c.State().Boxes[0].Selected = true
	if c.Copy() != 1 {
		t.Fatalf("copy failed")
	}
	if c.Paste() != 1 {
		t.Fatalf("paste failed")
	}
	b := c.State().Boxes
	if len(b) != 2 || b[0].Selected || !b[1].Selected {
		t.Fatalf("pasted box must be the only selection: %+v", b)
	}
	if b[1].X1 != 18 || b[1].Y1 != 18 || b[1].Width() != 20 {
		t.Fatalf("unexpected pasted geometry %+v", b[1])
	}
	c.Paste()
	if p := c.State().Boxes[2]; p.X1 != 26 {
		t.Fatalf("second paste must shift further, got %+v", p)
	}
}

func TestPasteFallsBackToLowestClass(t *testing.T) {
	c, _ := newTestController(t)
	car, _ := c.AddClass("car")
	c.Load(annotation.Size{W: 100, H: 100}, annotation.Snapshot{{X1: 10, Y1: 10, X2: 30, Y2: 30, ClassID: car.ID}})
	c.State().Boxes[0].Selected = true
	c.Copy()
	if err := c.RemoveClass(car.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	c.Paste()
	if b := c.State().Boxes; len(b) != 1 || b[0].ClassID != 0 {
		t.Fatalf("expected pasted box in class 0, got %+v", b)
	}
}

func TestRemoveClassCascades(t *testing.T) {
	c, rec := newTestController(t)
	car, _ := c.AddClass("car")
	c.Load(annotation.Size{W: 100, H: 100}, annotation.Snapshot{
		{X1: 0, Y1: 0, X2: 10, Y2: 10, ClassID: 0},
		{X1: 20, Y1: 20, X2: 30, Y2: 30, ClassID: car.ID},
	})
	c.State().ActiveClass = car.ID

	rec.confirm = false
	if err := c.RemoveClass(car.ID); err != nil || !c.Classes().Has(car.ID) {
		t.Fatalf("declined remove must keep the class")
	}
	rec.confirm = true
	if err := c.RemoveClass(car.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if c.Classes().Has(car.ID) || len(c.State().Boxes) != 1 || c.State().ActiveClass != 0 {
		t.Fatalf("unexpected state after remove: classes=%v boxes=%+v active=%d",
			c.Classes().IDs(), c.State().Boxes, c.State().ActiveClass)
	}
	c.Undo()
	if !c.Classes().Has(car.ID) || len(c.State().Boxes) != 2 {
		t.Fatalf("undo must restore class and boxes")
	}
	if err := c.RemoveClass(42); !errors.Is(err, annotation.ErrUnknownClass) {
		t.Fatalf("expected ErrUnknownClass, got %v", err)
	}
}

func TestMergeClasses(t *testing.T) {
	c, _ := newTestController(t)
	car, _ := c.AddClass("car")
	c.Load(annotation.Size{W: 100, H: 100}, annotation.Snapshot{
		{X1: 0, Y1: 0, X2: 10, Y2: 10, ClassID: car.ID},
		{X1: 20, Y1: 20, X2: 30, Y2: 30, ClassID: 0},
	})
	if err := c.MergeClasses(car.ID, car.ID); !errors.Is(err, annotation.ErrSameClass) {
		t.Fatalf("expected ErrSameClass, got %v", err)
	}
	if err := c.MergeClasses(car.ID, 0); err != nil {
		t.Fatalf("merge: %v", err)
	}
	for _, b := range c.State().Boxes {
		if b.ClassID != 0 {
			t.Fatalf("box left in merged class: %+v", b)
		}
	}
	if c.Classes().Has(car.ID) {
		t.Fatalf("source class must be gone")
	}
}

func TestRenameRejectsDuplicate(t *testing.T) {
	c, _ := newTestController(t)
	car, _ := c.AddClass("car")
	c.History().Reset()
	if err := c.RenameClass(car.ID, "OBJ"); !errors.Is(err, annotation.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if c.History().UndoDepth() != 0 {
		t.Fatalf("failed rename must not push history")
	}
	if err := c.RenameClass(car.ID, "truck"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if d, _ := c.Classes().Get(car.ID); d.Name != "truck" {
		t.Fatalf("unexpected name %q", d.Name)
	}
}

func TestHiddenClassIsNotHittable(t *testing.T) {
	c, _ := newTestController(t, annotation.NewBox(20, 20, 60, 60, 0))
	c.State().Boxes[0].Selected = true
	if err := c.SetClassVisible(0, false); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if c.State().Boxes[0].Selected {
		t.Fatalf("hidden box must be deselected")
	}
	if c.SelectAt(30, 30) != -1 {
		t.Fatalf("hidden box must not be hit")
	}
	if c.History().UndoDepth() != 0 {
		t.Fatalf("visibility must not push history")
	}
}

func TestApplyDetectionsSingleUndo(t *testing.T) {
	c, _ := newTestController(t, annotation.NewBox(0, 0, 10, 10, 0))
	c.ApplyDetections(annotation.Snapshot{
		{X1: 5, Y1: 5, X2: 50, Y2: 50, ClassID: 0},
		{X1: 60, Y1: 60, X2: 90, Y2: 90, ClassID: 7},
	}, map[int]string{7: "dog"})
	if !c.DetectorRan() || len(c.State().Boxes) != 2 {
		t.Fatalf("detections not applied: %+v", c.State().Boxes)
	}
	if d, ok := c.Classes().Get(7); !ok || d.Name != "dog" {
		t.Fatalf("expected class 7 named dog, got %+v", d)
	}
	c.Undo()
	if c.DetectorRan() || len(c.State().Boxes) != 1 || c.Classes().Has(7) {
		t.Fatalf("undo must restore pre-detection state")
	}
}

func TestZoomWheelAnchorsPoint(t *testing.T) {
	c, _ := newTestController(t)
	fx, fy := c.View().ToImageF(25, 75)
	if !c.ZoomWheel(3, 25, 75) {
		t.Fatalf("zoom in must change the view")
	}
	gx, gy := c.View().ToImageF(25, 75)
	if d := (gx-fx)*(gx-fx) + (gy-fy)*(gy-fy); d > 1e-6 {
		t.Fatalf("anchor moved from (%v,%v) to (%v,%v)", fx, fy, gx, gy)
	}
	c.Fit()
	if c.View().Zoom() != 1 {
		t.Fatalf("fit must reset zoom, got %v", c.View().Zoom())
	}
}
