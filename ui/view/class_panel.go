package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soocke/fastlabel-go/ui/presenter"
	"github.com/soocke/fastlabel-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ClassActions are the class table commands offered by the panel.
type ClassActions interface {
	AddClass(name string)
	RenameClass(id int, name string)
	RecolorClass(id int, hex string)
	RemoveClass(id int)
	MergeClasses(src, dst int)
	SetClassVisible(id int, visible bool)
	SetActiveClass(id int)
	SetSelectedClass(id int)
}

// classPanel lists the classes in a combobox. The chosen entry is the active
// class; the text fields feed add, rename and recolour.
type classPanel struct {
	actions ClassActions
	rows    []presenter.ClassRow

	list    *TComboboxWidget
	mergeTo *TComboboxWidget
	name    *TextWidget
	color   *TextWidget
	swatch  *LabelWidget
	visible *TButtonWidget
}

// build grids the panel into parent from startRow and returns the next free
// row.
func (v *classPanel) build(parent *FrameWidget, startRow int) int {
	row := startRow
	Grid(TLabel(Style(theme.StyleHeaderLabel), Txt("Classes")), In(parent), Row(row), Column(0), Columnspan(2), Sticky("w"))
	row++

	v.list = TCombobox(State("readonly"), Width(26))
	Grid(v.list, In(parent), Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	v.swatch = Label(Width(2), Relief("ridge"), Borderwidth(1))
	Grid(v.swatch, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	Bind(v.list, "<<ComboboxSelected>>", Command(func() {
		if id, ok := v.selected(); ok {
			v.actions.SetActiveClass(id)
		}
	}))
	row++

	makeField := func(label string) *TextWidget {
		Grid(Label(Txt(label)), In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"))
		w := Text(Height(1), Width(14))
		Grid(w, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
		row++
		return w
	}
	v.name = makeField("Name")
	v.color = makeField("Colour (#rrggbb)")

	buttons := []struct {
		text string
		fn   func()
	}{
		{"Add", v.add},
		{"Rename", v.rename},
		{"Recolour", v.recolor},
		{"Assign to selection", v.assign},
		{"Remove", v.remove},
	}
	for i, b := range buttons {
		btn := TButton(Style(theme.StyleToolButton), Txt(b.text), Command(b.fn))
		Grid(btn, In(parent), Row(row+i/2), Column(i%2), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	}
	row += (len(buttons) + 1) / 2

	v.visible = TButton(Style(theme.StyleToolButton), Txt("Hide"), Command(v.toggleVisible))
	Grid(v.visible, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	row++

	v.mergeTo = TCombobox(State("readonly"), Width(18))
	Grid(v.mergeTo, In(parent), Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	Grid(TButton(Style(theme.StyleDangerButton), Txt("Merge into"), Command(v.merge)), In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	row++
	return row
}

// SetClasses replaces the listed classes and selects the active one.
func (v *classPanel) SetClasses(rows []presenter.ClassRow) {
	if v == nil || v.list == nil {
		return
	}
	v.rows = rows
	labels := make([]string, len(rows))
	active := -1
	for i, r := range rows {
		labels[i] = classLabel(r)
		if r.Active {
			active = i
		}
	}
	if len(labels) == 0 {
		labels = []string{"<no classes>"}
	}
	v.list.Configure(Values(labels))
	v.mergeTo.Configure(Values(labels))
	if active >= 0 {
		v.list.Current(active)
		v.swatch.Configure(Background(rows[active].Color))
		if rows[active].Visible {
			v.visible.Configure(Txt("Hide"))
		} else {
			v.visible.Configure(Txt("Show"))
		}
	}
}

func classLabel(r presenter.ClassRow) string {
	s := fmt.Sprintf("%d: %s (%d)", r.ID, r.Name, r.Count)
	if !r.Visible {
		s += " hidden"
	}
	return s
}

func (v *classPanel) selected() (int, bool) {
	return v.rowID(v.list)
}

func (v *classPanel) rowID(cb *TComboboxWidget) (int, bool) {
	if cb == nil {
		return 0, false
	}
	i, err := strconv.Atoi(cb.Current(nil))
	if err != nil || i < 0 || i >= len(v.rows) {
		return 0, false
	}
	return v.rows[i].ID, true
}

func (v *classPanel) row(id int) (presenter.ClassRow, bool) {
	for _, r := range v.rows {
		if r.ID == id {
			return r, true
		}
	}
	return presenter.ClassRow{}, false
}

func (v *classPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}

func (v *classPanel) clear(w *TextWidget) {
	if w != nil {
		w.Delete("1.0", END)
	}
}

func (v *classPanel) add() {
	v.actions.AddClass(v.text(v.name))
	v.clear(v.name)
}

func (v *classPanel) rename() {
	if id, ok := v.selected(); ok {
		v.actions.RenameClass(id, v.text(v.name))
		v.clear(v.name)
	}
}

func (v *classPanel) recolor() {
	if id, ok := v.selected(); ok {
		v.actions.RecolorClass(id, v.text(v.color))
		v.clear(v.color)
	}
}

func (v *classPanel) assign() {
	if id, ok := v.selected(); ok {
		v.actions.SetSelectedClass(id)
	}
}

func (v *classPanel) remove() {
	if id, ok := v.selected(); ok {
		v.actions.RemoveClass(id)
	}
}

func (v *classPanel) toggleVisible() {
	id, ok := v.selected()
	if !ok {
		return
	}
	if r, ok := v.row(id); ok {
		v.actions.SetClassVisible(id, !r.Visible)
	}
}

func (v *classPanel) merge() {
	src, ok := v.selected()
	if !ok {
		return
	}
	if dst, ok := v.rowID(v.mergeTo); ok {
		v.actions.MergeClasses(src, dst)
	}
}
