package view

import (
	"fmt"
	"strconv"

	"github.com/soocke/fastlabel-go/domain/labels"
	"github.com/soocke/fastlabel-go/ui/presenter"
	"github.com/soocke/fastlabel-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Navigation moves through the working set.
type Navigation interface {
	Prev() error
	Next() error
	GoToPath(path string) error
	SetFilter(f labels.Filter)
}

type navigator struct {
	actions Navigation
	rows    []presenter.NavRow
	filters []labels.Filter

	list   *TComboboxWidget
	filter *TComboboxWidget
	count  *TLabelWidget
}

func (v *navigator) build(parent *FrameWidget, startRow int) int {
	row := startRow
	Grid(TLabel(Style(theme.StyleHeaderLabel), Txt("Images")), In(parent), Row(row), Column(0), Sticky("w"))
	v.count = TLabel(Style(theme.StyleInfoLabel), Txt("0 shown"))
	Grid(v.count, In(parent), Row(row), Column(1), Sticky("e"))
	row++

	v.filter = TCombobox(State("readonly"), Width(26))
	Grid(v.filter, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	Bind(v.filter, "<<ComboboxSelected>>", Command(func() {
		i, err := strconv.Atoi(v.filter.Current(nil))
		if err == nil && i >= 0 && i < len(v.filters) {
			v.actions.SetFilter(v.filters[i])
		}
	}))
	v.setFilterClasses(nil)
	row++

	v.list = TCombobox(State("readonly"), Width(26))
	Grid(v.list, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	Bind(v.list, "<<ComboboxSelected>>", Command(func() {
		i, err := strconv.Atoi(v.list.Current(nil))
		if err == nil && i >= 0 && i < len(v.rows) {
			_ = v.actions.GoToPath(v.rows[i].Path)
		}
	}))
	row++

	prev := TButton(Style(theme.StyleToolButton), Txt("< Prev [p]"), Command(func() { _ = v.actions.Prev() }))
	next := TButton(Style(theme.StyleToolButton), Txt("Next [n] >"), Command(func() { _ = v.actions.Next() }))
	Grid(prev, In(parent), Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	Grid(next, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	row++
	return row
}

func (v *navigator) SetNavigator(rows []presenter.NavRow) {
	if v == nil || v.list == nil {
		return
	}
	v.rows = rows
	names := make([]string, len(rows))
	current := -1
	for i, r := range rows {
		names[i] = fmt.Sprintf("%s  [%d]", r.Name, r.Boxes)
		if r.Current {
			current = i
		}
	}
	if len(names) == 0 {
		names = []string{"<no images>"}
	}
	v.list.Configure(Values(names))
	if current >= 0 {
		v.list.Current(current)
	}
	v.count.Configure(Txt(fmt.Sprintf("%d shown", len(rows))))
}

// setFilterClasses offers a Has:<id> filter per class.
func (v *navigator) setFilterClasses(rows []presenter.ClassRow) {
	if v.filter == nil {
		return
	}
	cur, _ := strconv.Atoi(v.filter.Current(nil))
	var keep labels.Filter
	if cur >= 0 && cur < len(v.filters) {
		keep = v.filters[cur]
	}
	v.filters = []labels.Filter{
		{Kind: labels.FilterAll},
		{Kind: labels.FilterLabeled},
		{Kind: labels.FilterUnlabeled},
	}
	names := []string{"All", "Labeled", "Unlabeled"}
	for _, r := range rows {
		v.filters = append(v.filters, labels.Filter{Kind: labels.FilterHasClass, ClassID: r.ID})
		names = append(names, fmt.Sprintf("Has %d: %s", r.ID, r.Name))
	}
	v.filter.Configure(Values(names))
	sel := 0
	for i, f := range v.filters {
		if f == keep {
			sel = i
			break
		}
	}
	v.filter.Current(sel)
}
