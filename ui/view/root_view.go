package view

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/fastlabel-go/config"
	"github.com/soocke/fastlabel-go/ui/input"
	"github.com/soocke/fastlabel-go/ui/presenter"
	"github.com/soocke/fastlabel-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Editor is everything the window forwards to the editor presenter.
type Editor interface {
	Pointer
	ClassActions
	Navigation
	OpenDir(dir string) error
	Save() error
	Hotkey(d int)
	DeleteSelected()
	ClearBoxes()
	Copy()
	Paste()
	Nudge(dx, dy int)
	Undo()
	Redo()
	Escape()
	ZoomIn()
	ZoomOut()
	Fit()
	ToggleCross() bool
}

// Handlers are the application level commands behind toolbar buttons.
type Handlers struct {
	Prefill    func()
	ScanAll    func()
	CancelScan func()
	Screenshot func()
	PickRegion func()
	Exit       func()
}

// RootView composes the editor window. It satisfies the view contracts of
// the status, editor, canvas and session presenters.
type RootView struct {
	cfg    *config.Config
	logger *slog.Logger

	canvas  *canvasView
	classes classPanel
	nav     navigator
	Session SessionStats

	statusLbl *TLabelWidget
	infoLbl   *TLabelWidget
	crossBtn  *TButtonWidget
	ctxMenu   *MenuWidget

	held   input.Held
	typing bool
}

var (
	_ presenter.StatusView  = (*RootView)(nil)
	_ presenter.EditorView  = (*RootView)(nil)
	_ presenter.CanvasView  = (*RootView)(nil)
	_ presenter.SessionView = (*RootView)(nil)
)

func NewRootView(cfg *config.Config, logger *slog.Logger) *RootView {
	if logger == nil {
		logger = slog.Default()
	}
	return &RootView{cfg: cfg, logger: logger}
}

// Build constructs the layout and binds input to ed and h.
func (rv *RootView) Build(ed Editor, h Handlers) {
	if rv == nil {
		return
	}
	App.WmTitle("fastlabel")
	GridColumnConfigure(App, 0, Weight(1))
	GridRowConfigure(App, 1, Weight(1))

	rv.buildToolbar(ed, h)

	main := Frame()
	Grid(main, Row(1), Column(0), Sticky("nsew"), Padx("0.4m"), Pady("0.3m"))
	rv.canvas = newCanvasView(main, rv.cfg.ViewportW, rv.cfg.ViewportH, loupeSize)
	rv.canvas.bind(ed, &rv.held, func(e *Event) { rv.popupMenu(ed, e) })

	side := Frame()
	Grid(side, In(main), Row(0), Column(1), Sticky("ns"), Padx("0.4m"))
	rv.nav.actions = ed
	row := rv.nav.build(side, 0)
	rv.classes.actions = ed
	row = rv.classes.build(side, row)
	for _, w := range []*TextWidget{rv.classes.name, rv.classes.color} {
		Bind(w, "<FocusIn>", Command(func() { rv.typing = true }))
		Bind(w, "<FocusOut>", Command(func() { rv.typing = false }))
	}
	Grid(TLabel(Style(theme.StyleHeaderLabel), Txt("Loupe")), In(side), Row(row), Column(0), Sticky("w"))
	row++
	rv.canvas.placeLoupe(side, row)

	footer := Frame()
	Grid(footer, Row(2), Column(0), Sticky("we"), Padx("0.4m"))
	rv.infoLbl = TLabel(Style(theme.StyleInfoLabel), Txt("Boxes: 0"))
	Grid(rv.infoLbl, In(footer), Row(0), Column(0), Sticky("w"), Padx("0.2m"))
	rv.Session = NewSessionStats(footer, 0, 1)

	rv.statusLbl = TLabel(Style(theme.StyleStatusLabel), Txt("Open a folder to start."), Anchor("w"))
	Grid(rv.statusLbl, Row(3), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	Bind(App, "<KeyPress>", Command(func(e *Event) { rv.keyDown(ed, e.Keysym) }))
	Bind(App, "<KeyRelease>", Command(func(e *Event) { rv.held.Release(e.Keysym) }))
	Bind(App, "<FocusOut>", Command(func() { rv.held.Reset() }))
}

const loupeSize = 220

func (rv *RootView) buildToolbar(ed Editor, h Handlers) {
	bar := Frame()
	Grid(bar, Row(0), Column(0), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	buttons := []struct {
		text  string
		style string
		fn    func()
	}{
		{"Open folder", theme.StylePrimaryButton, func() { rv.openDir(ed) }},
		{"Save [Ctrl+S]", theme.StylePrimaryButton, func() { _ = ed.Save() }},
		{"Undo", theme.StyleToolButton, ed.Undo},
		{"Redo", theme.StyleToolButton, ed.Redo},
		{"Zoom +", theme.StyleToolButton, ed.ZoomIn},
		{"Zoom -", theme.StyleToolButton, ed.ZoomOut},
		{"Fit [f]", theme.StyleToolButton, ed.Fit},
		{"Cross-hair OFF", theme.StyleToolButton, func() { rv.toggleCross(ed) }},
		{"Copy", theme.StyleToolButton, ed.Copy},
		{"Paste", theme.StyleToolButton, ed.Paste},
		{"Delete", theme.StyleDangerButton, ed.DeleteSelected},
		{"Clear", theme.StyleDangerButton, ed.ClearBoxes},
		{"Prefill", theme.StylePrimaryButton, h.Prefill},
		{"Scan All", theme.StylePrimaryButton, h.ScanAll},
		{"Cancel Scan", theme.StyleDangerButton, h.CancelScan},
		{"Screenshot", theme.StyleToolButton, h.Screenshot},
		{"Region...", theme.StyleToolButton, h.PickRegion},
		{"Theme", theme.StyleToolButton, func() { theme.ToggleDark() }},
		{"Exit", theme.StyleDangerButton, h.Exit},
	}
	col := 0
	for _, b := range buttons {
		if b.fn == nil {
			continue
		}
		btn := TButton(Style(b.style), Txt(b.text), Command(b.fn))
		Grid(btn, In(bar), Row(0), Column(col), Sticky("we"), Padx("0.2m"))
		if b.text == "Cross-hair OFF" {
			rv.crossBtn = btn
		}
		col++
	}
}

func (rv *RootView) toggleCross(ed Editor) {
	label := "Cross-hair OFF"
	if ed.ToggleCross() {
		label = "Cross-hair ON"
	}
	if rv.crossBtn != nil {
		rv.crossBtn.Configure(Txt(label))
	}
}

// popupMenu offers class reassignment and deletion for the box that was just
// selected by a right click. The menu is rebuilt each time so it follows the
// class table.
func (rv *RootView) popupMenu(ed Editor, e *Event) {
	if rv.ctxMenu != nil {
		Destroy(rv.ctxMenu)
	}
	m := Menu(Tearoff(false))
	for _, r := range rv.classes.rows {
		id := r.ID
		m.AddCommand(Lbl(fmt.Sprintf("Set to %s (%d)", r.Name, r.ID)), Command(func() { ed.SetSelectedClass(id) }))
	}
	if len(rv.classes.rows) > 0 {
		m.AddSeparator()
	}
	m.AddCommand(Lbl("Delete Selected"), Command(ed.DeleteSelected))
	rv.ctxMenu = m
	Popup(m.Window, e.XRoot, e.YRoot, nil)
}

func (rv *RootView) openDir(ed Editor) {
	dir := ChooseDirectory(Title("Open image folder"))
	if dir == "" {
		return
	}
	if err := ed.OpenDir(dir); err != nil {
		rv.logger.Error("open folder", "dir", dir, "error", err)
	}
}

func (rv *RootView) keyDown(ed Editor, keysym string) {
	if rv.held.Press(keysym) || rv.typing {
		return
	}
	cmd, d := input.Resolve(keysym, &rv.held)
	switch cmd {
	case input.CmdUndo:
		ed.Undo()
	case input.CmdRedo:
		ed.Redo()
	case input.CmdCopy:
		ed.Copy()
	case input.CmdPaste:
		ed.Paste()
	case input.CmdSave:
		_ = ed.Save()
	case input.CmdDelete:
		ed.DeleteSelected()
	case input.CmdEscape:
		ed.Escape()
	case input.CmdNudgeLeft, input.CmdNudgeRight, input.CmdNudgeUp, input.CmdNudgeDown:
		ed.Nudge(input.Nudge(cmd))
	case input.CmdZoomIn:
		ed.ZoomIn()
	case input.CmdZoomOut:
		ed.ZoomOut()
	case input.CmdFit:
		ed.Fit()
	case input.CmdNext:
		_ = ed.Next()
	case input.CmdPrev:
		_ = ed.Prev()
	case input.CmdHotkey:
		ed.Hotkey(d)
	}
}

// Confirm asks a yes/no question.
func (rv *RootView) Confirm(title, msg string) bool {
	return MessageBox(Icon("question"), Type("yesno"), Title(title), Msg(msg)) == "yes"
}

func (rv *RootView) SetTitle(title string) { App.WmTitle(title) }

func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.statusLbl != nil {
		rv.statusLbl.Configure(Txt(text))
	}
}

func (rv *RootView) SetInfo(text string) {
	if rv != nil && rv.infoLbl != nil {
		rv.infoLbl.Configure(Txt(text))
	}
}

func (rv *RootView) SetNavigator(rows []presenter.NavRow) { rv.nav.SetNavigator(rows) }

func (rv *RootView) SetClasses(rows []presenter.ClassRow) {
	rv.classes.SetClasses(rows)
	rv.nav.setFilterClasses(rows)
}

func (rv *RootView) ShowCanvas(img image.Image) { rv.canvas.ShowCanvas(img) }
func (rv *RootView) ShowLoupe(img image.Image)  { rv.canvas.ShowLoupe(img) }

func (rv *RootView) SetSession(onImage, total time.Duration, visited int) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(onImage, total, visited)
}
