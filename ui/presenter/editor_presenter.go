package presenter

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"maps"
	"path/filepath"
	"time"

	"github.com/soocke/fastlabel-go/domain/annotation"
	"github.com/soocke/fastlabel-go/domain/interaction"
	"github.com/soocke/fastlabel-go/domain/labels"
	"github.com/soocke/fastlabel-go/ui/images"
	"github.com/soocke/fastlabel-go/ui/model"
)

// ImageSource opens images for the editor. *images.Cache satisfies it.
type ImageSource interface {
	Load(path string) (image.Image, error)
	Size(path string) (annotation.Size, error)
}

// NavRow is one entry of the image navigator.
type NavRow struct {
	Path    string
	Name    string
	Boxes   int
	Current bool
}

// ClassRow is one entry of the class panel.
type ClassRow struct {
	ID      int
	Name    string
	Color   string
	Visible bool
	Active  bool
	Count   int
}

// EditorView is the part of the window the editor presenter updates.
type EditorView interface {
	SetTitle(title string)
	SetNavigator(rows []NavRow)
	SetClasses(rows []ClassRow)
	SetInfo(text string)
}

// SceneColors are the fixed canvas colours.
type SceneColors struct {
	Background color.RGBA
	Guide      color.RGBA
	Marquee    color.RGBA
	Cross      color.RGBA
}

// DefaultSceneColors matches the dark theme.
func DefaultSceneColors() SceneColors {
	return SceneColors{
		Background: color.RGBA{R: 0x0f, G: 0x17, B: 0x2a, A: 0xff},
		Guide:      color.RGBA{R: 0x22, G: 0xd3, B: 0xee, A: 0xff},
		Marquee:    color.RGBA{R: 0x93, G: 0xc5, B: 0xfd, A: 0xff},
		Cross:      color.RGBA{R: 0xff, G: 0x45, B: 0x00, A: 0xff},
	}
}

// EditorPresenter connects the interaction controller to the working set,
// label storage and the canvas. All methods run on the UI goroutine.
type EditorPresenter struct {
	logger  *slog.Logger
	ctl     *interaction.Controller
	ws      *model.Workspace
	index   *labels.Index
	store   *labels.Store
	images  ImageSource
	view    EditorView
	canvas  *CanvasPresenter
	status  *StatusPresenter
	loupe   *model.LoupeModel
	colors  SceneColors
	confirm func(title, msg string) bool
	step    float64

	filter    labels.Filter
	surface   *images.Surface
	source    image.Image
	scanNames map[int]string
	redraw    bool

	crossOn   bool
	cursor    [2]float64
	hasCursor bool
}

// EditorDeps groups the collaborators of an EditorPresenter.
type EditorDeps struct {
	Controller *interaction.Controller
	Workspace  *model.Workspace
	Index      *labels.Index
	Store      *labels.Store
	Images     ImageSource
	View       EditorView
	Canvas     *CanvasPresenter
	Status     *StatusPresenter
	Loupe      *model.LoupeModel
	Colors     SceneColors
	ZoomStep   float64
	// Confirm asks before destructive edits; nil means yes.
	Confirm func(title, msg string) bool
}

// NewEditorPresenter wires the controller callbacks to the presenter.
func NewEditorPresenter(logger *slog.Logger, d EditorDeps) *EditorPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	if d.Workspace == nil {
		d.Workspace = model.NewWorkspace()
	}
	if d.Index == nil {
		d.Index = labels.NewIndex()
	}
	if d.Store == nil {
		d.Store = labels.NewStore(labels.DefaultDir)
	}
	if d.Loupe == nil {
		d.Loupe = model.NewLoupeModel()
	}
	if d.ZoomStep <= 1 {
		d.ZoomStep = 1.15
	}
	p := &EditorPresenter{
		logger:    logger,
		ctl:       d.Controller,
		ws:        d.Workspace,
		index:     d.Index,
		store:     d.Store,
		images:    d.Images,
		view:      d.View,
		canvas:    d.Canvas,
		status:    d.Status,
		loupe:     d.Loupe,
		colors:    d.Colors,
		confirm:   d.Confirm,
		step:      d.ZoomStep,
		scanNames: make(map[int]string),
		redraw:    true,
	}
	p.ctl.SetCallbacks(interaction.Callbacks{
		Status:  p.status.Post,
		Changed: p.onChanged,
		Confirm: p.confirm,
	})
	return p
}

func (p *EditorPresenter) Controller() *interaction.Controller { return p.ctl }
func (p *EditorPresenter) Workspace() *model.Workspace         { return p.ws }
func (p *EditorPresenter) Index() *labels.Index                { return p.index }
func (p *EditorPresenter) Filter() labels.Filter               { return p.filter }

// --- working set ---

// OpenDir opens every supported image inside dir.
func (p *EditorPresenter) OpenDir(dir string) error {
	paths, err := images.ListDir(dir)
	if err != nil {
		p.status.Postf("Open folder failed: %v", err)
		return err
	}
	if len(paths) == 0 {
		p.status.Postf("No images in %s.", dir)
		return nil
	}
	return p.OpenPaths(dir, paths)
}

// OpenPaths replaces the working set and opens the first image. The current
// image is autosaved first.
func (p *EditorPresenter) OpenPaths(dir string, paths []string) error {
	p.autosave(true)
	p.ws.SetPaths(dir, paths)
	p.ctl.Unload()
	p.surface, p.source = nil, nil
	p.loadDataset()
	p.RebuildIndex()
	if p.ws.Len() == 0 {
		p.refreshPanels()
		return nil
	}
	return p.GoTo(0)
}

func (p *EditorPresenter) loadDataset() {
	ds, ok, err := p.store.ReadDataset()
	if err != nil {
		p.logger.Warn("dataset manifest", "path", p.store.DatasetPath(), "error", err)
		return
	}
	if ok && ds.Count > 0 {
		p.ctl.SetClasses(ds.Classes())
		p.logger.Info("dataset classes loaded", "count", ds.Count)
	}
}

// RebuildIndex rebuilds the navigator index from memory and label files.
func (p *EditorPresenter) RebuildIndex() {
	errs := p.index.Rebuild(p.ws.Paths(), p.ws.Remembered(), p.store, p.images.Size)
	for path, err := range errs {
		p.logger.Warn("index rebuild", "path", path, "error", err)
	}
	p.refreshNavigator()
}

// Prev opens the previous image.
func (p *EditorPresenter) Prev() error {
	if p.ws.Len() == 0 {
		return nil
	}
	if p.ws.Index() <= 0 {
		p.status.Post("Start of list.")
		return nil
	}
	return p.GoTo(p.ws.Index() - 1)
}

// Next opens the next image.
func (p *EditorPresenter) Next() error {
	if p.ws.Len() == 0 {
		return nil
	}
	if p.ws.Index() >= p.ws.Len()-1 {
		p.status.Post("Reached end of list.")
		return nil
	}
	return p.GoTo(p.ws.Index() + 1)
}

// GoToPath opens path if it is in the working set.
func (p *EditorPresenter) GoToPath(path string) error {
	i := p.ws.IndexOf(path)
	if i < 0 {
		return fmt.Errorf("not in working set: %s", path)
	}
	return p.GoTo(i)
}

// GoTo autosaves the open image and opens image i. When i cannot be read the
// current image stays open.
func (p *EditorPresenter) GoTo(i int) error {
	paths := p.ws.Paths()
	if i < 0 || i >= len(paths) {
		return fmt.Errorf("image index %d out of range", i)
	}
	path := paths[i]
	img, err := p.images.Load(path)
	if err != nil {
		p.logger.Error("open image", "path", path, "error", err)
		p.status.Postf("Open image failed: %s: %v", filepath.Base(path), err)
		return err
	}
	if cur, ok := p.ws.Current(); ok && cur != path {
		p.autosave(true)
	}
	b := img.Bounds()
	size := annotation.Size{W: b.Dx(), H: b.Dy()}

	snap, restored := p.ws.Annotations(path)
	if !restored {
		disk, exists, err := p.store.Read(path, size)
		if err != nil {
			p.logger.Warn("read labels", "path", path, "error", err)
		}
		snap, restored = disk, exists && len(disk) > 0
	}

	p.ws.SetIndex(i)
	p.ctl.LoadNamed(size, snap, p.scanNames)
	p.surface = images.NewSurface(img)
	p.source = img
	p.ws.Remember(path, p.ctl.Snapshot())
	p.ws.SetDirty(false)
	p.index.Update(path, p.ctl.Snapshot())

	msg := fmt.Sprintf("Loaded: %s  [%d/%d]", filepath.Base(path), i+1, p.ws.Len())
	if restored {
		msg += "  (restored)"
	}
	p.status.Post(msg)
	p.refreshPanels()
	return nil
}

// AddImage appends path to the working set and opens it.
func (p *EditorPresenter) AddImage(path string) error {
	i := p.ws.Add(path)
	p.index.Update(path, nil)
	return p.GoTo(i)
}

// Save writes the label file of the open image and the dataset manifest.
func (p *EditorPresenter) Save() error {
	path, ok := p.ws.Current()
	if !ok || !p.ctl.Loaded() {
		p.status.Post("Save: no image loaded.")
		return errNoImage
	}
	p.ws.Remember(path, p.ctl.Snapshot())
	if err := p.store.Write(path, p.ctl.ImageSize(), p.ctl.Snapshot()); err != nil {
		p.logger.Error("save labels", "path", path, "error", err)
		p.status.Postf("Save label failed: %v", err)
		return err
	}
	p.ws.SetDirty(false)
	if err := p.store.WriteDataset(p.ctl.Classes(), p.ws.Dir()); err != nil {
		p.logger.Error("save dataset", "path", p.store.DatasetPath(), "error", err)
		p.status.Postf("Saved labels, but %s failed: %v", labels.DatasetFile, err)
		return err
	}
	p.status.Postf("Saved labels -> %s", p.store.PathFor(path))
	return nil
}

var errNoImage = errors.New("no image loaded")

// Close autosaves unsaved edits before the window goes away.
func (p *EditorPresenter) Close() {
	if p.ws.Dirty() {
		p.autosave(true)
	}
}

func (p *EditorPresenter) autosave(silent bool) {
	path, ok := p.ws.Current()
	if !ok || !p.ctl.Loaded() {
		return
	}
	p.ws.Remember(path, p.ctl.Snapshot())
	p.index.Update(path, p.ctl.Snapshot())
	if err := p.store.Write(path, p.ctl.ImageSize(), p.ctl.Snapshot()); err != nil {
		p.logger.Error("autosave", "path", path, "error", err)
		p.status.Postf("Autosave failed: %v", err)
		return
	}
	p.ws.SetDirty(false)
	if !silent {
		p.status.Postf("Autosaved: %s", filepath.Base(p.store.PathFor(path)))
	}
}

// SetFilter changes which images the navigator lists.
func (p *EditorPresenter) SetFilter(f labels.Filter) {
	p.filter = f
	p.refreshNavigator()
}

func (p *EditorPresenter) onChanged() {
	if path, ok := p.ws.Current(); ok {
		p.ws.Remember(path, p.ctl.Snapshot())
		p.index.Update(path, p.ctl.Snapshot())
		p.ws.SetDirty(true)
	}
	p.refreshPanels()
}

// --- inference host ---

// CurrentImage returns the open image for single-image detection.
func (p *EditorPresenter) CurrentImage() (string, image.Image, bool) {
	path, ok := p.ws.Current()
	if !ok || p.source == nil {
		return "", nil, false
	}
	return path, p.source, true
}

// KnownClasses returns the class names detections should resolve against.
func (p *EditorPresenter) KnownClasses() map[int]string {
	names := p.ctl.Classes().Names()
	for id, n := range p.scanNames {
		if _, ok := names[id]; !ok {
			names[id] = n
		}
	}
	return names
}

// Paths is the working set.
func (p *EditorPresenter) Paths() []string { return p.ws.Paths() }

// ApplyDetections replaces the open image's boxes in one undo step.
func (p *EditorPresenter) ApplyDetections(snap annotation.Snapshot, names map[int]string) {
	p.MergeClassNames(names)
	p.ctl.ApplyDetections(snap, names)
}

// MergeClassNames remembers detector class names for images opened later.
func (p *EditorPresenter) MergeClassNames(names map[int]string) {
	maps.Copy(p.scanNames, names)
}

// StoreScanned records batch output for path and writes its label file.
func (p *EditorPresenter) StoreScanned(path string, size annotation.Size, snap annotation.Snapshot) error {
	p.ws.Remember(path, snap)
	p.index.Update(path, snap)
	p.refreshNavigator()
	if err := p.store.Write(path, size, snap); err != nil {
		return fmt.Errorf("write labels %s: %w", filepath.Base(path), err)
	}
	return nil
}

// --- input ---

func (p *EditorPresenter) PointerDown(pt interaction.Pointer) { p.ctl.PointerDown(pt); p.invalidate() }
func (p *EditorPresenter) PointerMove(pt interaction.Pointer) {
	p.PointerHover(pt.X, pt.Y)
	if p.ctl.Mode() == interaction.ModeIdle {
		return
	}
	p.ctl.PointerMove(pt)
	p.invalidate()
}
func (p *EditorPresenter) PointerUp(pt interaction.Pointer) { p.ctl.PointerUp(pt); p.invalidate() }

// PointerHover tracks the pointer for the cross-hair.
func (p *EditorPresenter) PointerHover(vx, vy float64) {
	p.cursor, p.hasCursor = [2]float64{vx, vy}, true
	if p.crossOn {
		p.invalidate()
	}
}

// PointerLeave hides the cross-hair until the pointer returns.
func (p *EditorPresenter) PointerLeave() {
	p.hasCursor = false
	if p.crossOn {
		p.invalidate()
	}
}

// ToggleCross switches the cross-hair overlay and returns the new state.
func (p *EditorPresenter) ToggleCross() bool {
	p.crossOn = !p.crossOn
	if p.crossOn {
		p.status.Post("Cross-hair ON")
	} else {
		p.status.Post("Cross-hair OFF")
	}
	p.invalidate()
	return p.crossOn
}

// CrossOn reports whether the cross-hair overlay is shown.
func (p *EditorPresenter) CrossOn() bool { return p.crossOn }

// SelectAt selects the box under a secondary click and reports whether one
// was hit.
func (p *EditorPresenter) SelectAt(vx, vy float64) bool {
	if p.ctl.SelectAt(vx, vy) < 0 {
		return false
	}
	p.invalidate()
	p.refreshClasses()
	return true
}

// Hotkey handles digit d.
func (p *EditorPresenter) Hotkey(d int) {
	if p.ctl.SelectClassHotkey(d) {
		p.refreshClasses()
	}
}

func (p *EditorPresenter) DeleteSelected() { p.ctl.DeleteSelected(); p.invalidate() }
func (p *EditorPresenter) ClearBoxes()     { p.ctl.ClearBoxes(); p.invalidate() }
func (p *EditorPresenter) Copy()           { p.ctl.Copy() }
func (p *EditorPresenter) Paste()          { p.ctl.Paste(); p.invalidate() }
func (p *EditorPresenter) Nudge(dx, dy int) {
	if p.ctl.Nudge(dx, dy) {
		p.invalidate()
	}
}
func (p *EditorPresenter) Undo() { p.ctl.Undo(); p.invalidate(); p.refreshClasses() }
func (p *EditorPresenter) Redo() { p.ctl.Redo(); p.invalidate(); p.refreshClasses() }

func (p *EditorPresenter) Escape() {
	if p.ctl.State().ClearSelection() {
		p.invalidate()
	}
}

// --- view ---

func (p *EditorPresenter) SetViewport(w, h int) {
	vw, vh := p.ctl.View().Viewport()
	if int(vw) == w && int(vh) == h {
		return
	}
	p.ctl.SetViewport(w, h)
	p.invalidate()
}

func (p *EditorPresenter) ZoomIn()  { p.zoom(p.ctl.ZoomStep(p.step)) }
func (p *EditorPresenter) ZoomOut() { p.zoom(p.ctl.ZoomStep(1 / p.step)) }
func (p *EditorPresenter) ZoomWheel(notches int, ax, ay float64) {
	p.zoom(p.ctl.ZoomWheel(notches, ax, ay))
}
func (p *EditorPresenter) Fit() { p.ctl.Fit(); p.invalidate() }
func (p *EditorPresenter) PanWheel(dx, dy int) {
	p.ctl.PanWheel(dx, dy)
	p.invalidate()
}

func (p *EditorPresenter) zoom(changed bool) {
	if changed {
		p.invalidate()
	}
}

// --- classes ---

func (p *EditorPresenter) AddClass(name string) {
	def, err := p.ctl.AddClass(name)
	if p.report("Add label", err) {
		return
	}
	_ = p.ctl.SetActiveClass(def.ID)
	p.status.Postf("Added class %s (%d).", def.Name, def.ID)
	p.refreshClasses()
}

func (p *EditorPresenter) RemoveClass(id int) {
	if !p.report("Remove label", p.ctl.RemoveClass(id)) {
		p.invalidate()
	}
}

func (p *EditorPresenter) RenameClass(id int, name string) {
	p.report("Rename", p.ctl.RenameClass(id, name))
}

func (p *EditorPresenter) RecolorClass(id int, hex string) {
	c, err := annotation.ParseHex(hex)
	if p.report("Color", err) {
		return
	}
	if !p.report("Color", p.ctl.RecolorClass(id, c)) {
		p.invalidate()
	}
}

func (p *EditorPresenter) MergeClasses(src, dst int) {
	if !p.report("Merge", p.ctl.MergeClasses(src, dst)) {
		p.invalidate()
	}
}

func (p *EditorPresenter) SetClassVisible(id int, visible bool) {
	if !p.report("Visibility", p.ctl.SetClassVisible(id, visible)) {
		p.invalidate()
		p.refreshClasses()
	}
}

func (p *EditorPresenter) SetActiveClass(id int) {
	if !p.report("Class", p.ctl.SetActiveClass(id)) {
		p.refreshClasses()
	}
}

func (p *EditorPresenter) SetSelectedClass(id int) {
	if p.ctl.SetSelectedClass(id) {
		p.invalidate()
	}
}

// report posts err as a status message and reports whether it was non-nil.
func (p *EditorPresenter) report(what string, err error) bool {
	if err == nil {
		return false
	}
	p.status.Postf("%s: %v", what, err)
	return true
}

// --- rendering ---

func (p *EditorPresenter) invalidate() { p.redraw = true }

func (p *EditorPresenter) refreshPanels() {
	p.invalidate()
	p.refreshNavigator()
	p.refreshClasses()
	if p.view == nil {
		return
	}
	title := "fastlabel"
	if path, ok := p.ws.Current(); ok {
		title = fmt.Sprintf("fastlabel - %s", filepath.Base(path))
		if p.ws.Dirty() {
			title += " *"
		}
	}
	p.view.SetTitle(title)
}

func (p *EditorPresenter) refreshNavigator() {
	if p.view == nil {
		return
	}
	cur, _ := p.ws.Current()
	paths := p.index.Filter(p.ws.Paths(), p.filter)
	rows := make([]NavRow, 0, len(paths))
	for _, path := range paths {
		rows = append(rows, NavRow{
			Path:    path,
			Name:    filepath.Base(path),
			Boxes:   p.index.Get(path).Boxes,
			Current: path == cur,
		})
	}
	p.view.SetNavigator(rows)
}

func (p *EditorPresenter) refreshClasses() {
	if p.view == nil {
		return
	}
	st := p.ctl.State()
	defs := st.Classes.Definitions()
	rows := make([]ClassRow, 0, len(defs))
	for _, d := range defs {
		rows = append(rows, ClassRow{
			ID:      d.ID,
			Name:    d.Name,
			Color:   d.Color.Hex(),
			Visible: d.Visible,
			Active:  d.ID == st.ActiveClass,
			Count:   st.CountClass(d.ID),
		})
	}
	p.view.SetClasses(rows)
}

// Tick renders when something changed since the last frame.
func (p *EditorPresenter) Tick(now time.Time) {
	if !p.redraw {
		return
	}
	p.redraw = false
	scene := p.Scene()
	rect := p.loupeRect()
	p.loupe.SetRect(rect)
	p.canvas.Request(scene, p.loupe.Rect(), p.source)
	if p.view != nil {
		p.view.SetInfo(p.info())
	}
}

func (p *EditorPresenter) info() string {
	st := p.ctl.State()
	return fmt.Sprintf("Boxes: %d  Selected: %d  Zoom: %.0f%%  Undo: %d",
		len(st.Boxes), st.SelectedCount(), p.ctl.View().Zoom()*100, p.ctl.History().UndoDepth())
}

// loupeRect is the single selected box, if any.
func (p *EditorPresenter) loupeRect() image.Rectangle {
	i, ok := p.ctl.ShowHandles()
	if !ok {
		return image.Rectangle{}
	}
	b := p.ctl.State().Boxes[i]
	return image.Rect(b.X1, b.Y1, b.X2+1, b.Y2+1)
}

// Scene describes the canvas for the current state.
func (p *EditorPresenter) Scene() images.Scene {
	tr := p.ctl.View()
	vw, vh := tr.Viewport()
	s := images.Scene{
		ViewW:      int(vw),
		ViewH:      int(vh),
		Background: p.colors.Background,
		GuideColor: p.colors.Guide,
		CrossColor: p.colors.Cross,
		HandleSize: p.ctl.HandleSize(),
	}
	if p.crossOn && p.hasCursor {
		c := p.cursor
		s.Cross = &c
	}
	if !p.ctl.Loaded() {
		return s
	}
	s.Surface = p.surface
	s.Scale = tr.Scale()
	s.OffX, s.OffY = tr.Offset()

	st := p.ctl.State()
	dups := p.ctl.Duplicates()
	for i, b := range st.Boxes {
		if !st.Classes.Visible(b.ClassID) {
			continue
		}
		def, _ := st.Classes.Get(b.ClassID)
		x1, y1 := tr.ToView(b.X1, b.Y1)
		x2, y2 := tr.ToView(b.X2, b.Y2)
		s.Boxes = append(s.Boxes, images.SceneBox{
			X1: x1, Y1: y1, X2: x2, Y2: y2,
			Color:     rgba(def.Color),
			Caption:   def.Name,
			Selected:  b.Selected,
			Duplicate: dups[i],
		})
	}
	if i, ok := p.ctl.ShowHandles(); ok {
		b := st.Boxes[i]
		x1, y1 := tr.ToView(b.X1, b.Y1)
		x2, y2 := tr.ToView(b.X2, b.Y2)
		centers := annotation.HandleCenters(x1, y1, x2, y2)
		for _, h := range annotation.Handles {
			s.Handles = append(s.Handles, centers[h])
		}
	}
	g := p.ctl.Guides()
	s.GuideXs, s.GuideYs = g.Xs, g.Ys
	if rb, ok := p.ctl.RubberBand(); ok {
		def, _ := st.Classes.Get(st.ActiveClass)
		s.RubberBand = p.viewRect(rb, rgba(def.Color))
	}
	if mq, ok := p.ctl.Marquee(); ok {
		s.Marquee = p.viewRect(mq, p.colors.Marquee)
	}
	return s
}

func (p *EditorPresenter) viewRect(b annotation.Box, c color.RGBA) *images.SceneRect {
	tr := p.ctl.View()
	x1, y1 := tr.ToView(b.X1, b.Y1)
	x2, y2 := tr.ToView(b.X2, b.Y2)
	return &images.SceneRect{X1: x1, Y1: y1, X2: x2, Y2: y2, Color: c}
}

func rgba(c annotation.RGB) color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff} }
