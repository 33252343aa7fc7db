// Package interaction implements the pointer and keyboard state machine of
// the box editor.
package interaction

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/soocke/fastlabel-go/domain/annotation"
	"github.com/soocke/fastlabel-go/domain/viewport"
)

// Controller owns the annotation state of the open image and mutates it in
// response to pointer and keyboard input. It is not safe for concurrent use;
// every call must come from the UI goroutine.
type Controller struct {
	logger  *slog.Logger
	opts    Options
	cb      Callbacks
	state   *annotation.State
	history *annotation.History
	view    *viewport.Transform
	size    annotation.Size
	loaded  bool

	gesture gesture
	guides  Guides

	clipboard  annotation.Snapshot
	pasteCount int
}

// NewController returns an idle controller with an empty class table.
func NewController(logger *slog.Logger, opts Options, cb Callbacks) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MinSide <= 0 {
		opts.MinSide = annotation.DefaultMinSide
	}
	if opts.HandleSize <= 0 {
		opts.HandleSize = 8
	}
	if opts.ZoomStep <= 1 {
		opts.ZoomStep = viewport.DefaultZoomStep
	}
	return &Controller{
		logger:  logger,
		opts:    opts,
		cb:      cb,
		state:   annotation.NewState(),
		history: annotation.NewHistory(opts.HistoryCapacity),
		view:    viewport.NewTransform(opts.MinZoom, opts.MaxZoom),
	}
}

// SetCallbacks replaces the owner hooks.
func (c *Controller) SetCallbacks(cb Callbacks) { c.cb = cb }

// Load opens an image of the given size with boxes from snap. History is
// reset; the class table carries over and gains class_<id> entries for any
// unknown ids in snap.
func (c *Controller) Load(size annotation.Size, snap annotation.Snapshot) {
	c.LoadNamed(size, snap, nil)
}

// LoadNamed is Load with names for class ids the table does not know yet.
func (c *Controller) LoadNamed(size annotation.Size, snap annotation.Snapshot, names map[int]string) {
	c.setGesture(nil)
	c.size = size
	c.loaded = !size.Empty()
	c.view.SetImage(size)
	c.state.Load(snap)
	c.state.DetectorRan = false
	for _, id := range snap.ClassIDs() {
		c.state.Classes.Ensure(id, names[id])
	}
	c.state.FixActiveClass()
	c.history.Reset()
	c.guides = Guides{}
}

// Unload closes the current image.
func (c *Controller) Unload() {
	c.setGesture(nil)
	c.loaded = false
	c.size = annotation.Size{}
	c.state.Boxes = nil
	c.history.Reset()
}

func (c *Controller) Loaded() bool                  { return c.loaded }
func (c *Controller) State() *annotation.State      { return c.state }
func (c *Controller) History() *annotation.History  { return c.history }
func (c *Controller) View() *viewport.Transform     { return c.view }
func (c *Controller) ImageSize() annotation.Size    { return c.size }
func (c *Controller) Snapshot() annotation.Snapshot { return c.state.Snapshot() }
func (c *Controller) Guides() Guides                { return c.guides }

// Classes returns the live class table. Mutate it only through controller
// methods so history stays consistent.
func (c *Controller) Classes() *annotation.ClassTable { return c.state.Classes }

// SetClasses replaces the class table without recording history. Used when
// importing a dataset manifest.
func (c *Controller) SetClasses(ct *annotation.ClassTable) {
	c.state.Classes = ct.Clone()
	c.state.FixActiveClass()
}

// Mode reports the active gesture.
func (c *Controller) Mode() Mode {
	if c.gesture == nil {
		return ModeIdle
	}
	return c.gesture.mode()
}

func (c *Controller) setGesture(g gesture) {
	from := c.Mode()
	c.gesture = g
	if to := c.Mode(); to != from {
		c.logger.Debug("interaction mode", "from", from.String(), "to", to.String())
	}
}

func (c *Controller) status(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.cb.Status != nil {
		c.cb.Status(msg)
	}
}

func (c *Controller) changed() {
	if c.cb.Changed != nil {
		c.cb.Changed()
	}
}

func (c *Controller) confirm(title, msg string) bool {
	if c.cb.Confirm == nil {
		return true
	}
	return c.cb.Confirm(title, msg)
}

// pushUndo records the state before a mutation.
func (c *Controller) pushUndo() { c.history.PushUndo(c.state) }

// HandleAt returns the resize handle under view point (vx, vy). Handles exist
// only while exactly one visible box is selected.
func (c *Controller) HandleAt(vx, vy float64) (int, annotation.Handle, bool) {
	sel := c.state.SelectedIndices()
	if len(sel) != 1 {
		return -1, annotation.HandleNone, false
	}
	idx := sel[0]
	b := c.state.Boxes[idx]
	if !c.state.Classes.Visible(b.ClassID) {
		return -1, annotation.HandleNone, false
	}
	x1, y1 := c.view.ToView(b.X1, b.Y1)
	x2, y2 := c.view.ToView(b.X2, b.Y2)
	centers := annotation.HandleCenters(x1, y1, x2, y2)
	r := c.opts.HandleSize / 2
	for _, h := range annotation.Handles {
		p := centers[h]
		if p[0]-r <= vx && vx <= p[0]+r && p[1]-r <= vy && vy <= p[1]+r {
			return idx, h, true
		}
	}
	return -1, annotation.HandleNone, false
}

// PointerDown starts a gesture. Resolution order: resize handle, pan,
// box with multi-select, box, empty canvas with multi-select, empty canvas.
func (c *Controller) PointerDown(p Pointer) {
	if !c.loaded {
		return
	}
	if c.gesture != nil {
		c.PointerUp(p)
	}
	c.guides = Guides{}

	if idx, h, ok := c.HandleAt(p.X, p.Y); ok {
		c.pushUndo()
		c.state.SelectOnly(idx)
		c.setGesture(&resizingGesture{index: idx, handle: h, start: c.state.Boxes[idx]})
		return
	}

	ix, iy := c.view.ToImage(p.X, p.Y, true)
	hit := c.state.HitTest(ix, iy)

	if hit < 0 && p.Mods.Has(ModPan) {
		ox, oy := c.view.Offset()
		c.setGesture(&panningGesture{startVX: p.X, startVY: p.Y, startOffX: ox, startOffY: oy})
		return
	}

	if hit >= 0 {
		if p.Mods.Has(ModMultiSelect) && !c.state.Boxes[hit].Selected {
			c.state.Boxes[hit].Selected = true
			c.status("Added to selection.")
			return
		}
		if !p.Mods.Has(ModMultiSelect) {
			c.state.SelectOnly(hit)
		}
		c.beginMove(ix, iy)
		return
	}

	if p.Mods.Has(ModMultiSelect) {
		c.setGesture(&marqueeGesture{startX: ix, startY: iy, curX: ix, curY: iy})
		return
	}

	c.state.ClearSelection()
	if p.Mods.Has(ModSnap) {
		ix, iy = c.snapPoint(p.X, p.Y, nil, true, true)
	}
	c.setGesture(&creatingGesture{startX: ix, startY: iy, curX: ix, curY: iy})
}

func (c *Controller) beginMove(ix, iy int) {
	c.pushUndo()
	g := &movingGesture{startX: ix, startY: iy}
	for _, i := range c.state.SelectedIndices() {
		g.indices = append(g.indices, i)
		g.start = append(g.start, c.state.Boxes[i])
	}
	c.setGesture(g)
}

// PointerMove updates the active gesture.
func (c *Controller) PointerMove(p Pointer) {
	if !c.loaded || c.gesture == nil {
		return
	}
	c.guides = Guides{}
	switch g := c.gesture.(type) {
	case *panningGesture:
		c.view.SetOffset(g.startOffX+p.X-g.startVX, g.startOffY+p.Y-g.startVY)
	case *resizingGesture:
		c.applyResize(g, p)
	case *movingGesture:
		c.applyMove(g, p)
	case *marqueeGesture:
		g.curX, g.curY = c.view.ToImage(p.X, p.Y, true)
	case *creatingGesture:
		g.curX, g.curY = c.creationPoint(p)
		g.square = p.Mods.Has(ModAspectLock)
	}
}

// PointerUp commits or finishes the active gesture.
func (c *Controller) PointerUp(p Pointer) {
	if c.gesture == nil {
		return
	}
	g := c.gesture
	c.setGesture(nil)
	c.guides = Guides{}
	switch g := g.(type) {
	case *panningGesture:
	case *resizingGesture, *movingGesture:
		c.changed()
	case *marqueeGesture:
		ex, ey := c.view.ToImage(p.X, p.Y, true)
		c.finishMarquee(annotation.NewBox(g.startX, g.startY, ex, ey, 0))
	case *creatingGesture:
		ex, ey := c.creationPoint(p)
		c.finishCreate(g.startX, g.startY, ex, ey, p.Mods.Has(ModAspectLock))
	}
}

func (c *Controller) creationPoint(p Pointer) (int, int) {
	if p.Mods.Has(ModSnap) {
		return c.snapPoint(p.X, p.Y, nil, true, true)
	}
	return c.view.ToImage(p.X, p.Y, true)
}

func (c *Controller) applyResize(g *resizingGesture, p Pointer) {
	if g.index < 0 || g.index >= len(c.state.Boxes) {
		return
	}
	var tx, ty int
	if p.Mods.Has(ModSnap) {
		h := g.handle
		useX := h != annotation.HandleN && h != annotation.HandleS
		useY := h != annotation.HandleW && h != annotation.HandleE
		tx, ty = c.snapPoint(p.X, p.Y, map[int]bool{g.index: true}, useX, useY)
	} else {
		tx, ty = c.view.ToImage(p.X, p.Y, false)
	}
	nb := g.start.Resized(g.handle, tx, ty, c.size, c.opts.MinSide, p.Mods.Has(ModAspectLock))
	nb.Selected = true
	c.state.Boxes[g.index] = nb
}

func (c *Controller) applyMove(g *movingGesture, p Pointer) {
	if len(g.indices) == 0 {
		return
	}
	ix, iy := c.view.ToImage(p.X, p.Y, true)
	dx, dy := ix-g.startX, iy-g.startY
	if p.Mods.Has(ModSnap) {
		dx, dy = c.snapGroupDelta(g, dx, dy)
	}
	for k, i := range g.indices {
		if i >= len(c.state.Boxes) {
			continue
		}
		b := g.start[k]
		b.MoveBy(dx, dy, c.size)
		c.state.Boxes[i] = b
	}
}

// snapGroupDelta snaps the bounding box of the moved group once and applies
// the correction to every member.
func (c *Controller) snapGroupDelta(g *movingGesture, dx, dy int) (int, int) {
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := math.MinInt, math.MinInt
	exclude := make(map[int]bool, len(g.indices))
	for k, i := range g.indices {
		b := g.start[k]
		minX, minY = min(minX, b.X1), min(minY, b.Y1)
		maxX, maxY = max(maxX, b.X2), max(maxY, b.Y2)
		exclude[i] = true
	}
	targets := viewport.BuildTargets(c.view, c.state.Boxes, c.state.Classes, exclude)
	lo, top := c.view.ToView(minX+dx, minY+dy)
	hi, bottom := c.view.ToView(maxX+dx, maxY+dy)
	if shift, line, ok := viewport.SnapSpan(lo, hi, targets.Xs, c.opts.SnapThreshold); ok {
		dx += c.view.LengthToImage(shift)
		c.guides.Xs = append(c.guides.Xs, line)
	}
	if shift, line, ok := viewport.SnapSpan(top, bottom, targets.Ys, c.opts.SnapThreshold); ok {
		dy += c.view.LengthToImage(shift)
		c.guides.Ys = append(c.guides.Ys, line)
	}
	return dx, dy
}

// snapPoint snaps a view point to the nearest targets on the requested axes
// and returns it in image coordinates.
func (c *Controller) snapPoint(vx, vy float64, exclude map[int]bool, useX, useY bool) (int, int) {
	targets := viewport.BuildTargets(c.view, c.state.Boxes, c.state.Classes, exclude)
	if useX {
		if sx, ok := viewport.SnapScalar(vx, targets.Xs, c.opts.SnapThreshold); ok {
			vx = sx
			c.guides.Xs = append(c.guides.Xs, sx)
		}
	}
	if useY {
		if sy, ok := viewport.SnapScalar(vy, targets.Ys, c.opts.SnapThreshold); ok {
			vy = sy
			c.guides.Ys = append(c.guides.Ys, sy)
		}
	}
	fx, fy := c.view.ToImageF(vx, vy)
	x := min(max(int(math.Round(fx)), 0), c.size.W-1)
	y := min(max(int(math.Round(fy)), 0), c.size.H-1)
	return x, y
}

func (c *Controller) finishMarquee(rect annotation.Box) {
	added := 0
	for i := range c.state.Boxes {
		b := &c.state.Boxes[i]
		if !c.state.Classes.Visible(b.ClassID) {
			continue
		}
		if b.Intersects(rect) && !b.Selected {
			b.Selected = true
			added++
		}
	}
	c.status("Selected %d box(es).", added)
}

func (c *Controller) finishCreate(sx, sy, ex, ey int, square bool) {
	if square {
		ex, ey = annotation.Square(sx, sy, ex, ey)
	}
	if c.state.Classes.Len() == 0 {
		c.status("Cannot create box: no labels.")
		return
	}
	if !c.state.Classes.Has(c.state.ActiveClass) {
		c.status("Selected label no longer exists.")
		return
	}
	nb := annotation.NewBox(sx, sy, ex, ey, c.state.ActiveClass)
	if !nb.SizeOK(c.opts.MinSide) || !nb.Within(c.size) {
		c.status("Box too small.")
		return
	}
	c.pushUndo()
	c.state.Boxes = append(c.state.Boxes, nb)
	c.changed()
}

// RubberBand returns the in-progress creation rectangle.
func (c *Controller) RubberBand() (annotation.Box, bool) {
	g, ok := c.gesture.(*creatingGesture)
	if !ok {
		return annotation.Box{}, false
	}
	ex, ey := g.curX, g.curY
	if g.square {
		ex, ey = annotation.Square(g.startX, g.startY, ex, ey)
	}
	return annotation.NewBox(g.startX, g.startY, ex, ey, c.state.ActiveClass), true
}

// Marquee returns the in-progress selection rectangle.
func (c *Controller) Marquee() (annotation.Box, bool) {
	g, ok := c.gesture.(*marqueeGesture)
	if !ok {
		return annotation.Box{}, false
	}
	return annotation.NewBox(g.startX, g.startY, g.curX, g.curY, 0), true
}

// Duplicates flags likely duplicate boxes among the visible ones.
func (c *Controller) Duplicates() map[int]bool {
	return annotation.FindDuplicates(c.state.Boxes, c.state.Classes, c.opts.Duplicates)
}

// ShowHandles reports whether handles should be drawn and for which box.
func (c *Controller) ShowHandles() (int, bool) {
	sel := c.state.SelectedIndices()
	if len(sel) != 1 || !c.state.Classes.Visible(c.state.Boxes[sel[0]].ClassID) {
		return -1, false
	}
	return sel[0], true
}

// HandleSize is the grip side in view pixels.
func (c *Controller) HandleSize() float64 { return c.opts.HandleSize }

// SetViewport forwards the canvas size to the transform.
func (c *Controller) SetViewport(w, h int) { c.view.SetViewport(w, h) }

// ZoomStep zooms around the viewport centre by factor.
func (c *Controller) ZoomStep(factor float64) bool { return c.loaded && c.view.ZoomCenter(factor) }

// ZoomWheel zooms by one step per notch around (ax, ay). Positive notches zoom in.
func (c *Controller) ZoomWheel(notches int, ax, ay float64) bool {
	if !c.loaded || notches == 0 {
		return false
	}
	return c.view.ZoomAt(math.Pow(c.opts.ZoomStep, float64(notches)), ax, ay)
}

// PanWheel scrolls the view by whole wheel notches.
func (c *Controller) PanWheel(dxNotches, dyNotches int) {
	if !c.loaded {
		return
	}
	c.view.PanBy(float64(dxNotches)*c.opts.PanPerNotch, float64(dyNotches)*c.opts.PanPerNotch)
}

// Fit resets zoom and recentres.
func (c *Controller) Fit() {
	if c.loaded {
		c.view.Fit()
	}
}
