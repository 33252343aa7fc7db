package view

import (
	"image"

	"github.com/soocke/fastlabel-go/domain/interaction"
	"github.com/soocke/fastlabel-go/ui/images"
	"github.com/soocke/fastlabel-go/ui/input"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Pointer receives canvas gestures in view coordinates.
type Pointer interface {
	PointerDown(p interaction.Pointer)
	PointerMove(p interaction.Pointer)
	PointerUp(p interaction.Pointer)
	PointerHover(vx, vy float64)
	PointerLeave()
	SelectAt(vx, vy float64) bool
	ZoomWheel(notches int, ax, ay float64)
	PanWheel(dx, dy int)
}

// canvasView owns the editor bitmap label and the loupe label. Frames arrive
// as finished images; the previous Tk photo is deleted before the next one is
// configured so off-screen pixel data does not pile up.
type canvasView struct {
	canvas      *LabelWidget
	loupe       *LabelWidget
	canvasPhoto *Img
	loupePhoto  *Img
	blankLoupe  []byte
}

func newCanvasView(parent *FrameWidget, w, h, loupeSize int) *canvasView {
	blank := images.EncodePNG(image.NewRGBA(image.Rect(0, 0, w, h)))
	v := &canvasView{blankLoupe: images.EncodePNG(image.NewRGBA(image.Rect(0, 0, loupeSize, loupeSize)))}
	v.canvasPhoto = NewPhoto(Data(blank))
	v.loupePhoto = NewPhoto(Data(v.blankLoupe))
	v.canvas = Label(Image(v.canvasPhoto), Borderwidth(0), Cursor("crosshair"))
	v.loupe = Label(Image(v.loupePhoto), Borderwidth(1), Relief("sunken"))
	Grid(v.canvas, In(parent), Row(0), Column(0), Sticky("nw"))
	return v
}

// placeLoupe grids the loupe label into the side panel.
func (v *canvasView) placeLoupe(parent *FrameWidget, row int) {
	Grid(v.loupe, In(parent), Row(row), Column(0), Columnspan(2), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
}

func (v *canvasView) ShowCanvas(img image.Image) {
	if v == nil || v.canvas == nil || img == nil {
		return
	}
	if v.canvasPhoto != nil {
		v.canvasPhoto.Delete()
	}
	v.canvasPhoto = NewPhoto(Data(images.EncodePNG(img)))
	v.canvas.Configure(Image(v.canvasPhoto))
}

func (v *canvasView) ShowLoupe(img image.Image) {
	if v == nil || v.loupe == nil {
		return
	}
	data := v.blankLoupe
	if img != nil {
		data = images.EncodePNG(img)
	}
	if v.loupePhoto != nil {
		v.loupePhoto.Delete()
	}
	v.loupePhoto = NewPhoto(Data(data))
	v.loupe.Configure(Image(v.loupePhoto))
}

// bind routes mouse events on the canvas label to p. Modifier state comes
// from held, which the root view feeds from key events. menu is called after
// a right click landed on a box.
func (v *canvasView) bind(p Pointer, held *input.Held, menu func(e *Event)) {
	at := func(e *Event) interaction.Pointer {
		return interaction.Pointer{X: float64(e.X), Y: float64(e.Y), Mods: held.Modifiers()}
	}
	Bind(v.canvas, "<ButtonPress-1>", Command(func(e *Event) {
		// take focus from the class text fields so shortcuts work again
		Focus(App)
		p.PointerDown(at(e))
	}))
	Bind(v.canvas, "<B1-Motion>", Command(func(e *Event) { p.PointerMove(at(e)) }))
	Bind(v.canvas, "<ButtonRelease-1>", Command(func(e *Event) { p.PointerUp(at(e)) }))
	Bind(v.canvas, "<Motion>", Command(func(e *Event) { p.PointerHover(float64(e.X), float64(e.Y)) }))
	Bind(v.canvas, "<Leave>", Command(func() { p.PointerLeave() }))
	Bind(v.canvas, "<Button-3>", Command(func(e *Event) {
		if p.SelectAt(float64(e.X), float64(e.Y)) && menu != nil {
			menu(e)
		}
	}))

	Bind(v.canvas, "<MouseWheel>", Command(func(e *Event) { wheel(p, held, e, input.WheelNotches(e.Delta)) }))
	// X11 without wheel translation
	Bind(v.canvas, "<Button-4>", Command(func(e *Event) { wheel(p, held, e, 1) }))
	Bind(v.canvas, "<Button-5>", Command(func(e *Event) { wheel(p, held, e, -1) }))
}

// wheel zooms with Control, pans sideways with Shift and vertically otherwise.
func wheel(p Pointer, held *input.Held, e *Event, n int) {
	switch {
	case held.Ctrl():
		p.ZoomWheel(n, float64(e.X), float64(e.Y))
	case held.Modifiers().Has(interaction.ModMultiSelect):
		p.PanWheel(n, 0)
	default:
		p.PanWheel(0, n)
	}
}
