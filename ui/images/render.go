package images

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// SceneBox is one box in view coordinates.
type SceneBox struct {
	X1, Y1, X2, Y2 float64
	Color          color.RGBA
	Caption        string
	Selected       bool
	Duplicate      bool
}

// SceneRect is an in-progress rectangle such as the rubber band.
type SceneRect struct {
	X1, Y1, X2, Y2 float64
	Color          color.RGBA
}

// Scene describes one frame of the editor canvas. All coordinates are in
// view pixels.
type Scene struct {
	ViewW, ViewH int
	Background   color.RGBA

	// Surface is drawn at (OffX, OffY) with Scale. When nil, Image is
	// drawn unscaled at the same offset.
	Surface    *Surface
	Scale      float64
	Image      image.Image
	OffX, OffY float64

	Boxes      []SceneBox
	Handles    [][2]float64
	HandleSize float64

	GuideXs, GuideYs []float64
	GuideColor       color.RGBA

	RubberBand *SceneRect
	Marquee    *SceneRect

	// Cross, when set, draws full-height and full-width lines through the
	// pointer position.
	Cross      *[2]float64
	CrossColor color.RGBA
}

var (
	haloColor     = color.RGBA{R: 0xff, G: 0xd1, B: 0x66, A: 0xff}
	handleFill    = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	handleOutline = color.RGBA{R: 0x0b, G: 0x0f, B: 0x12, A: 0xff}
	captionText   = color.RGBA{R: 0x0b, G: 0x0f, B: 0x12, A: 0xff}
)

const dash = 6

// Render draws s into an RGBA bitmap of the viewport size taken from the
// frame pool. Callers may hand it back with RecycleFrame once it is shown.
func Render(s Scene) *image.RGBA {
	w, h := max(1, s.ViewW), max(1, s.ViewH)
	dst := AcquireFrame(w, h)
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(s.Background)
	dc.Clear()

	img, ox, oy := s.Image, s.OffX, s.OffY
	if s.Surface != nil {
		img, ox, oy = s.Surface.Window(s.Scale, s.OffX, s.OffY, w, h)
	}
	if img != nil {
		// the surface is already scaled; a plain copy keeps its pixels exact
		at := image.Pt(px(ox), px(oy))
		r := img.Bounds().Sub(img.Bounds().Min).Add(at)
		draw.Draw(dst, r, img, img.Bounds().Min, draw.Src)
	}

	dc.SetLineJoinBevel()
	dc.SetLineCapButt()
	dc.SetFontFace(basicfont.Face7x13)

	for _, b := range s.Boxes {
		x1, y1, x2, y2 := px(b.X1), px(b.Y1), px(b.X2), px(b.Y2)
		if b.Duplicate {
			strokeRect(dc, x1-3, y1-3, x2+3, y2+3, 2, haloColor)
		}
		width := 2
		if b.Selected {
			width = 3
			fillRect(dc, x1, y1, x2, y2, withAlpha(b.Color, 0x30))
		}
		strokeRect(dc, x1, y1, x2, y2, width, b.Color)
		if b.Caption != "" {
			caption(dc, x1, y1, b.Caption, b.Color)
		}
	}

	dc.SetDash(dash, dash)
	for _, gx := range s.GuideXs {
		vline(dc, px(gx), h, s.GuideColor)
	}
	for _, gy := range s.GuideYs {
		hline(dc, px(gy), w, s.GuideColor)
	}
	dc.SetDash()

	if c := s.Cross; c != nil {
		cx, cy := px(c[0]), px(c[1])
		vline(dc, cx, h, s.CrossColor)
		hline(dc, cy, w, s.CrossColor)
	}

	if r := s.RubberBand; r != nil {
		strokeRect(dc, px(r.X1), px(r.Y1), px(r.X2), px(r.Y2), 1, r.Color)
	}
	if r := s.Marquee; r != nil {
		fillRect(dc, px(r.X1), px(r.Y1), px(r.X2), px(r.Y2), withAlpha(r.Color, 0x28))
		strokeRect(dc, px(r.X1), px(r.Y1), px(r.X2), px(r.Y2), 1, r.Color)
	}

	half := max(1, px(s.HandleSize/2))
	for _, p := range s.Handles {
		cx, cy := px(p[0]), px(p[1])
		fillRect(dc, cx-half, cy-half, cx+half, cy+half, handleFill)
		strokeRect(dc, cx-half, cy-half, cx+half, cy+half, 1, handleOutline)
	}
	return dst
}

func px(v float64) int { return int(math.Round(v)) }

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// fillRect covers the pixels x1..x2, y1..y2 inclusive.
func fillRect(dc *gg.Context, x1, y1, x2, y2 int, c color.Color) {
	dc.SetColor(c)
	dc.DrawRectangle(float64(x1), float64(y1), float64(x2-x1+1), float64(y2-y1+1))
	dc.Fill()
}

// strokeRect outlines the rectangle whose edges run through pixel columns x1
// and x2 and rows y1 and y2. Wider strokes grow outwards first.
func strokeRect(dc *gg.Context, x1, y1, x2, y2, width int, c color.Color) {
	o := pixelCentre(width)
	dc.SetColor(c)
	dc.SetLineWidth(float64(width))
	dc.DrawRectangle(float64(x1)+o, float64(y1)+o, float64(x2-x1), float64(y2-y1))
	dc.Stroke()
}

// vline draws a one pixel wide line down column x.
func vline(dc *gg.Context, x, h int, c color.Color) {
	dc.SetColor(c)
	dc.SetLineWidth(1)
	dc.DrawLine(float64(x)+0.5, 0, float64(x)+0.5, float64(h))
	dc.Stroke()
}

// hline draws a one pixel high line along row y.
func hline(dc *gg.Context, y, w int, c color.Color) {
	dc.SetColor(c)
	dc.SetLineWidth(1)
	dc.DrawLine(0, float64(y)+0.5, float64(w), float64(y)+0.5)
	dc.Stroke()
}

// pixelCentre is the offset that lands a stroke of width on whole pixels.
func pixelCentre(width int) float64 {
	if width%2 == 1 {
		return 0.5
	}
	return 0
}

// caption draws text on a filled tab above the box, or inside it when the
// box touches the top edge.
func caption(dc *gg.Context, x, y int, text string, bg color.Color) {
	face := basicfont.Face7x13
	tw, _ := dc.MeasureString(text)
	th := face.Metrics().Height.Ceil()
	top := y - th - 2
	if top < 0 {
		top = y + 2
	}
	fillRect(dc, x, top, x+int(math.Ceil(tw))+4, top+th+1, bg)
	dc.SetColor(captionText)
	dc.DrawString(text, float64(x+2), float64(top+face.Metrics().Ascent.Ceil()+1))
}
