// Package viewport maps between image pixel space and view (canvas) space and
// computes snap targets in view space.
package viewport

import (
	"math"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

const (
	DefaultMinZoom  = 0.1
	DefaultMaxZoom  = 16.0
	DefaultZoomStep = 1.15
)

// Transform owns zoom and pan for one open image.
//
// scale = baseScale * zoom, where baseScale fits the image to the viewport
// on its limiting axis. On an axis where the scaled image is no larger than
// the viewport the image is centred; otherwise the offset is kept within
// [viewport-scaled, 0] so no area outside the image is exposed.
type Transform struct {
	baseScale float64
	zoom      float64
	offsetX   float64
	offsetY   float64
	viewW     float64
	viewH     float64
	image     annotation.Size
	minZoom   float64
	maxZoom   float64
}

// NewTransform returns a transform with the given zoom limits. Invalid limits
// fall back to [0.1, 16].
func NewTransform(minZoom, maxZoom float64) *Transform {
	if minZoom <= 0 || maxZoom < minZoom {
		minZoom, maxZoom = DefaultMinZoom, DefaultMaxZoom
	}
	return &Transform{zoom: 1, baseScale: 1, minZoom: minZoom, maxZoom: maxZoom}
}

// SetViewport records the canvas size, recomputes the base scale and clamps.
func (t *Transform) SetViewport(w, h int) {
	t.viewW, t.viewH = float64(w), float64(h)
	t.ComputeBaseScale()
	t.ClampOffsets()
}

// SetImage switches to a new image and fits it.
func (t *Transform) SetImage(size annotation.Size) {
	t.image = size
	t.Fit()
}

// ComputeBaseScale sets baseScale = min(viewW/imageW, viewH/imageH).
func (t *Transform) ComputeBaseScale() {
	if t.image.Empty() || t.viewW <= 0 || t.viewH <= 0 {
		t.baseScale = 1
		return
	}
	t.baseScale = math.Max(1e-9, math.Min(t.viewW/float64(t.image.W), t.viewH/float64(t.image.H)))
}

// Fit resets zoom to 1 and centres the image.
func (t *Transform) Fit() {
	t.zoom = 1
	t.ComputeBaseScale()
	w, h := t.displaySize()
	t.offsetX = (t.viewW - w) / 2
	t.offsetY = (t.viewH - h) / 2
}

func (t *Transform) Scale() float64     { return t.baseScale * t.zoom }
func (t *Transform) BaseScale() float64 { return t.baseScale }
func (t *Transform) Zoom() float64      { return t.zoom }

func (t *Transform) Offset() (float64, float64)   { return t.offsetX, t.offsetY }
func (t *Transform) Viewport() (float64, float64) { return t.viewW, t.viewH }
func (t *Transform) Image() annotation.Size       { return t.image }

func (t *Transform) displaySize() (float64, float64) {
	s := t.Scale()
	return float64(t.image.W) * s, float64(t.image.H) * s
}

// DisplaySize is the scaled image size in whole view pixels, at least 1x1.
func (t *Transform) DisplaySize() (int, int) {
	w, h := t.displaySize()
	return max(1, int(w)), max(1, int(h))
}

// ZoomAt multiplies the zoom by factor keeping the image point under
// (ax, ay) stationary. It reports false when the clamped zoom is unchanged.
func (t *Transform) ZoomAt(factor, ax, ay float64) bool {
	if t.image.Empty() || factor <= 0 {
		return false
	}
	t.ComputeBaseScale()
	ix, iy := t.ToImageF(ax, ay)
	next := min(max(t.zoom*factor, t.minZoom), t.maxZoom)
	if math.Abs(next-t.zoom) < 1e-6 {
		return false
	}
	t.zoom = next
	s := t.Scale()
	t.offsetX = ax - ix*s
	t.offsetY = ay - iy*s
	t.ClampOffsets()
	return true
}

// ZoomCenter zooms around the viewport centre.
func (t *Transform) ZoomCenter(factor float64) bool {
	return t.ZoomAt(factor, math.Floor(t.viewW/2), math.Floor(t.viewH/2))
}

// SetOffset moves the image origin in view space and clamps.
func (t *Transform) SetOffset(x, y float64) {
	t.offsetX, t.offsetY = x, y
	t.ClampOffsets()
}

// PanBy shifts the offset by (dx, dy) view pixels.
func (t *Transform) PanBy(dx, dy float64) { t.SetOffset(t.offsetX+dx, t.offsetY+dy) }

// ClampOffsets centres small axes and keeps large axes covering the viewport.
func (t *Transform) ClampOffsets() {
	w, h := t.displaySize()
	t.offsetX = clampAxis(t.offsetX, t.viewW, w)
	t.offsetY = clampAxis(t.offsetY, t.viewH, h)
}

func clampAxis(off, view, disp float64) float64 {
	if disp <= view {
		return (view - disp) / 2
	}
	return min(max(off, view-disp), 0)
}

// ToView maps an image pixel to view coordinates.
func (t *Transform) ToView(x, y int) (float64, float64) {
	return t.ToViewF(float64(x), float64(y))
}

func (t *Transform) ToViewF(x, y float64) (float64, float64) {
	s := t.Scale()
	return t.offsetX + x*s, t.offsetY + y*s
}

// ToImageF maps view coordinates to unclamped fractional image coordinates.
func (t *Transform) ToImageF(vx, vy float64) (float64, float64) {
	s := t.Scale()
	return (vx - t.offsetX) / s, (vy - t.offsetY) / s
}

// ToImage maps a view point to the image pixel beneath it. With clamp the
// result is limited to [0,W-1]x[0,H-1].
func (t *Transform) ToImage(vx, vy float64, clamp bool) (int, int) {
	fx, fy := t.ToImageF(vx, vy)
	x := int(math.Floor(fx + 1e-6))
	y := int(math.Floor(fy + 1e-6))
	if clamp {
		x = min(max(x, 0), max(t.image.W-1, 0))
		y = min(max(y, 0), max(t.image.H-1, 0))
	}
	return x, y
}

// LengthToImage converts a view-space distance into image pixels, rounded.
func (t *Transform) LengthToImage(d float64) int {
	return int(math.Round(d / t.Scale()))
}
