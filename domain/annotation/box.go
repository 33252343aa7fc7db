package annotation

import "fmt"

// DefaultMinSide is the smallest width or height of a committed box in pixels.
const DefaultMinSide = 4

// Size is an image extent in pixels.
type Size struct{ W, H int }

// Empty reports whether the size has no drawable area.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }

// Box is an axis-aligned annotation rectangle in image pixel space.
//
// X1 <= X2 and Y1 <= Y2 hold for every box built with NewBox or modified
// through MoveBy / Resized.
type Box struct {
	X1, Y1, X2, Y2 int
	ClassID        int
	Selected       bool
}

// NewBox returns a box with its endpoints sorted.
func NewBox(x1, y1, x2, y2, classID int) Box {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return Box{X1: x1, Y1: y1, X2: x2, Y2: y2, ClassID: classID}
}

func (b Box) Width() int  { return b.X2 - b.X1 }
func (b Box) Height() int { return b.Y2 - b.Y1 }
func (b Box) Area() int   { return b.Width() * b.Height() }

// Center returns the geometric centre of the box.
func (b Box) Center() (float64, float64) {
	return float64(b.X1+b.X2) / 2, float64(b.Y1+b.Y2) / 2
}

// SizeOK reports whether both sides are at least minSide.
func (b Box) SizeOK(minSide int) bool {
	return b.Width() >= minSide && b.Height() >= minSide
}

// Contains is an inclusive point test.
func (b Box) Contains(x, y int) bool {
	return b.X1 <= x && x <= b.X2 && b.Y1 <= y && y <= b.Y2
}

// Intersects is the inclusive overlap test used by marquee selection.
func (b Box) Intersects(o Box) bool {
	return b.X1 <= o.X2 && b.X2 >= o.X1 && b.Y1 <= o.Y2 && b.Y2 >= o.Y1
}

// Within reports whether the box lies inside [0,W)x[0,H).
func (b Box) Within(s Size) bool {
	return b.X1 >= 0 && b.Y1 >= 0 && b.X2 <= s.W-1 && b.Y2 <= s.H-1 && b.X1 <= b.X2 && b.Y1 <= b.Y2
}

// Geometry returns the corner coordinates.
func (b Box) Geometry() (x1, y1, x2, y2 int) { return b.X1, b.Y1, b.X2, b.Y2 }

// MoveBy translates the box by (dx, dy) and clamps its position so it stays
// inside bounds. Width and height never change.
func (b *Box) MoveBy(dx, dy int, bounds Size) {
	w, h := b.Width(), b.Height()
	nx1 := min(max(b.X1+dx, 0), max(bounds.W-1-w, 0))
	ny1 := min(max(b.Y1+dy, 0), max(bounds.H-1-h, 0))
	b.X1, b.Y1, b.X2, b.Y2 = nx1, ny1, nx1+w, ny1+h
}

// Resized returns the geometry obtained by dragging handle h of b to (tx, ty).
//
// b is the box as it was when the resize gesture started; every pointer move
// recomputes from it so the result never drifts. Edge handles move one edge,
// corner handles two. With aspectLocked a corner handle pins the opposite
// corner and produces a square whose side is capped by the image bounds.
func (b Box) Resized(h Handle, tx, ty int, bounds Size, minSide int, aspectLocked bool) Box {
	out := b
	tx = min(max(tx, 0), bounds.W-1)
	ty = min(max(ty, 0), bounds.H-1)

	left := func(nx int) int { return min(max(nx, 0), b.X2-minSide) }
	right := func(nx int) int { return max(min(nx, bounds.W-1), b.X1+minSide) }
	top := func(ny int) int { return min(max(ny, 0), b.Y2-minSide) }
	bottom := func(ny int) int { return max(min(ny, bounds.H-1), b.Y1+minSide) }

	if aspectLocked && h.IsCorner() {
		return b.squareFrom(h, tx, ty, bounds, minSide)
	}
	switch h {
	case HandleN:
		out.Y1 = top(ty)
	case HandleS:
		out.Y2 = bottom(ty)
	case HandleW:
		out.X1 = left(tx)
	case HandleE:
		out.X2 = right(tx)
	case HandleNW:
		out.X1, out.Y1 = left(tx), top(ty)
	case HandleNE:
		out.X2, out.Y1 = right(tx), top(ty)
	case HandleSW:
		out.X1, out.Y2 = left(tx), bottom(ty)
	case HandleSE:
		out.X2, out.Y2 = right(tx), bottom(ty)
	}
	return out
}

// squareFrom pins the corner opposite h and derives a common side length.
func (b Box) squareFrom(h Handle, tx, ty int, bounds Size, minSide int) Box {
	var ax, ay, sx, sy int
	switch h {
	case HandleNW:
		ax, ay, sx, sy = b.X2, b.Y2, -1, -1
	case HandleNE:
		ax, ay, sx, sy = b.X1, b.Y2, 1, -1
	case HandleSW:
		ax, ay, sx, sy = b.X2, b.Y1, -1, 1
	default:
		ax, ay, sx, sy = b.X1, b.Y1, 1, 1
	}
	limitX := bounds.W - 1 - ax
	if sx < 0 {
		limitX = ax
	}
	limitY := bounds.H - 1 - ay
	if sy < 0 {
		limitY = ay
	}
	limit := min(limitX, limitY)
	if limit < minSide {
		// no square of the minimum size fits on this side of the anchor
		return b
	}
	s := min(abs(tx-ax), abs(ty-ay), limit)
	s = max(s, minSide)
	out := NewBox(ax, ay, ax+sx*s, ay+sy*s, b.ClassID)
	out.Selected = b.Selected
	return out
}

// Square constrains the drag from (sx, sy) to (ex, ey) to equal extents by
// taking min(|dx|, |dy|), keeping the drag direction.
func Square(sx, sy, ex, ey int) (int, int) {
	dx, dy := ex-sx, ey-sy
	side := min(abs(dx), abs(dy))
	return sx + side*sign(dx), sy + side*sign(dy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
