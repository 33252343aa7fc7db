package annotation

import (
	"math/rand"
	"testing"
)

func TestNewBoxSortsEndpoints(t *testing.T) {
	b := NewBox(50, 60, 10, 10, 2)
	if b.X1 != 10 || b.Y1 != 10 || b.X2 != 50 || b.Y2 != 60 {
		t.Fatalf("expected sorted box, got %+v", b)
	}
	if b.ClassID != 2 {
		t.Fatalf("expected class 2, got %d", b.ClassID)
	}
}

func TestContainsInclusive(t *testing.T) {
	b := NewBox(10, 10, 20, 20, 0)
	for _, p := range [][2]int{{10, 10}, {20, 20}, {15, 10}, {10, 20}} {
		if !b.Contains(p[0], p[1]) {
			t.Fatalf("expected %v inside %+v", p, b)
		}
	}
	if b.Contains(21, 15) || b.Contains(15, 9) {
		t.Fatalf("point outside reported inside")
	}
}

func TestMoveByClampsPositionNotSize(t *testing.T) {
	bounds := Size{W: 100, H: 80}
	b := NewBox(10, 10, 30, 40, 0)
	b.MoveBy(500, 500, bounds)
	if b.Width() != 20 || b.Height() != 30 {
		t.Fatalf("size changed: %+v", b)
	}
	if b.X2 != 99 || b.Y2 != 79 {
		t.Fatalf("expected box pinned to bottom-right edge, got %+v", b)
	}
	b.MoveBy(-1000, -1000, bounds)
	if b.X1 != 0 || b.Y1 != 0 || b.Width() != 20 || b.Height() != 30 {
		t.Fatalf("expected box pinned to origin, got %+v", b)
	}
}

func TestResizeEdgeKeepsMinSide(t *testing.T) {
	bounds := Size{W: 200, H: 200}
	start := NewBox(50, 50, 100, 100, 1)
	out := start.Resized(HandleE, 10, 75, bounds, DefaultMinSide, false)
	if out.X2 != 54 || out.X1 != 50 {
		t.Fatalf("expected right edge clamped to x1+min, got %+v", out)
	}
	out = start.Resized(HandleN, 75, 300, bounds, DefaultMinSide, false)
	if out.Y1 != 96 || out.Y2 != 100 {
		t.Fatalf("expected top edge clamped to y2-min, got %+v", out)
	}
	out = start.Resized(HandleW, -40, 75, bounds, DefaultMinSide, false)
	if out.X1 != 0 {
		t.Fatalf("expected left edge clamped at 0, got %+v", out)
	}
}

func TestResizeCornerMovesTwoEdges(t *testing.T) {
	bounds := Size{W: 200, H: 200}
	start := NewBox(50, 50, 100, 100, 1)
	out := start.Resized(HandleSE, 150, 130, bounds, DefaultMinSide, false)
	if out.X1 != 50 || out.Y1 != 50 || out.X2 != 150 || out.Y2 != 130 {
		t.Fatalf("unexpected corner resize: %+v", out)
	}
}

func TestResizeAspectLockedPinsOppositeCorner(t *testing.T) {
	bounds := Size{W: 200, H: 200}
	start := NewBox(50, 50, 100, 100, 1)
	out := start.Resized(HandleSE, 180, 120, bounds, DefaultMinSide, true)
	if out.X1 != 50 || out.Y1 != 50 {
		t.Fatalf("anchor moved: %+v", out)
	}
	if out.Width() != out.Height() || out.Width() != 70 {
		t.Fatalf("expected 70px square, got %+v", out)
	}
	out = start.Resized(HandleNW, 0, 40, bounds, DefaultMinSide, true)
	if out.X2 != 100 || out.Y2 != 100 || out.Width() != 60 || out.Height() != 60 {
		t.Fatalf("expected 60px square anchored at se, got %+v", out)
	}
	// Extent capped by the image edge.
	out = start.Resized(HandleSE, 500, 500, Size{W: 120, H: 200}, DefaultMinSide, true)
	if out.X2 != 119 || out.Width() != out.Height() {
		t.Fatalf("expected square capped at right edge, got %+v", out)
	}
}

func TestSquare(t *testing.T) {
	x, y := Square(10, 10, 40, -5)
	if x != 25 || y != -5 {
		t.Fatalf("expected (25,-5), got (%d,%d)", x, y)
	}
}

// Random move/resize sequences must always leave a valid in-bounds box.
func TestMoveResizeInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bounds := Size{W: 320, H: 240}
	handles := Handles[:]
	for i := 0; i < 2000; i++ {
		b := NewBox(rng.Intn(300), rng.Intn(220), 0, 0, 0)
		b.X2 = min(b.X1+DefaultMinSide+rng.Intn(20), bounds.W-1)
		b.Y2 = min(b.Y1+DefaultMinSide+rng.Intn(20), bounds.H-1)
		if !b.SizeOK(DefaultMinSide) {
			continue
		}
		for step := 0; step < 10; step++ {
			if rng.Intn(2) == 0 {
				b.MoveBy(rng.Intn(200)-100, rng.Intn(200)-100, bounds)
			} else {
				h := handles[rng.Intn(len(handles))]
				b = b.Resized(h, rng.Intn(400)-40, rng.Intn(300)-30, bounds, DefaultMinSide, rng.Intn(2) == 0)
			}
			if !b.Within(bounds) || !b.SizeOK(DefaultMinSide) {
				t.Fatalf("invariant broken after step %d: %+v", step, b)
			}
		}
	}
}

func TestHitTestBackToFront(t *testing.T) {
	s := NewState()
	s.Classes = NewClassTable(
		ClassDefinition{ID: 0, Name: "a", Visible: true},
		ClassDefinition{ID: 1, Name: "b", Visible: false},
	)
	s.Boxes = []Box{NewBox(0, 0, 50, 50, 0), NewBox(10, 10, 40, 40, 0), NewBox(20, 20, 30, 30, 1)}
	if got := s.HitTest(25, 25); got != 1 {
		t.Fatalf("expected topmost visible box 1, got %d", got)
	}
	if got := s.HitTest(5, 5); got != 0 {
		t.Fatalf("expected box 0, got %d", got)
	}
	if got := s.HitTest(90, 90); got != -1 {
		t.Fatalf("expected miss, got %d", got)
	}
}
