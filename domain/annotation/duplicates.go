package annotation

import "math"

// DuplicateOptions holds the similarity thresholds for same-class boxes.
type DuplicateOptions struct {
	// IoU at or above which two boxes are duplicates.
	IoU float64
	// Maximum centre offset on each axis, in pixels.
	CenterPx float64
	// Maximum area difference as a fraction of the larger area.
	AreaRatio float64
}

// DefaultDuplicateOptions returns IoU 0.90, 3px centres and a 2% area band.
func DefaultDuplicateOptions() DuplicateOptions {
	return DuplicateOptions{IoU: 0.90, CenterPx: 3, AreaRatio: 0.02}
}

// IoU returns the intersection over union of a and b. Zero-area or disjoint
// pairs yield 0.
func IoU(a, b Box) float64 {
	areaA, areaB := a.Area(), b.Area()
	if areaA <= 0 || areaB <= 0 {
		return 0
	}
	iw := min(a.X2, b.X2) - max(a.X1, b.X1)
	ih := min(a.Y2, b.Y2) - max(a.Y1, b.Y1)
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := float64(iw * ih)
	return inter / (float64(areaA+areaB) - inter)
}

// IsDuplicate reports whether a and b likely mark the same object.
func IsDuplicate(a, b Box, opt DuplicateOptions) bool {
	if a.ClassID != b.ClassID {
		return false
	}
	if IoU(a, b) >= opt.IoU {
		return true
	}
	acx, acy := a.Center()
	bcx, bcy := b.Center()
	if math.Abs(acx-bcx) > opt.CenterPx || math.Abs(acy-bcy) > opt.CenterPx {
		return false
	}
	areaA, areaB := float64(a.Area()), float64(b.Area())
	larger := math.Max(areaA, areaB)
	if larger <= 0 {
		return false
	}
	return math.Abs(areaA-areaB) <= opt.AreaRatio*larger
}

// FindDuplicates compares every visible pair and returns the indices of
// flagged boxes. It never modifies boxes.
func FindDuplicates(boxes []Box, classes *ClassTable, opt DuplicateOptions) map[int]bool {
	flagged := make(map[int]bool)
	for i := 0; i < len(boxes); i++ {
		if !classes.Visible(boxes[i].ClassID) {
			continue
		}
		for j := i + 1; j < len(boxes); j++ {
			if !classes.Visible(boxes[j].ClassID) {
				continue
			}
			if IsDuplicate(boxes[i], boxes[j], opt) {
				flagged[i] = true
				flagged[j] = true
			}
		}
	}
	return flagged
}
