package viewport

import (
	"math"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

// DefaultSnapThreshold is the snap distance in view pixels.
const DefaultSnapThreshold = 8.0

// Targets holds candidate alignment lines in view space.
type Targets struct {
	Xs []float64
	Ys []float64
}

// BuildTargets collects the image borders and the edges of every visible box
// not listed in exclude.
func BuildTargets(t *Transform, boxes []annotation.Box, classes *annotation.ClassTable, exclude map[int]bool) Targets {
	var out Targets
	size := t.Image()
	if size.Empty() {
		return out
	}
	x0, y0 := t.ToView(0, 0)
	x1, y1 := t.ToView(size.W-1, size.H-1)
	out.Xs = append(out.Xs, x0, x1)
	out.Ys = append(out.Ys, y0, y1)
	for i, b := range boxes {
		if exclude[i] || !classes.Visible(b.ClassID) {
			continue
		}
		l, tp := t.ToView(b.X1, b.Y1)
		r, bt := t.ToView(b.X2, b.Y2)
		out.Xs = append(out.Xs, l, r)
		out.Ys = append(out.Ys, tp, bt)
	}
	return out
}

// SnapScalar returns the nearest candidate within threshold, or v unchanged.
// The flag reports whether a snap happened.
func SnapScalar(v float64, candidates []float64, threshold float64) (float64, bool) {
	best, bestDist := v, math.Inf(1)
	for _, c := range candidates {
		if d := math.Abs(c - v); d <= threshold && d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// SnapSpan snaps whichever end of [lo, hi] is closer to a candidate and
// returns the shift to apply to the whole span and the line it snapped to.
func SnapSpan(lo, hi float64, candidates []float64, threshold float64) (shift, line float64, ok bool) {
	sl, okL := SnapScalar(lo, candidates, threshold)
	sh, okH := SnapScalar(hi, candidates, threshold)
	switch {
	case okL && (!okH || math.Abs(sl-lo) <= math.Abs(sh-hi)):
		return sl - lo, sl, true
	case okH:
		return sh - hi, sh, true
	}
	return 0, 0, false
}
