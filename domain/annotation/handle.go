package annotation

// Handle identifies one of the eight resize grips around a box.
type Handle int

const (
	HandleNone Handle = iota
	HandleNW
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
)

// Handles lists the grips in hit-test order.
var Handles = [...]Handle{HandleNW, HandleN, HandleNE, HandleW, HandleE, HandleSW, HandleS, HandleSE}

func (h Handle) String() string {
	switch h {
	case HandleNW:
		return "nw"
	case HandleN:
		return "n"
	case HandleNE:
		return "ne"
	case HandleE:
		return "e"
	case HandleSE:
		return "se"
	case HandleS:
		return "s"
	case HandleSW:
		return "sw"
	case HandleW:
		return "w"
	default:
		return "none"
	}
}

// IsCorner reports whether the handle moves two edges.
func (h Handle) IsCorner() bool {
	switch h {
	case HandleNW, HandleNE, HandleSE, HandleSW:
		return true
	}
	return false
}

// HandleCenters returns the grip centres for a rectangle given in any
// coordinate space (x1,y1)-(x2,y2).
func HandleCenters(x1, y1, x2, y2 float64) map[Handle][2]float64 {
	mx, my := (x1+x2)/2, (y1+y2)/2
	return map[Handle][2]float64{
		HandleNW: {x1, y1}, HandleN: {mx, y1}, HandleNE: {x2, y1},
		HandleW: {x1, my}, HandleE: {x2, my},
		HandleSW: {x1, y2}, HandleS: {mx, y2}, HandleSE: {x2, y2},
	}
}
