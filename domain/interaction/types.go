package interaction

import (
	"github.com/soocke/fastlabel-go/domain/annotation"
	"github.com/soocke/fastlabel-go/domain/viewport"
)

// Mode is the pointer gesture currently in progress.
type Mode int

const (
	ModeIdle Mode = iota
	ModeCreating
	ModeMovingGroup
	ModeResizing
	ModeMarqueeSelecting
	ModePanning
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "Idle"
	case ModeCreating:
		return "Creating"
	case ModeMovingGroup:
		return "MovingGroup"
	case ModeResizing:
		return "Resizing"
	case ModeMarqueeSelecting:
		return "MarqueeSelecting"
	case ModePanning:
		return "Panning"
	default:
		return "Unknown"
	}
}

// Modifiers is the set of held modifier keys relevant to a pointer event.
type Modifiers uint8

const (
	// ModMultiSelect adds to the selection or starts a marquee.
	ModMultiSelect Modifiers = 1 << iota
	// ModPan drags the view instead of drawing.
	ModPan
	// ModAspectLock constrains creation and corner resizes to squares.
	ModAspectLock
	// ModSnap aligns dragged edges to nearby targets.
	ModSnap
)

func (m Modifiers) Has(f Modifiers) bool { return m&f != 0 }

// Pointer is a pointer event in view coordinates.
type Pointer struct {
	X, Y float64
	Mods Modifiers
}

// gesture is the payload of a non-idle mode. Exactly one gesture is active
// at a time; nil means idle.
type gesture interface{ mode() Mode }

type creatingGesture struct {
	startX, startY int
	curX, curY     int
	square         bool
}

type movingGesture struct {
	startX, startY int
	indices        []int
	start          []annotation.Box
}

type resizingGesture struct {
	index  int
	handle annotation.Handle
	start  annotation.Box
}

type marqueeGesture struct {
	startX, startY int
	curX, curY     int
}

type panningGesture struct {
	startVX, startVY     float64
	startOffX, startOffY float64
}

func (*creatingGesture) mode() Mode { return ModeCreating }
func (*movingGesture) mode() Mode   { return ModeMovingGroup }
func (*resizingGesture) mode() Mode { return ModeResizing }
func (*marqueeGesture) mode() Mode  { return ModeMarqueeSelecting }
func (*panningGesture) mode() Mode  { return ModePanning }

// Guides are the snap lines to render, in view coordinates.
type Guides struct {
	Xs []float64
	Ys []float64
}

func (g Guides) Empty() bool { return len(g.Xs) == 0 && len(g.Ys) == 0 }

// Options tunes editing behaviour.
type Options struct {
	MinSide         int
	HandleSize      float64
	SnapThreshold   float64
	PasteNudge      int
	HistoryCapacity int
	MinZoom         float64
	MaxZoom         float64
	ZoomStep        float64
	PanPerNotch     float64
	Duplicates      annotation.DuplicateOptions
}

// DefaultOptions mirrors the editor defaults.
func DefaultOptions() Options {
	return Options{
		MinSide:         annotation.DefaultMinSide,
		HandleSize:      8,
		SnapThreshold:   viewport.DefaultSnapThreshold,
		PasteNudge:      8,
		HistoryCapacity: annotation.DefaultHistoryCapacity,
		MinZoom:         viewport.DefaultMinZoom,
		MaxZoom:         viewport.DefaultMaxZoom,
		ZoomStep:        viewport.DefaultZoomStep,
		PanPerNotch:     30,
		Duplicates:      annotation.DefaultDuplicateOptions(),
	}
}

// Callbacks connect the controller to its owner. All fields are optional.
type Callbacks struct {
	// Status receives user-facing messages.
	Status func(msg string)
	// Changed fires after every committed mutation of boxes or classes.
	Changed func()
	// Confirm asks before destructive operations; nil means yes.
	Confirm func(title, message string) bool
}
