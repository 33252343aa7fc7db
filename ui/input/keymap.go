// Package input translates Tk key symbols into editor commands and tracks
// held modifier keys between pointer events.
package input

import (
	"strings"

	"github.com/soocke/fastlabel-go/domain/interaction"
)

// Held tracks modifier keys from KeyPress/KeyRelease events. Tk does not
// report modifier state on every binding we use, so the view keeps it here.
type Held struct {
	shift, ctrl, alt bool
}

// Press records a key press. It reports whether keysym was a modifier.
func (h *Held) Press(keysym string) bool { return h.set(keysym, true) }

// Release records a key release. It reports whether keysym was a modifier.
func (h *Held) Release(keysym string) bool { return h.set(keysym, false) }

// Reset clears all modifiers, e.g. when the window loses focus.
func (h *Held) Reset() { *h = Held{} }

func (h *Held) set(keysym string, down bool) bool {
	switch keysym {
	case "Shift_L", "Shift_R":
		h.shift = down
	case "Control_L", "Control_R":
		h.ctrl = down
	case "Alt_L", "Alt_R":
		h.alt = down
	default:
		return false
	}
	return true
}

// Ctrl reports whether a control key is held.
func (h *Held) Ctrl() bool { return h.ctrl }

// Modifiers maps held keys onto pointer modifiers: Shift adds to the
// selection, Control pans on empty canvas and snaps while dragging, Alt locks
// the aspect ratio.
func (h *Held) Modifiers() interaction.Modifiers {
	var m interaction.Modifiers
	if h.shift {
		m |= interaction.ModMultiSelect
	}
	if h.ctrl {
		m |= interaction.ModPan | interaction.ModSnap
	}
	if h.alt {
		m |= interaction.ModAspectLock
	}
	return m
}

// Command is a keyboard command.
type Command int

const (
	CmdNone Command = iota
	CmdUndo
	CmdRedo
	CmdCopy
	CmdPaste
	CmdSave
	CmdDelete
	CmdEscape
	CmdNudgeLeft
	CmdNudgeRight
	CmdNudgeUp
	CmdNudgeDown
	CmdZoomIn
	CmdZoomOut
	CmdFit
	CmdNext
	CmdPrev
	CmdHotkey
)

func (c Command) String() string {
	switch c {
	case CmdUndo:
		return "Undo"
	case CmdRedo:
		return "Redo"
	case CmdCopy:
		return "Copy"
	case CmdPaste:
		return "Paste"
	case CmdSave:
		return "Save"
	case CmdDelete:
		return "Delete"
	case CmdEscape:
		return "Escape"
	case CmdNudgeLeft, CmdNudgeRight, CmdNudgeUp, CmdNudgeDown:
		return "Nudge"
	case CmdZoomIn:
		return "ZoomIn"
	case CmdZoomOut:
		return "ZoomOut"
	case CmdFit:
		return "Fit"
	case CmdNext:
		return "Next"
	case CmdPrev:
		return "Prev"
	case CmdHotkey:
		return "Hotkey"
	default:
		return "None"
	}
}

// Resolve maps a key press to a command. For CmdHotkey the digit is returned
// as well. Keypad digits behave like the number row.
func Resolve(keysym string, h *Held) (Command, int) {
	ctrl := h != nil && h.ctrl
	shift := h != nil && h.shift
	if ctrl {
		switch strings.ToLower(keysym) {
		case "z":
			if shift {
				return CmdRedo, 0
			}
			return CmdUndo, 0
		case "y":
			return CmdRedo, 0
		case "c":
			return CmdCopy, 0
		case "v":
			return CmdPaste, 0
		case "s":
			return CmdSave, 0
		}
		return CmdNone, 0
	}
	if d, ok := digit(keysym); ok {
		return CmdHotkey, d
	}
	switch keysym {
	case "Delete", "BackSpace":
		return CmdDelete, 0
	case "Escape":
		return CmdEscape, 0
	case "Left":
		return CmdNudgeLeft, 0
	case "Right":
		return CmdNudgeRight, 0
	case "Up":
		return CmdNudgeUp, 0
	case "Down":
		return CmdNudgeDown, 0
	case "plus", "equal", "KP_Add":
		return CmdZoomIn, 0
	case "minus", "KP_Subtract":
		return CmdZoomOut, 0
	case "f", "F":
		return CmdFit, 0
	case "n", "Next":
		return CmdNext, 0
	case "p", "Prior":
		return CmdPrev, 0
	}
	return CmdNone, 0
}

func digit(keysym string) (int, bool) {
	k := strings.TrimPrefix(keysym, "KP_")
	if len(k) == 1 && k[0] >= '0' && k[0] <= '9' {
		return int(k[0] - '0'), true
	}
	return 0, false
}

// Nudge returns the pixel step of a nudge command.
func Nudge(c Command) (dx, dy int) {
	switch c {
	case CmdNudgeLeft:
		return -1, 0
	case CmdNudgeRight:
		return 1, 0
	case CmdNudgeUp:
		return 0, -1
	case CmdNudgeDown:
		return 0, 1
	}
	return 0, 0
}

// WheelNotches converts a MouseWheel delta into whole notches, at least one
// in the direction of the delta.
func WheelNotches(delta int) int {
	switch {
	case delta == 0:
		return 0
	case delta >= 120 || delta <= -120:
		return delta / 120
	case delta > 0:
		return 1
	default:
		return -1
	}
}
