package input

import (
	"testing"

	"github.com/soocke/fastlabel-go/domain/interaction"
)

func TestHeldModifiers(t *testing.T) {
	var h Held
	if !h.Press("Shift_L") || !h.Press("Alt_R") {
		t.Fatalf("modifier keys must be recognised")
	}
	if h.Press("a") {
		t.Fatalf("letters are not modifiers")
	}
	m := h.Modifiers()
	if !m.Has(interaction.ModMultiSelect) || !m.Has(interaction.ModAspectLock) || m.Has(interaction.ModPan) {
		t.Fatalf("unexpected modifiers %b", m)
	}
	h.Press("Control_L")
	if m := h.Modifiers(); !m.Has(interaction.ModPan) || !m.Has(interaction.ModSnap) {
		t.Fatalf("control must pan and snap, got %b", m)
	}
	h.Release("Shift_L")
	if h.Modifiers().Has(interaction.ModMultiSelect) {
		t.Fatalf("released shift still held")
	}
	h.Reset()
	if h.Modifiers() != 0 {
		t.Fatalf("reset must clear, got %b", h.Modifiers())
	}
}

func TestResolve(t *testing.T) {
	ctrl := &Held{}
	ctrl.Press("Control_L")
	ctrlShift := &Held{}
	ctrlShift.Press("Control_R")
	ctrlShift.Press("Shift_L")

	cases := []struct {
		key   string
		held  *Held
		want  Command
		digit int
	}{
		{"z", ctrl, CmdUndo, 0},
		{"Z", ctrlShift, CmdRedo, 0},
		{"y", ctrl, CmdRedo, 0},
		{"c", ctrl, CmdCopy, 0},
		{"v", ctrl, CmdPaste, 0},
		{"s", ctrl, CmdSave, 0},
		{"3", ctrl, CmdNone, 0},
		{"3", nil, CmdHotkey, 3},
		{"KP_7", nil, CmdHotkey, 7},
		{"Delete", nil, CmdDelete, 0},
		{"Escape", nil, CmdEscape, 0},
		{"Left", nil, CmdNudgeLeft, 0},
		{"plus", nil, CmdZoomIn, 0},
		{"minus", nil, CmdZoomOut, 0},
		{"f", nil, CmdFit, 0},
		{"n", nil, CmdNext, 0},
		{"Prior", nil, CmdPrev, 0},
		{"q", nil, CmdNone, 0},
	}
	for _, tc := range cases {
		got, d := Resolve(tc.key, tc.held)
		if got != tc.want || d != tc.digit {
			t.Fatalf("Resolve(%q): got %v/%d want %v/%d", tc.key, got, d, tc.want, tc.digit)
		}
	}
}

func TestNudgeAndWheel(t *testing.T) {
	if dx, dy := Nudge(CmdNudgeUp); dx != 0 || dy != -1 {
		t.Fatalf("nudge up: %d,%d", dx, dy)
	}
	if dx, dy := Nudge(CmdSave); dx != 0 || dy != 0 {
		t.Fatalf("non-nudge must be zero: %d,%d", dx, dy)
	}
	for delta, want := range map[int]int{0: 0, 120: 1, -240: -2, 3: 1, -1: -1} {
		if got := WheelNotches(delta); got != want {
			t.Fatalf("WheelNotches(%d)=%d want %d", delta, got, want)
		}
	}
}
