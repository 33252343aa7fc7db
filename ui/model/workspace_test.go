package model

import (
	"testing"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

func TestWorkspaceNavigationBounds(t *testing.T) {
	w := NewWorkspace()
	if _, ok := w.Current(); ok {
		t.Fatalf("empty workspace has no current image")
	}
	w.SetPaths("", []string{"/data/a.png", "/data/b.png"})
	if w.Dir() != "/data" {
		t.Fatalf("dir must default to the first image's directory, got %q", w.Dir())
	}
	if w.SetIndex(2) || w.SetIndex(-1) {
		t.Fatalf("out of range index accepted")
	}
	if !w.SetIndex(1) {
		t.Fatalf("valid index rejected")
	}
	if p, _ := w.Current(); p != "/data/b.png" {
		t.Fatalf("unexpected current %q", p)
	}
	if i := w.Add("/data/a.png"); i != 0 || w.Len() != 2 {
		t.Fatalf("re-adding must not duplicate: i=%d len=%d", i, w.Len())
	}
	if i := w.Add("/data/shot.png"); i != 2 {
		t.Fatalf("expected appended index 2, got %d", i)
	}
}

func TestWorkspaceRememberIsolated(t *testing.T) {
	w := NewWorkspace()
	w.SetPaths("/d", []string{"/d/a.png"})
	snap := annotation.Snapshot{{X1: 1, Y1: 1, X2: 10, Y2: 10, ClassID: 0}}
	w.Remember("/d/a.png", snap)
	snap[0].X1 = 5
	got, ok := w.Annotations("/d/a.png")
	if !ok || got[0].X1 != 1 {
		t.Fatalf("stored snapshot must be a copy: %v ok=%v", got, ok)
	}
	got[0].X1 = 7
	again, _ := w.Annotations("/d/a.png")
	if again[0].X1 != 1 {
		t.Fatalf("returned snapshot must be a copy: %v", again)
	}
	if _, ok := w.Annotations("/d/missing.png"); ok {
		t.Fatalf("unvisited image reported as remembered")
	}
	w.SetPaths("/e", nil)
	if len(w.Remembered()) != 0 {
		t.Fatalf("SetPaths must drop remembered annotations")
	}
}

func TestInferenceModelProgress(t *testing.T) {
	var m InferenceModel
	m.Begin(3)
	m.Image(2)
	m.Failed()
	m.Image(1)
	done, failed, total, boxes := m.Progress()
	if !m.Scanning() || done != 2 || failed != 1 || total != 3 || boxes != 3 {
		t.Fatalf("unexpected progress done=%d failed=%d total=%d boxes=%d", done, failed, total, boxes)
	}
	m.End()
	if m.Scanning() {
		t.Fatalf("scan must end")
	}
}
