package presenter

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type mockSaver struct {
	dirs []string
	path string
	err  error
}

func (s *mockSaver) Save(dir string) (string, error) {
	s.dirs = append(s.dirs, dir)
	return s.path, s.err
}

type mockAdder struct {
	added []string
	err   error
}

func (a *mockAdder) AddImage(path string) error {
	a.added = append(a.added, path)
	return a.err
}

func TestCapturePresenter_SavesAndAdds(t *testing.T) {
	view := &statusView{}
	status := NewStatusPresenter(view, 110)
	saver := &mockSaver{path: "/data/shot_1.png"}
	adder := &mockAdder{}
	p := NewCapturePresenter(saver, adder, status, func() string { return "/data" }, discardLogger())

	p.Capture()
	status.Tick(time.Now())
	if len(saver.dirs) != 1 || saver.dirs[0] != "/data" {
		t.Fatalf("saver dirs=%v", saver.dirs)
	}
	if len(adder.added) != 1 || adder.added[0] != "/data/shot_1.png" {
		t.Fatalf("added=%v", adder.added)
	}
	if !strings.Contains(view.last(), "shot_1.png") {
		t.Fatalf("status=%q", view.last())
	}
}

func TestCapturePresenter_DefaultDir(t *testing.T) {
	saver := &mockSaver{path: "x.png"}
	p := NewCapturePresenter(saver, &mockAdder{}, nil, func() string { return "" }, discardLogger())
	p.Capture()
	if len(saver.dirs) != 1 || saver.dirs[0] != "screenshots" {
		t.Fatalf("saver dirs=%v", saver.dirs)
	}
}

func TestCapturePresenter_SaveFailure(t *testing.T) {
	view := &statusView{}
	status := NewStatusPresenter(view, 110)
	saver := &mockSaver{err: errors.New("no display")}
	adder := &mockAdder{}
	p := NewCapturePresenter(saver, adder, status, nil, discardLogger())

	p.Capture()
	status.Tick(time.Now())
	if len(adder.added) != 0 {
		t.Fatalf("failed grab must not add images: %v", adder.added)
	}
	if !strings.Contains(view.last(), "no display") {
		t.Fatalf("status=%q", view.last())
	}
}

func TestCapturePresenter_NilSafe(t *testing.T) {
	var p *CapturePresenter
	p.Capture()
	NewCapturePresenter(nil, nil, nil, nil, nil).Capture()
}
