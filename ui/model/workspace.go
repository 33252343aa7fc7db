package model

import (
	"path/filepath"
	"slices"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

// Workspace is the working set of images and their in-memory annotations.
// The zero value is an empty workspace. Not safe for concurrent use; the
// inference worker reaches it only through the presenter drain.
type Workspace struct {
	dir     string
	paths   []string
	current int
	boxes   map[string]annotation.Snapshot
	dirty   bool
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace { return &Workspace{current: -1} }

// SetPaths replaces the working set. dir is where labels live beside; it
// defaults to the directory of the first path.
func (w *Workspace) SetPaths(dir string, paths []string) {
	if w == nil {
		return
	}
	if dir == "" && len(paths) > 0 {
		dir = filepath.Dir(paths[0])
	}
	w.dir = dir
	w.paths = slices.Clone(paths)
	w.boxes = make(map[string]annotation.Snapshot, len(paths))
	w.current = -1
	w.dirty = false
}

// Dir is the image directory of the working set.
func (w *Workspace) Dir() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// Paths returns a copy of the working set in navigation order.
func (w *Workspace) Paths() []string {
	if w == nil {
		return nil
	}
	return slices.Clone(w.paths)
}

func (w *Workspace) Len() int {
	if w == nil {
		return 0
	}
	return len(w.paths)
}

// Index is the position of the open image, or -1.
func (w *Workspace) Index() int {
	if w == nil {
		return -1
	}
	return w.current
}

// Current returns the open image path.
func (w *Workspace) Current() (string, bool) {
	if w == nil || w.current < 0 || w.current >= len(w.paths) {
		return "", false
	}
	return w.paths[w.current], true
}

// SetIndex moves to image i. Out of range indices are rejected.
func (w *Workspace) SetIndex(i int) bool {
	if w == nil || i < 0 || i >= len(w.paths) {
		return false
	}
	w.current = i
	return true
}

// IndexOf returns the position of path in the working set.
func (w *Workspace) IndexOf(path string) int {
	if w == nil {
		return -1
	}
	return slices.Index(w.paths, path)
}

// Add appends path unless it is already present and returns its index.
func (w *Workspace) Add(path string) int {
	if w == nil {
		return -1
	}
	if i := slices.Index(w.paths, path); i >= 0 {
		return i
	}
	if w.boxes == nil {
		w.boxes = make(map[string]annotation.Snapshot)
	}
	if w.dir == "" {
		w.dir = filepath.Dir(path)
	}
	w.paths = append(w.paths, path)
	return len(w.paths) - 1
}

// Remember stores the annotations of path.
func (w *Workspace) Remember(path string, snap annotation.Snapshot) {
	if w == nil || path == "" {
		return
	}
	if w.boxes == nil {
		w.boxes = make(map[string]annotation.Snapshot)
	}
	w.boxes[path] = snap.Clone()
}

// Annotations returns the remembered annotations of path. ok is false when
// the image has not been visited or scanned yet.
func (w *Workspace) Annotations(path string) (annotation.Snapshot, bool) {
	if w == nil {
		return nil, false
	}
	s, ok := w.boxes[path]
	return s.Clone(), ok
}

// Remembered returns a copy of every stored snapshot.
func (w *Workspace) Remembered() map[string]annotation.Snapshot {
	if w == nil {
		return nil
	}
	out := make(map[string]annotation.Snapshot, len(w.boxes))
	for p, s := range w.boxes {
		out[p] = s.Clone()
	}
	return out
}

// Dirty reports unsaved edits on the open image.
func (w *Workspace) Dirty() bool {
	if w == nil {
		return false
	}
	return w.dirty
}

func (w *Workspace) SetDirty(b bool) {
	if w == nil {
		return
	}
	w.dirty = b
}
