package model

import (
	"sync/atomic"
)

// InferenceModel tracks scan progress for display. The zero value is idle and
// usable. Counters are atomic because the headless runner and the UI tick may
// read them from different goroutines.
type InferenceModel struct {
	scanning atomic.Bool
	total    atomic.Int64
	done     atomic.Int64
	failed   atomic.Int64
	boxes    atomic.Int64
}

// Scanning reports whether a batch run is in progress.
func (m *InferenceModel) Scanning() bool {
	if m == nil {
		return false
	}
	return m.scanning.Load()
}

// Begin resets the counters for a run over total images.
func (m *InferenceModel) Begin(total int) {
	if m == nil {
		return
	}
	m.total.Store(int64(total))
	m.done.Store(0)
	m.failed.Store(0)
	m.boxes.Store(0)
	m.scanning.Store(true)
}

// Image records one processed image.
func (m *InferenceModel) Image(boxes int) {
	if m == nil {
		return
	}
	m.done.Add(1)
	m.boxes.Add(int64(boxes))
}

// Failed records one image that could not be processed.
func (m *InferenceModel) Failed() {
	if m == nil {
		return
	}
	m.failed.Add(1)
}

// End marks the run finished.
func (m *InferenceModel) End() {
	if m == nil {
		return
	}
	m.scanning.Store(false)
}

// Progress returns processed, failed, total and box counts.
func (m *InferenceModel) Progress() (done, failed, total, boxes int) {
	if m == nil {
		return 0, 0, 0, 0
	}
	return int(m.done.Load()), int(m.failed.Load()), int(m.total.Load()), int(m.boxes.Load())
}
