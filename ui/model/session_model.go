package model

import (
	"time"
)

// SessionModel measures labeling time: how long the current image has been
// open and the total time spent with any image open. Presenters poll Values.
// The zero value is ready to use.
type SessionModel struct {
	path     string
	openedAt time.Time
	onImage  time.Duration
	total    time.Duration
	lastTick time.Time
	visited  map[string]bool
}

func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick advances the clocks. path is the open image or "" when none.
func (m *SessionModel) OnTick(path string, now time.Time) {
	if m == nil {
		return
	}
	if m.path != "" && !m.lastTick.IsZero() {
		m.total += now.Sub(m.lastTick)
	}
	if path != m.path {
		m.path = path
		m.openedAt = now
		if path != "" {
			if m.visited == nil {
				m.visited = make(map[string]bool)
			}
			m.visited[path] = true
		}
	}
	m.onImage = 0
	if path != "" {
		m.onImage = now.Sub(m.openedAt)
	}
	m.lastTick = now
}

// Values returns the time on the current image and the accumulated total.
func (m *SessionModel) Values() (onImage, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	return m.onImage, m.total
}

// Visited is the number of distinct images opened so far.
func (m *SessionModel) Visited() int {
	if m == nil {
		return 0
	}
	return len(m.visited)
}
