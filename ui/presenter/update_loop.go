package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback. The
// zero value is usable (methods are nil-safe).
type Loop struct {
	Inference *InferencePresenter
	Editor    *EditorPresenter
	Canvas    *CanvasPresenter
	Session   *SessionPresenter
	Status    *StatusPresenter
	Schedule  func()
}

func NewLoop(inf *InferencePresenter, editor *EditorPresenter, canvas *CanvasPresenter, sess *SessionPresenter, status *StatusPresenter, schedule func()) *Loop {
	return &Loop{Inference: inf, Editor: editor, Canvas: canvas, Session: sess, Status: status, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// Worker results first so the frame rendered below already shows them.
	if l.Inference != nil {
		l.Inference.Tick(now)
	}
	if l.Editor != nil {
		l.Editor.Tick(now)
	}
	if l.Canvas != nil {
		l.Canvas.Tick()
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Status != nil {
		l.Status.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
