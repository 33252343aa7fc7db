package presenter

import (
	"time"

	"github.com/soocke/fastlabel-go/ui/model"
)

// CurrentPath reports the open image.
type CurrentPath interface{ Current() (string, bool) }

// SessionView displays the time spent on the open image and in total.
type SessionView interface {
	SetSession(onImage, total time.Duration, visited int)
}

// SessionPresenter advances the session clocks and pushes them to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	cur  CurrentPath
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, cur CurrentPath, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, cur: cur, view: view}
}

// Tick updates the model with the open image and refreshes the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.cur == nil || p.view == nil {
		return
	}
	path, _ := p.cur.Current()
	p.sess.OnTick(path, now)
	on, total := p.sess.Values()
	p.view.SetSession(on, total, p.sess.Visited())
}
