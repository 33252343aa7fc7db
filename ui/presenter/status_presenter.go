package presenter

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// DefaultStatusMaxChars bounds the status line length.
const DefaultStatusMaxChars = 110

// StatusView sets the status line in the view.
type StatusView interface{ SetStatus(string) }

// StatusPresenter queues status messages and shows the most recent one on
// the next Tick.
type StatusPresenter struct {
	view     StatusView
	maxChars int
	latest   string
	pending  []string
}

func NewStatusPresenter(view StatusView, maxChars int) *StatusPresenter {
	if maxChars <= 0 {
		maxChars = DefaultStatusMaxChars
	}
	return &StatusPresenter{view: view, maxChars: maxChars}
}

// Post queues msg. Only the latest queued message is reflected.
func (p *StatusPresenter) Post(msg string) {
	if p == nil {
		return
	}
	p.pending = append(p.pending, msg)
}

// Postf formats and queues a message.
func (p *StatusPresenter) Postf(format string, args ...any) {
	p.Post(fmt.Sprintf(format, args...))
}

// Latest returns the last message shown.
func (p *StatusPresenter) Latest() string {
	if p == nil {
		return ""
	}
	return p.latest
}

// Tick flushes the pending queue to the view.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.view == nil || len(p.pending) == 0 {
		return
	}
	last := Shorten(p.pending[len(p.pending)-1], p.maxChars)
	p.pending = p.pending[:0]
	if last != p.latest {
		p.latest = last
		p.view.SetStatus(last)
	}
}

// Shorten keeps the head and tail of s, 45% of limit each, joined by an
// ellipsis when s is longer than limit runes.
func Shorten(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	keep := int(float64(limit) * 0.45)
	return string(r[:keep]) + " … " + string(r[len(r)-keep:])
}
