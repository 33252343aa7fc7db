package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"

	"github.com/soocke/fastlabel-go/ui/theme"
)

// SessionStats shows the time spent on the open image, the session total and
// how many images were visited.
type SessionStats interface {
	SetSession(onImage, total time.Duration, visited int)
}

type sessionStats struct {
	imageLbl   *TLabelWidget
	totalLbl   *TLabelWidget
	visitedLbl *TLabelWidget
	last       string
}

// NewSessionStats creates the three labels in one row of parent starting at
// startCol.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{
		imageLbl:   TLabel(Style(theme.StyleInfoLabel), Txt("Image: 00:00")),
		totalLbl:   TLabel(Style(theme.StyleInfoLabel), Txt("Total: 00:00")),
		visitedLbl: TLabel(Style(theme.StyleInfoLabel), Txt("Visited: 0")),
	}
	for i, w := range []*TLabelWidget{s.imageLbl, s.totalLbl, s.visitedLbl} {
		Grid(w, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
	}
	return s
}

func (s *sessionStats) SetSession(onImage, total time.Duration, visited int) {
	if s == nil || s.imageLbl == nil {
		return
	}
	key := fmt.Sprintf("%s|%s|%d", clock(onImage), clock(total), visited)
	if key == s.last {
		return
	}
	s.last = key
	s.imageLbl.Configure(Txt("Image: " + clock(onImage)))
	s.totalLbl.Configure(Txt("Total: " + clock(total)))
	s.visitedLbl.Configure(Txt(fmt.Sprintf("Visited: %d", visited)))
}

// clock formats d as mm:ss, or h:mm:ss past an hour.
func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	h, m, sec := seconds/3600, (seconds/60)%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
