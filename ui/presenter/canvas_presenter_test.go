package presenter

import (
	"image"
	"testing"

	"github.com/soocke/fastlabel-go/ui/images"
)

func TestCanvasPresenterRendersAndLoupe(t *testing.T) {
	v := &canvasView{}
	p := NewCanvasPresenter(v, 64, discardLogger())
	defer p.Close()
	src := image.NewRGBA(image.Rect(0, 0, 50, 50))

	p.Request(images.Scene{ViewW: 40, ViewH: 30}, image.Rect(10, 10, 20, 20), src)
	waitFor(t, func() bool {
		p.Tick()
		frames, loupes := v.counts()
		return frames >= 1 && loupes >= 1
	})
	if v.lastImg.Bounds().Dx() != 40 || v.lastImg.Bounds().Dy() != 30 {
		t.Fatalf("unexpected frame bounds %v", v.lastImg.Bounds())
	}
	if v.loupes[0] == nil || v.loupes[0].Bounds().Dx() != 64 {
		t.Fatalf("expected a 64px loupe, got %v", v.loupes[0])
	}

	// Same loupe again: no new loupe update.
	p.Request(images.Scene{ViewW: 40, ViewH: 30}, image.Rect(10, 10, 20, 20), src)
	waitFor(t, func() bool {
		p.Tick()
		return !p.Pending()
	})
	if _, loupes := v.counts(); loupes != 1 {
		t.Fatalf("unchanged loupe must not be re-sent, got %d updates", loupes)
	}

	p.Request(images.Scene{ViewW: 40, ViewH: 30}, image.Rectangle{}, src)
	waitFor(t, func() bool {
		p.Tick()
		_, loupes := v.counts()
		return loupes == 2
	})
	if v.loupes[1] != nil {
		t.Fatalf("empty rect must clear the loupe")
	}
}

func TestCanvasPresenterStats(t *testing.T) {
	v := &canvasView{}
	p := NewCanvasPresenter(v, 32, discardLogger())
	defer p.Close()
	for i := 0; i < 3; i++ {
		p.Request(images.Scene{ViewW: 20, ViewH: 20}, image.Rectangle{}, nil)
		waitFor(t, func() bool {
			p.Tick()
			return !p.Pending()
		})
	}
	st := p.Stats()
	if st.Frames == 0 || st.Frames+st.Dropped < 3 {
		t.Fatalf("unexpected stats %+v", st)
	}
}
