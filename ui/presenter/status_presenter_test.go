package presenter

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestStatusPresenterShowsLatest(t *testing.T) {
	v := &statusView{}
	p := NewStatusPresenter(v, 0)
	p.Post("first")
	p.Postf("second %d", 2)
	p.Tick(time.Now())
	if len(v.texts) != 1 || v.last() != "second 2" {
		t.Fatalf("expected only the latest message, got %v", v.texts)
	}
	p.Post("second 2")
	p.Tick(time.Now())
	if len(v.texts) != 1 {
		t.Fatalf("unchanged message must not be re-sent: %v", v.texts)
	}
	p.Tick(time.Now())
	if p.Latest() != "second 2" {
		t.Fatalf("unexpected latest %q", p.Latest())
	}
}

func TestShorten(t *testing.T) {
	if got := Shorten("short", 110); got != "short" {
		t.Fatalf("short strings pass through, got %q", got)
	}
	long := strings.Repeat("a", 60) + strings.Repeat("b", 60)
	got := Shorten(long, 110)
	if !strings.HasPrefix(got, strings.Repeat("a", 49)+" … ") || !strings.HasSuffix(got, " … "+strings.Repeat("b", 49)) {
		t.Fatalf("unexpected shortening %q", got)
	}
	if utf8.RuneCountInString(got) > 110 {
		t.Fatalf("shortened string too long: %d", utf8.RuneCountInString(got))
	}
}
