package inference

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func fakeLoader(path string) (image.Image, error) {
	if strings.HasPrefix(path, "bad") {
		return nil, errors.New("unreadable")
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 80)), nil
}

// oneBox reports a single labelled detection per image.
func oneBox() DetectorFactory {
	return func(context.Context) (Detector, error) {
		return DetectorFunc(func(context.Context, image.Image) ([]Detection, error) {
			return []Detection{{ClassID: 1, Label: "thing", X1: 10, Y1: 10, X2: 40, Y2: 40, Confidence: 0.9}}, nil
		}), nil
	}
}

func collect(t *testing.T, w *BatchWorker) []Message {
	t.Helper()
	var out []Message
	timeout := time.After(2 * time.Second)
	for {
		select {
		case m := <-w.Messages():
			out = append(out, m)
			if m.Kind == MsgDone || m.Kind == MsgError {
				waitFor(t, func() bool { return !w.Running() })
				return out
			}
		case <-timeout:
			t.Fatalf("run did not finish; got %d messages", len(out))
		}
	}
}

func TestBatchWorkerProtocol(t *testing.T) {
	w := NewBatchWorker(discardLogger(), oneBox(), fakeLoader, DefaultOptions())
	paths := []string{"a.png", "bad.png", "c.png"}
	run, err := w.Start(context.Background(), paths, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	msgs := collect(t, w)
	kinds := make([]string, len(msgs))
	for i, m := range msgs {
		kinds[i] = m.Kind.String()
		if m.Run != run {
			t.Fatalf("message %d has run %q want %q", i, m.Run, run)
		}
	}
	if got := strings.Join(kinds, ","); got != "start,image,warn,image,done" {
		t.Fatalf("unexpected sequence %s", got)
	}
	if msgs[0].Total != 3 || msgs[1].Path != "a.png" || msgs[3].Path != "c.png" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	done := msgs[len(msgs)-1]
	if done.Processed != 2 || done.Failed != 1 || done.TotalBoxes != 2 || done.Cancelled {
		t.Fatalf("unexpected done %+v", done)
	}
	if done.ClassNames[1] != "thing" {
		t.Fatalf("expected class name thing, got %v", done.ClassNames)
	}
	if img := msgs[1]; img.BoxCount != 1 || img.Size.W != 100 || len(img.ClassIDs) != 1 {
		t.Fatalf("unexpected image message %+v", img)
	}
}

func TestBatchWorkerModelLoadFailure(t *testing.T) {
	factory := func(context.Context) (Detector, error) { return nil, errors.New("no weights") }
	w := NewBatchWorker(discardLogger(), factory, fakeLoader, DefaultOptions())
	if _, err := w.Start(context.Background(), []string{"a.png"}, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	msgs := collect(t, w)
	last := msgs[len(msgs)-1]
	if last.Kind != MsgError || !strings.Contains(last.Text, "no weights") {
		t.Fatalf("expected terminal error, got %+v", last)
	}
}

func TestBatchWorkerCancelBetweenBatches(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	factory := func(context.Context) (Detector, error) {
		return DetectorFunc(func(context.Context, image.Image) ([]Detection, error) {
			if calls.Add(1) == 1 {
				<-release
			}
			return nil, nil
		}), nil
	}
	opts := DefaultOptions()
	opts.BatchSize = 4
	w := NewBatchWorker(discardLogger(), factory, fakeLoader, opts)
	paths := make([]string, 10)
	for i := range paths {
		paths[i] = fmt.Sprintf("img%02d.png", i)
	}
	if _, err := w.Start(context.Background(), paths, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, func() bool { return calls.Load() == 1 })
	w.Cancel()
	close(release)
	msgs := collect(t, w)
	done := msgs[len(msgs)-1]
	if done.Kind != MsgDone || !done.Cancelled || done.Processed != 4 {
		t.Fatalf("expected partial done after first batch, got %+v", done)
	}
}

func TestOneRunAtATime(t *testing.T) {
	release := make(chan struct{})
	factory := func(context.Context) (Detector, error) {
		return DetectorFunc(func(context.Context, image.Image) ([]Detection, error) {
			<-release
			return nil, nil
		}), nil
	}
	w := NewBatchWorker(discardLogger(), factory, fakeLoader, DefaultOptions())
	if _, err := w.Start(context.Background(), []string{"a.png"}, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := w.Start(context.Background(), []string{"b.png"}, nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for second batch, got %v", err)
	}
	if _, _, err := w.DetectOne(context.Background(), image.NewRGBA(image.Rect(0, 0, 10, 10)), nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy for single image, got %v", err)
	}
	close(release)
	collect(t, w)
	if w.Runs() != 1 {
		t.Fatalf("expected one run, got %d", w.Runs())
	}
}

func TestDetectOne(t *testing.T) {
	w := NewBatchWorker(discardLogger(), oneBox(), nil, DefaultOptions())
	snap, names, err := w.DetectOne(context.Background(), image.NewRGBA(image.Rect(0, 0, 100, 100)), map[int]string{1: "existing"})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(snap) != 1 || snap[0].X2 != 40 || snap[0].ClassID != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if names[1] != "thing" {
		t.Fatalf("unexpected names %v", names)
	}
	if w.Running() {
		t.Fatalf("worker must be idle after DetectOne")
	}
}

func TestDetectorPanicBecomesWarning(t *testing.T) {
	factory := func(context.Context) (Detector, error) {
		return DetectorFunc(func(context.Context, image.Image) ([]Detection, error) {
			panic("boom")
		}), nil
	}
	w := NewBatchWorker(discardLogger(), factory, fakeLoader, DefaultOptions())
	if _, err := w.Start(context.Background(), []string{"a.png"}, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	msgs := collect(t, w)
	if msgs[1].Kind != MsgWarn || msgs[2].Kind != MsgDone || msgs[2].Failed != 1 {
		t.Fatalf("expected warn then done, got %+v", msgs)
	}
}
