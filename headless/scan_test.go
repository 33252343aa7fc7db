package headless

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soocke/fastlabel-go/domain/inference"
	"github.com/soocke/fastlabel-go/domain/labels"
	"github.com/soocke/fastlabel-go/ui/images"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 100, 100))); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func worker(factory inference.DetectorFactory) *inference.BatchWorker {
	return inference.NewBatchWorker(discardLogger(), factory, images.Open, inference.Options{BatchSize: 2})
}

func boxes(context.Context) (inference.Detector, error) {
	return inference.DetectorFunc(func(context.Context, image.Image) ([]inference.Detection, error) {
		return []inference.Detection{{ClassID: -1, Label: "dog", X1: 10, Y1: 10, X2: 50, Y2: 50, Confidence: 0.8}}, nil
	}), nil
}

func TestRunWritesLabelsAndSummary(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.png", "b.png", "c.png"} {
		writePNG(t, filepath.Join(dir, n))
	}
	store := labels.NewStore(filepath.Join(t.TempDir(), "labels"))
	var out bytes.Buffer
	s := &Scanner{Logger: discardLogger(), Runner: worker(boxes), Store: store, Out: &out}

	done, err := s.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if done.Processed != 3 || done.TotalBoxes != 3 {
		t.Fatalf("unexpected done message %+v", done)
	}
	for _, n := range []string{"a.png", "b.png", "c.png"} {
		if !store.Exists(filepath.Join(dir, n)) {
			t.Fatalf("missing labels for %s", n)
		}
	}
	ds, ok, err := store.ReadDataset()
	if err != nil || !ok {
		t.Fatalf("dataset not written: %v", err)
	}
	if _, found := ds.Classes().FindByName("dog"); !found {
		t.Fatalf("detector class missing from dataset: %+v", ds)
	}
	if !strings.HasPrefix(out.String(), "Scan All done. Files: 3, Boxes: 3") {
		t.Fatalf("unexpected summary %q", out.String())
	}
}

func TestRunEmptyFolder(t *testing.T) {
	s := &Scanner{Runner: worker(boxes), Store: labels.NewStore(t.TempDir())}
	if _, err := s.Run(context.Background(), t.TempDir()); !errors.Is(err, ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
}

func TestRunModelLoadFailure(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"))
	failing := func(context.Context) (inference.Detector, error) { return nil, errors.New("no model") }
	s := &Scanner{Logger: discardLogger(), Runner: worker(failing), Store: labels.NewStore(t.TempDir())}
	m, err := s.Run(context.Background(), dir)
	if err == nil || m.Kind != inference.MsgError {
		t.Fatalf("expected terminal error, got %v %+v", err, m)
	}
}
