package detector

import (
	"errors"
	"image"
	"math"
	"path/filepath"
	"testing"

	"github.com/soocke/fastlabel-go/config"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestParseDetectionsNormalized(t *testing.T) {
	raw := "```json\n{\"objects\":[{\"label\":\" car \",\"box\":[0.1,0.2,0.5,0.6],\"confidence\":0.8},]}\n```"
	dets, err := ParseDetections(raw, 512, 256, 1000, 500)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(dets) != 1 {
		t.Fatalf("expected one detection, got %+v", dets)
	}
	d := dets[0]
	if d.Label != "car" || d.ClassID != -1 || !near(d.Confidence, 0.8) {
		t.Fatalf("unexpected detection %+v", d)
	}
	if !near(d.X1, 100) || !near(d.Y1, 100) || !near(d.X2, 500) || !near(d.Y2, 300) {
		t.Fatalf("unexpected geometry %+v", d)
	}
}

func TestParseDetectionsPixels(t *testing.T) {
	raw := `Here you go: {"objects":[
		// the dog
		{"label":"dog","class_id":3,"box":[50,25,100,50]},
		{"label":"bad","box":[1,2,3]}
	]}`
	dets, err := ParseDetections(raw, 200, 100, 400, 200)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(dets) != 1 {
		t.Fatalf("expected one detection, got %+v", dets)
	}
	d := dets[0]
	if d.ClassID != 3 || !near(d.Confidence, 1) || !near(d.X1, 100) || !near(d.Y2, 100) {
		t.Fatalf("unexpected detection %+v", d)
	}
}

func TestParseDetectionsEmpty(t *testing.T) {
	if _, err := ParseDetections("I can't see anything", 1, 1, 1, 1); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if _, err := ParseDetections("{not json}", 1, 1, 1, 1); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewOllamaRejectsBadURL(t *testing.T) {
	if _, err := NewOllama(nil, Options{URL: "localhost"}); err == nil {
		t.Fatalf("expected error for url without scheme")
	}
	d, err := NewOllama(nil, Options{URL: "http://127.0.0.1:11434/api/chat"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if d.model != DefaultModel || d.maxDim != DefaultMaxDim {
		t.Fatalf("defaults not applied: %+v", d)
	}
}

func TestNewWorkerFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PromptFile = filepath.Join(t.TempDir(), "missing.txt")
	w := NewWorker(cfg, nil, func(string) (image.Image, error) { return nil, nil })
	if w == nil || w.Running() {
		t.Fatalf("expected an idle worker")
	}
}
