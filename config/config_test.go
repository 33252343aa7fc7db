package config

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fastlabel.json")
	cfg := DefaultConfig()
	cfg.Model = "llava:13b"
	cfg.SnapThresholdPx = 12
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if cfg == nil || cfg.MaxHistory != 150 {
		t.Fatalf("expected defaults alongside error, got %+v", cfg)
	}
}

func TestValidateClamps(t *testing.T) {
	cfg := &Config{MinZoom: 2, MaxZoom: 1, ZoomStep: 0.5, ConfThreshold: 3, DuplicateIoU: -1}
	_ = cfg.Validate()
	if cfg.MaxZoom < cfg.MinZoom {
		t.Fatalf("max zoom below min: %v < %v", cfg.MaxZoom, cfg.MinZoom)
	}
	if cfg.ZoomStep != 1.15 || cfg.ConfThreshold != 0.25 || cfg.DuplicateIoU != 0.90 {
		t.Fatalf("unexpected clamped values %+v", cfg)
	}
	if cfg.LabelDir != "yoloLabels" || cfg.StatusMaxChars != 110 || cfg.MaxHistory != 150 {
		t.Fatalf("defaults not filled: %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvOllamaURL, "http://gpu-box:11434")
	t.Setenv(EnvModel, "llava")
	t.Setenv(EnvDebug, "true")
	t.Setenv(EnvBatchSize, "not-a-number")
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	if cfg.OllamaURL != "http://gpu-box:11434" || cfg.Model != "llava" || !cfg.Debug {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.BatchSize != 8 {
		t.Fatalf("bad int must be ignored, got %d", cfg.BatchSize)
	}
}

func TestCaptureRegion(t *testing.T) {
	cfg := DefaultConfig()
	if r := cfg.CaptureRegion(); r != nil {
		t.Fatalf("default must capture the whole screen, got %v", r)
	}
	cfg.SetCaptureRegion(image.Rect(10, 20, 110, 70))
	r := cfg.CaptureRegion()
	if r == nil || *r != image.Rect(10, 20, 110, 70) {
		t.Fatalf("unexpected region %v", r)
	}
	cfg.SetCaptureRegion(image.Rectangle{})
	if cfg.CaptureRegion() != nil {
		t.Fatalf("empty rect must clear the region")
	}
}
