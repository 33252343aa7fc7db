package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectPromptEmbedded(t *testing.T) {
	if !strings.Contains(DetectPrompt, `"objects"`) {
		t.Fatalf("embedded prompt must describe the reply shape, got %q", DetectPrompt)
	}
}

func TestLoadPrompt(t *testing.T) {
	got, err := LoadPrompt("")
	if err != nil || got != DetectPrompt {
		t.Fatalf("empty path must yield the default: %q %v", got, err)
	}
	path := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(path, []byte("find cats"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, err := LoadPrompt(path); err != nil || got != "find cats" {
		t.Fatalf("unexpected prompt %q %v", got, err)
	}
	if got, err := LoadPrompt(filepath.Join(t.TempDir(), "missing.txt")); err == nil || got != DetectPrompt {
		t.Fatalf("missing file must fall back with an error: %q %v", got, err)
	}
}
