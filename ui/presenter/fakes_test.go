package presenter

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xff})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func imageDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		writePNG(t, filepath.Join(dir, n), 100, 100)
	}
	return dir
}

type statusView struct{ texts []string }

func (v *statusView) SetStatus(s string) { v.texts = append(v.texts, s) }

func (v *statusView) last() string {
	if len(v.texts) == 0 {
		return ""
	}
	return v.texts[len(v.texts)-1]
}

type editorView struct {
	title   string
	nav     []NavRow
	classes []ClassRow
	info    string
}

func (v *editorView) SetTitle(s string)          { v.title = s }
func (v *editorView) SetNavigator(rows []NavRow) { v.nav = rows }
func (v *editorView) SetClasses(rows []ClassRow) { v.classes = rows }
func (v *editorView) SetInfo(s string)           { v.info = s }

type canvasView struct {
	mu      sync.Mutex
	frames  int
	lastImg image.Image
	loupes  []image.Image
}

func (v *canvasView) ShowCanvas(img image.Image) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frames++
	v.lastImg = img
}

func (v *canvasView) ShowLoupe(img image.Image) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loupes = append(v.loupes, img)
}

func (v *canvasView) counts() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames, len(v.loupes)
}
