// Package capture grabs the screen so screenshots can be labeled alongside
// the images on disk.
package capture

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/vova616/screenshot"
)

// ErrEmptyCapture is returned when the screen grab produced no pixels.
var ErrEmptyCapture = errors.New("empty screen capture")

// Grab returns a screen capture of the current active monitor.
func Grab() (*image.RGBA, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, err
	}
	return img, nil
}

// GrabRect captures the given screen area.
func GrabRect(area image.Rectangle) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(area)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// RegionGrabber returns a grab function that captures region() when it is
// set and the whole screen otherwise.
func RegionGrabber(region func() *image.Rectangle) func() (*image.RGBA, error) {
	return func() (*image.RGBA, error) {
		if region != nil {
			if r := region(); r != nil && !r.Empty() {
				return GrabRect(*r)
			}
		}
		return Grab()
	}
}

// Saver writes screen grabs as PNG files.
type Saver struct {
	Grab func() (*image.RGBA, error)
	Now  func() time.Time
}

// NewSaver returns a Saver using the real screen.
func NewSaver() *Saver { return &Saver{Grab: Grab, Now: time.Now} }

// Save grabs the screen and writes it into dir as screenshot_<timestamp>.png.
// It returns the written path.
func (s *Saver) Save(dir string) (string, error) {
	grab, now := s.Grab, s.Now
	if grab == nil {
		grab = Grab
	}
	if now == nil {
		now = time.Now
	}
	img, err := grab()
	if err != nil {
		return "", fmt.Errorf("capture screen: %w", err)
	}
	if img == nil || img.Bounds().Empty() {
		return "", ErrEmptyCapture
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("capture dir: %w", err)
	}
	name := "screenshot_" + now().Format("20060102_150405.000") + ".png"
	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("save screenshot: %w", err)
	}
	return path, nil
}
