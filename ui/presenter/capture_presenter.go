package presenter

import (
	"log/slog"
	"path/filepath"
)

// ScreenSaver writes a screen grab into a directory.
type ScreenSaver interface {
	Save(dir string) (string, error)
}

// ImageAdder adds a new image to the working set and opens it.
type ImageAdder interface {
	AddImage(path string) error
}

// CapturePresenter turns screen grabs into new images of the working set.
type CapturePresenter struct {
	saver  ScreenSaver
	adder  ImageAdder
	status *StatusPresenter
	dir    func() string
	logger *slog.Logger
}

// NewCapturePresenter returns a presenter saving into dir().
func NewCapturePresenter(saver ScreenSaver, adder ImageAdder, status *StatusPresenter, dir func() string, logger *slog.Logger) *CapturePresenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CapturePresenter{saver: saver, adder: adder, status: status, dir: dir, logger: logger}
}

// Capture grabs the screen and opens the result.
func (c *CapturePresenter) Capture() {
	if c == nil || c.saver == nil || c.adder == nil {
		return
	}
	dir := "screenshots"
	if c.dir != nil && c.dir() != "" {
		dir = c.dir()
	}
	path, err := c.saver.Save(dir)
	if err != nil {
		c.logger.Error("screenshot", "error", err)
		c.status.Postf("Screenshot failed: %v", err)
		return
	}
	c.logger.Info("screenshot saved", "path", path)
	if err := c.adder.AddImage(path); err != nil {
		return
	}
	c.status.Postf("Screenshot added: %s", filepath.Base(path))
}
