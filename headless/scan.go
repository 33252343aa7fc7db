// Package headless runs a batch detection over a folder without a window and
// writes the label files directly.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/soocke/fastlabel-go/domain/annotation"
	"github.com/soocke/fastlabel-go/domain/inference"
	"github.com/soocke/fastlabel-go/domain/labels"
	"github.com/soocke/fastlabel-go/ui/images"
	"github.com/soocke/fastlabel-go/ui/presenter"
)

// ErrNoImages is returned when the folder holds no supported images.
var ErrNoImages = errors.New("no images to scan")

// Runner is the part of the batch worker a headless scan needs.
type Runner interface {
	Start(ctx context.Context, paths []string, known map[int]string) (string, error)
	Messages() <-chan inference.Message
	Cancel()
}

// Scanner drives one run and persists every result.
type Scanner struct {
	Logger *slog.Logger
	Runner Runner
	Store  *labels.Store
	Out    io.Writer
}

// Run scans every image in dir and blocks until the worker reports done or a
// terminal error. Cancelling ctx asks the worker to stop after its current
// batch; the partial result is still written and summarised.
func (s *Scanner) Run(ctx context.Context, dir string) (inference.Message, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := s.Out
	if out == nil {
		out = io.Discard
	}
	paths, err := images.ListDir(dir)
	if err != nil {
		return inference.Message{}, err
	}
	if len(paths) == 0 {
		return inference.Message{}, fmt.Errorf("%s: %w", dir, ErrNoImages)
	}

	classes := annotation.NewClassTable()
	if ds, ok, err := s.Store.ReadDataset(); err != nil {
		logger.Warn("dataset manifest", "path", s.Store.DatasetPath(), "error", err)
	} else if ok {
		classes = ds.Classes()
	}

	started := time.Now()
	run, err := s.Runner.Start(context.WithoutCancel(ctx), paths, classes.Names())
	if err != nil {
		return inference.Message{}, err
	}
	logger.Info("scan started", "run", run, "count", len(paths), "dir", dir)

	done := ctx.Done()
	writeFailed := 0
	for {
		select {
		case <-done:
			s.Runner.Cancel()
			done = nil
			logger.Info("scan cancelling", "run", run)
		case m := <-s.Runner.Messages():
			if m.Run != run {
				continue
			}
			switch m.Kind {
			case inference.MsgImage:
				if err := s.Store.Write(m.Path, m.Size, m.Snapshot); err != nil {
					writeFailed++
					logger.Error("write labels", "path", m.Path, "error", err)
					continue
				}
				logger.Debug("labels written", "path", m.Path, "count", m.BoxCount)
			case inference.MsgWarn:
				logger.Warn("scan image failed", "run", run, "error", m.Text)
			case inference.MsgError:
				return m, fmt.Errorf("scan: %s", m.Text)
			case inference.MsgDone:
				for id, name := range m.ClassNames {
					classes.Ensure(id, name)
				}
				if classes.Len() > 0 {
					if err := s.Store.WriteDataset(classes, dir); err != nil {
						logger.Error("write dataset", "path", s.Store.DatasetPath(), "error", err)
					}
				}
				fmt.Fprintln(out, presenter.ScanSummary(m, time.Since(started)))
				if writeFailed > 0 {
					return m, fmt.Errorf("%d label files could not be written", writeFailed)
				}
				return m, nil
			}
		}
	}
}
