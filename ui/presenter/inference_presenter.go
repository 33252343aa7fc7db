package presenter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/fastlabel-go/domain/annotation"
	"github.com/soocke/fastlabel-go/domain/inference"
	"github.com/soocke/fastlabel-go/ui/model"
)

// InferenceRunner narrows the batch worker to what the presenter drives.
type InferenceRunner interface {
	Start(ctx context.Context, paths []string, known map[int]string) (string, error)
	DetectOne(ctx context.Context, img image.Image, known map[int]string) (annotation.Snapshot, map[int]string, error)
	Messages() <-chan inference.Message
	Running() bool
	Cancel()
}

// InferenceHost is the editor side of an inference run.
type InferenceHost interface {
	CurrentImage() (string, image.Image, bool)
	KnownClasses() map[int]string
	Paths() []string
	ApplyDetections(snap annotation.Snapshot, names map[int]string)
	MergeClassNames(names map[int]string)
	StoreScanned(path string, size annotation.Size, snap annotation.Snapshot) error
}

// InferencePresenter starts detector runs and folds worker messages into the
// editor, one image per tick.
type InferencePresenter struct {
	logger *slog.Logger
	runner InferenceRunner
	host   InferenceHost
	status *StatusPresenter
	model  *model.InferenceModel

	run     string
	started time.Time
	// results holds the last detector output per processed path until done.
	results map[string]annotation.Snapshot
}

func NewInferencePresenter(logger *slog.Logger, runner InferenceRunner, host InferenceHost, status *StatusPresenter, m *model.InferenceModel) *InferencePresenter {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = &model.InferenceModel{}
	}
	return &InferencePresenter{logger: logger, runner: runner, host: host, status: status, model: m}
}

// Model exposes scan progress.
func (p *InferencePresenter) Model() *model.InferenceModel { return p.model }

// Prefill detects boxes on the open image and applies them as one undo step.
// It blocks until the detector answers.
func (p *InferencePresenter) Prefill(ctx context.Context) error {
	if p == nil || p.runner == nil || p.host == nil {
		return inference.ErrNoDetector
	}
	_, img, ok := p.host.CurrentImage()
	if !ok {
		p.status.Post("Open an image first.")
		return errNoImage
	}
	snap, names, err := p.runner.DetectOne(ctx, img, p.host.KnownClasses())
	if errors.Is(err, inference.ErrBusy) {
		p.status.Post("Another prefill is running…")
		return err
	}
	if err != nil {
		p.logger.Error("prefill", "error", err)
		p.status.Postf("Prefill failed: %v", err)
		return err
	}
	p.host.ApplyDetections(snap, names)
	p.status.Postf("Prefill complete. Boxes: %d", len(snap))
	return nil
}

// ScanAll starts a batch run over the working set.
func (p *InferencePresenter) ScanAll(ctx context.Context) error {
	if p == nil || p.runner == nil || p.host == nil {
		return inference.ErrNoDetector
	}
	paths := p.host.Paths()
	if len(paths) == 0 {
		p.status.Post("Load images first.")
		return errNoImage
	}
	run, err := p.runner.Start(ctx, paths, p.host.KnownClasses())
	if errors.Is(err, inference.ErrBusy) {
		p.status.Post("Another prefill is running…")
		return err
	}
	if err != nil {
		p.status.Postf("Scan failed: %v", err)
		return err
	}
	p.run = run
	p.started = time.Now()
	p.results = make(map[string]annotation.Snapshot, len(paths))
	p.model.Begin(len(paths))
	p.status.Postf("Scanning %s images…", humanize.Comma(int64(len(paths))))
	return nil
}

// CancelScan asks the worker to stop after its current batch.
func (p *InferencePresenter) CancelScan() {
	if p == nil || p.runner == nil || !p.model.Scanning() {
		return
	}
	p.runner.Cancel()
	p.status.Post("Cancelling after the current batch…")
}

// Tick drains worker messages, handling at most one image result.
func (p *InferencePresenter) Tick(now time.Time) {
	if p == nil || p.runner == nil {
		return
	}
	for {
		select {
		case m := <-p.runner.Messages():
			if p.handle(m) {
				return
			}
		default:
			return
		}
	}
}

// handle applies m and reports whether it was an image result.
func (p *InferencePresenter) handle(m inference.Message) bool {
	if p.run != "" && m.Run != p.run {
		p.logger.Debug("stale inference message", "run", m.Run, "kind", m.Kind)
		return false
	}
	switch m.Kind {
	case inference.MsgStart:
		p.model.Begin(m.Total)
	case inference.MsgImage:
		p.onImage(m)
		return true
	case inference.MsgWarn:
		p.model.Failed()
		p.status.Post(m.Text)
	case inference.MsgError:
		p.model.End()
		p.run = ""
		p.results = nil
		p.status.Postf("Scan failed: %s", m.Text)
	case inference.MsgDone:
		p.onDone(m)
	}
	return false
}

func (p *InferencePresenter) onImage(m inference.Message) {
	p.model.Image(m.BoxCount)
	done, failed, total, _ := p.model.Progress()
	if err := p.host.StoreScanned(m.Path, m.Size, m.Snapshot); err != nil {
		p.logger.Error("store scanned labels", "path", m.Path, "error", err)
		p.status.Postf("Label write failed: %v", err)
	} else {
		p.status.Postf("Scanning %d/%d: %s", done+failed, total, filepath.Base(m.Path))
	}
	if p.results == nil {
		p.results = make(map[string]annotation.Snapshot)
	}
	p.results[m.Path] = m.Snapshot
}

func (p *InferencePresenter) onDone(m inference.Message) {
	p.model.End()
	p.run = ""
	p.host.MergeClassNames(m.ClassNames)
	// The image on screen at done may differ from the one open at start.
	if cur, _, ok := p.host.CurrentImage(); ok {
		if snap, processed := p.results[cur]; processed {
			p.host.ApplyDetections(snap, m.ClassNames)
		}
	}
	p.results = nil
	p.status.Post(ScanSummary(m, time.Since(p.started)))
}

// ScanSummary formats the done message of a run.
func ScanSummary(m inference.Message, elapsed time.Duration) string {
	s := fmt.Sprintf("Scan All done. Files: %s, Boxes: %s",
		humanize.Comma(int64(m.Processed)), humanize.Comma(int64(m.TotalBoxes)))
	if m.Failed > 0 {
		s += fmt.Sprintf(", Failed: %s", humanize.Comma(int64(m.Failed)))
	}
	if m.Cancelled {
		s += " (cancelled)"
	}
	if elapsed > 0 {
		s += fmt.Sprintf(" in %s", elapsed.Round(time.Second))
	}
	return s
}
