package inference

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

const messageBuffer = 64

// BatchWorker runs the detector off the UI goroutine. At most one run, batch
// or single image, is active at a time. Results are posted in submission
// order on Messages; the worker never touches UI-owned state.
type BatchWorker struct {
	logger  *slog.Logger
	factory DetectorFactory
	load    LoadFunc
	opts    Options

	running atomic.Bool
	cancel  atomic.Bool
	runs    atomic.Uint64

	mu       sync.Mutex
	detector Detector

	out chan Message
}

// NewBatchWorker constructs an idle worker.
func NewBatchWorker(logger *slog.Logger, factory DetectorFactory, load LoadFunc, opts Options) *BatchWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchWorker{
		logger:  logger,
		factory: factory,
		load:    load,
		opts:    opts.normalized(),
		out:     make(chan Message, messageBuffer),
	}
}

// Messages is the queue drained by the UI loop.
func (w *BatchWorker) Messages() <-chan Message { return w.out }

// Running reports whether a run is active.
func (w *BatchWorker) Running() bool { return w != nil && w.running.Load() }

// Runs counts started runs.
func (w *BatchWorker) Runs() uint64 { return w.runs.Load() }

// Cancel asks the active batch run to stop after its current batch.
func (w *BatchWorker) Cancel() {
	if w.running.Load() {
		w.cancel.Store(true)
	}
}

// getDetector loads the detector once and caches it for later runs.
func (w *BatchWorker) getDetector(ctx context.Context) (Detector, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detector != nil {
		return w.detector, nil
	}
	if w.factory == nil {
		return nil, ErrNoDetector
	}
	d, err := w.factory(ctx)
	if err != nil {
		return nil, err
	}
	w.detector = d
	return d, nil
}

// Start launches a batch run over paths and returns its id. known maps the
// current class ids to names so labelled detections reuse them.
func (w *BatchWorker) Start(ctx context.Context, paths []string, known map[int]string) (string, error) {
	if !w.running.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	w.cancel.Store(false)
	w.runs.Add(1)
	run := uuid.NewString()
	paths = slices.Clone(paths)
	go w.runBatch(ctx, run, paths, NewResolver(known))
	return run, nil
}

func (w *BatchWorker) runBatch(ctx context.Context, run string, paths []string, res *Resolver) {
	defer w.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("inference worker panic", "run", run, "panic", r, "stack", string(debug.Stack()))
			w.send(ctx, Message{Kind: MsgError, Run: run, Text: fmt.Sprintf("worker crashed: %v", r)})
		}
	}()

	started := time.Now()
	log := w.logger.With("run", run)
	log.Info("inference run started", "count", len(paths))
	if !w.send(ctx, Message{Kind: MsgStart, Run: run, Total: len(paths)}) {
		return
	}

	det, err := w.getDetector(ctx)
	if err != nil {
		log.Error("detector load", "error", err)
		w.send(ctx, Message{Kind: MsgError, Run: run, Text: fmt.Sprintf("Model load failed: %v", err)})
		return
	}

	done := Message{Kind: MsgDone, Run: run}
	for i := 0; i < len(paths); i += w.opts.BatchSize {
		if w.cancel.Load() || ctx.Err() != nil {
			done.Cancelled = true
			break
		}
		for _, path := range paths[i:min(i+w.opts.BatchSize, len(paths))] {
			msg, err := w.processPath(ctx, det, path, res)
			if err != nil {
				done.Failed++
				log.Warn("inference image failed", "path", path, "error", err)
				if !w.send(ctx, Message{Kind: MsgWarn, Run: run, Path: path, Text: fmt.Sprintf("%s: %v", path, err)}) {
					return
				}
				continue
			}
			msg.Run = run
			done.Processed++
			done.TotalBoxes += msg.BoxCount
			if !w.send(ctx, msg) {
				return
			}
		}
	}
	done.ClassNames = res.Names()
	log.Info("inference run finished",
		"processed", done.Processed,
		"boxes", done.TotalBoxes,
		"failed", done.Failed,
		"cancelled", done.Cancelled,
		"elapsed", time.Since(started),
	)
	w.send(ctx, done)
}

// processPath detects one image; panics inside the detector are reported as
// errors for that image.
func (w *BatchWorker) processPath(ctx context.Context, det Detector, path string, res *Resolver) (msg Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detector panic: %v", r)
		}
	}()
	if w.load == nil {
		return Message{}, ErrNoLoader
	}
	img, err := w.load(path)
	if err != nil {
		return Message{}, err
	}
	size := sizeOf(img)
	dets, err := det.Detect(ctx, img)
	if err != nil {
		return Message{}, err
	}
	snap := ToBoxes(dets, size, res, w.opts)
	return Message{
		Kind:     MsgImage,
		Path:     path,
		Size:     size,
		Snapshot: snap,
		BoxCount: len(snap),
		ClassIDs: snap.ClassIDs(),
	}, nil
}

func (w *BatchWorker) send(ctx context.Context, m Message) bool {
	select {
	case w.out <- m:
		return true
	case <-ctx.Done():
		return false
	}
}

// DetectOne runs the detector synchronously on img. It shares the one-run
// limit with batch runs and returns ErrBusy while one is active.
func (w *BatchWorker) DetectOne(ctx context.Context, img image.Image, known map[int]string) (annotation.Snapshot, map[int]string, error) {
	if !w.running.CompareAndSwap(false, true) {
		return nil, nil, ErrBusy
	}
	defer w.running.Store(false)
	w.runs.Add(1)

	det, err := w.getDetector(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load detector: %w", err)
	}
	dets, err := safeDetect(ctx, det, img)
	if err != nil {
		return nil, nil, fmt.Errorf("detect: %w", err)
	}
	res := NewResolver(known)
	snap := ToBoxes(dets, sizeOf(img), res, w.opts)
	return snap, res.Names(), nil
}

func safeDetect(ctx context.Context, det Detector, img image.Image) (dets []Detection, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detector panic: %v", r)
		}
	}()
	return det.Detect(ctx, img)
}

func sizeOf(img image.Image) annotation.Size {
	if img == nil {
		return annotation.Size{}
	}
	b := img.Bounds()
	return annotation.Size{W: b.Dx(), H: b.Dy()}
}
