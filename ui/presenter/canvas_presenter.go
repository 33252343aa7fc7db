package presenter

import (
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/fastlabel-go/ui/images"
)

// CanvasView receives rendered frames. A nil loupe clears the magnifier.
type CanvasView interface {
	ShowCanvas(img image.Image)
	ShowLoupe(img image.Image)
}

type canvasTask struct {
	sequence uint64
	scene    images.Scene
	loupe    image.Rectangle
	source   image.Image
}

type canvasResult struct {
	sequence uint64
	canvas   *image.RGBA
	loupe    image.Image
	err      error
	duration time.Duration
}

// CanvasPresenter renders scenes on a background goroutine. Only the most
// recent request is kept; older ones are dropped when the worker is busy.
type CanvasPresenter struct {
	View      CanvasView
	LoupeSize int
	LoupePad  int
	logger    *slog.Logger

	workerOnce sync.Once
	workCh     chan canvasTask
	resultCh   chan canvasResult

	sequence    uint64
	lastShown   uint64
	shownCanvas *image.RGBA
	shownLoupe  image.Image
	closed      bool

	frames      atomic.Uint64
	dropped     atomic.Uint64
	renderNanos atomic.Uint64
	lastLogged  time.Time

	// owned by the worker goroutine
	loupeRect image.Rectangle
	loupeSrc  image.Image
	loupeImg  image.Image
}

// NewCanvasPresenter constructs a canvas presenter.
func NewCanvasPresenter(view CanvasView, loupeSize int, logger *slog.Logger) *CanvasPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	if loupeSize <= 0 {
		loupeSize = 220
	}
	return &CanvasPresenter{
		View:      view,
		LoupeSize: loupeSize,
		LoupePad:  6,
		logger:    logger,
		workCh:    make(chan canvasTask, 1),
		resultCh:  make(chan canvasResult, 1),
	}
}

// Request schedules scene for rendering. loupe is the image-space rectangle
// to magnify from source; an empty rectangle clears the loupe.
func (p *CanvasPresenter) Request(scene images.Scene, loupe image.Rectangle, source image.Image) {
	if p == nil || p.closed {
		return
	}
	p.ensureWorker()
	p.sequence++
	task := canvasTask{sequence: p.sequence, scene: scene, loupe: loupe, source: source}
	select {
	case p.workCh <- task:
	default:
		select {
		case <-p.workCh:
			p.dropped.Add(1)
		default:
		}
		select {
		case p.workCh <- task:
		default:
		}
	}
}

// Tick pushes finished frames to the view.
func (p *CanvasPresenter) Tick() {
	if p == nil || p.View == nil {
		return
	}
	for {
		select {
		case res := <-p.resultCh:
			p.handleResult(res)
		default:
			return
		}
	}
}

// Pending reports whether a frame newer than the last shown one was requested.
func (p *CanvasPresenter) Pending() bool {
	return p != nil && p.lastShown < p.sequence
}

func (p *CanvasPresenter) ensureWorker() {
	p.workerOnce.Do(func() {
		go p.runWorker()
	})
}

func (p *CanvasPresenter) runWorker() {
	for task := range p.workCh {
		res := p.execute(task)
		select {
		case p.resultCh <- res:
		default:
			select {
			case stale := <-p.resultCh:
				p.dropped.Add(1)
				images.RecycleFrame(stale.canvas)
			default:
			}
			select {
			case p.resultCh <- res:
			default:
			}
		}
	}
}

func (p *CanvasPresenter) execute(task canvasTask) (res canvasResult) {
	res.sequence = task.sequence
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("canvas render panic", "panic", r)
			res.canvas = nil
		}
	}()
	start := time.Now()
	res.canvas = images.Render(task.scene)

	if task.loupe != p.loupeRect || task.source != p.loupeSrc {
		p.loupeRect, p.loupeSrc, p.loupeImg = task.loupe, task.source, nil
		if !task.loupe.Empty() && task.source != nil {
			img, _, err := images.Loupe(task.source, task.loupe, p.LoupePad, p.LoupeSize)
			if err != nil {
				res.err = err
			} else {
				p.loupeImg = img
			}
		}
	}
	res.loupe = p.loupeImg
	res.duration = time.Since(start)
	return res
}

func (p *CanvasPresenter) handleResult(res canvasResult) {
	if res.err != nil {
		p.logger.Error("loupe", "error", res.err)
	}
	if res.sequence < p.lastShown {
		return
	}
	p.lastShown = res.sequence
	if res.canvas != nil {
		p.View.ShowCanvas(res.canvas)
		// the view copies what it shows, so the frame before this one is free
		images.RecycleFrame(p.shownCanvas)
		p.shownCanvas = res.canvas
		p.frames.Add(1)
		p.renderNanos.Add(uint64(res.duration))
	}
	if res.loupe != p.shownLoupe {
		p.shownLoupe = res.loupe
		p.View.ShowLoupe(res.loupe)
	}
	if now := time.Now(); now.Sub(p.lastLogged) >= renderStatsLogInterval {
		p.lastLogged = now
		st := p.Stats()
		p.logger.Debug("canvas stats", "frames", st.Frames, "dropped", st.Dropped, "avg_render", st.AvgRender)
	}
}

const renderStatsLogInterval = 5 * time.Second

// RenderStats summarises canvas rendering for instrumentation.
type RenderStats struct {
	Frames    uint64
	Dropped   uint64
	AvgRender time.Duration
}

// Stats returns frame counters since construction.
func (p *CanvasPresenter) Stats() RenderStats {
	if p == nil {
		return RenderStats{}
	}
	st := RenderStats{Frames: p.frames.Load(), Dropped: p.dropped.Load()}
	if st.Frames > 0 {
		st.AvgRender = time.Duration(p.renderNanos.Load() / st.Frames)
	}
	return st
}

// Close stops the render goroutine.
func (p *CanvasPresenter) Close() {
	if p == nil || p.closed {
		return
	}
	p.ensureWorker()
	p.closed = true
	close(p.workCh)
}
