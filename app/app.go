package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/fastlabel-go/config"
	"github.com/soocke/fastlabel-go/debug"
	"github.com/soocke/fastlabel-go/ui/theme"
	"github.com/soocke/fastlabel-go/ui/view"
)

// prefillTimeout bounds the synchronous single-image detection.
const prefillTimeout = 2 * time.Minute

type app struct {
	c       *AppContainer
	logger  *slog.Logger
	tick    time.Duration
	afterID string
	dir     string

	ctx    context.Context
	cancel context.CancelFunc
	stop   chan struct{}
	once   sync.Once
}

// NewApp prepares the editor window. dir, when set, is opened on start.
func NewApp(cfg *config.Config, cfgPath, dir string, logger *slog.Logger) *app {
	if logger == nil {
		logger = slog.Default()
	}
	a := &app{
		c:      BuildContainer(cfg, cfgPath, logger),
		logger: logger,
		tick:   time.Duration(cfg.TickMillis) * time.Millisecond,
		dir:    dir,
		stop:   make(chan struct{}),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.c.Loop.Schedule = a.scheduleUpdate

	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+60+40", cfg.ViewportW+340, cfg.ViewportH+140))
	return a
}

// Start builds the window, starts the tick loop and blocks until exit.
func (a *app) Start() {
	theme.InitStyles()
	a.c.RootView.Build(a.c.EditorPresenter, view.Handlers{
		Prefill:    a.prefill,
		ScanAll:    func() { _ = a.c.InferencePresenter.ScanAll(a.ctx) },
		CancelScan: a.c.InferencePresenter.CancelScan,
		Screenshot: a.c.CapturePresenter.Capture,
		PickRegion: a.c.Overlay.OpenOrFocus,
		Exit:       a.exitHandler,
	})
	a.c.EditorPresenter.SetViewport(a.c.Config.ViewportW, a.c.Config.ViewportH)

	if a.c.Config.Debug {
		debug.StartGoroutineLogger(10*time.Second, a.logger, a.c.Counters, a.stop)
		debug.StartMemLogger(10*time.Second, a.logger, a.c.Counters, a.stop)
	}
	if a.dir != "" {
		if err := a.c.EditorPresenter.OpenDir(a.dir); err != nil {
			a.logger.Error("open folder", "dir", a.dir, "error", err)
		}
	}

	a.scheduleUpdate()
	App.Wait()
}

func (a *app) prefill() {
	ctx, cancel := context.WithTimeout(a.ctx, prefillTimeout)
	defer cancel()
	_ = a.c.InferencePresenter.Prefill(ctx)
}

func (a *app) update() {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("tick panic", "panic", r)
			a.scheduleUpdate()
		}
	}()
	a.c.PublishCounters()
	a.c.Loop.Tick()
}

func (a *app) exitHandler() {
	a.once.Do(func() {
		a.c.InferencePresenter.CancelScan()
		a.c.EditorPresenter.Close()
		a.c.CanvasPresenter.Close()
		a.cancel()
		close(a.stop)
		if a.afterID != "" {
			TclAfterCancel(a.afterID)
		}
		Destroy(App)
	})
}

func (a *app) scheduleUpdate() {
	// TclAfter keeps every presenter call on Tk's event loop thread.
	a.afterID = TclAfter(a.tick, func() { a.update() })
}
