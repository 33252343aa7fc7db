package app

import (
	"log/slog"
	"time"

	"github.com/soocke/fastlabel-go/capture"
	"github.com/soocke/fastlabel-go/config"
	"github.com/soocke/fastlabel-go/debug"
	"github.com/soocke/fastlabel-go/detector"
	"github.com/soocke/fastlabel-go/domain/annotation"
	"github.com/soocke/fastlabel-go/domain/inference"
	"github.com/soocke/fastlabel-go/domain/interaction"
	"github.com/soocke/fastlabel-go/domain/labels"
	"github.com/soocke/fastlabel-go/ui/images"
	"github.com/soocke/fastlabel-go/ui/model"
	"github.com/soocke/fastlabel-go/ui/presenter"
	"github.com/soocke/fastlabel-go/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger

	Images     *images.Cache
	Store      *labels.Store
	Index      *labels.Index
	Workspace  *model.Workspace
	Session    *model.SessionModel
	Inference  *model.InferenceModel
	Controller *interaction.Controller
	Worker     *inference.BatchWorker
	Counters   *debug.Counters

	RootView *view.RootView
	Overlay  view.SelectionOverlay

	// Presenters
	StatusPresenter    *presenter.StatusPresenter
	CanvasPresenter    *presenter.CanvasPresenter
	EditorPresenter    *presenter.EditorPresenter
	InferencePresenter *presenter.InferencePresenter
	SessionPresenter   *presenter.SessionPresenter
	CapturePresenter   *presenter.CapturePresenter
	Loop               *presenter.Loop
}

// BuildContainer constructs all components. No Tk calls happen here; the
// window is built by the app wrapper.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) *AppContainer {
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}
	c.Images = images.NewCache(logger, cfg.ImageCacheSize)
	c.Store = labels.NewStore(cfg.LabelDir)
	c.Index = labels.NewIndex()
	c.Workspace = model.NewWorkspace()
	c.Session = model.NewSessionModel()
	c.Inference = &model.InferenceModel{}
	c.Counters = &debug.Counters{}
	c.Controller = interaction.NewController(logger, ControllerOptions(cfg), interaction.Callbacks{})
	c.Worker = detector.NewWorker(cfg, logger, c.Images.Load)

	// View
	c.RootView = view.NewRootView(cfg, logger)
	c.Overlay = view.NewSelectionOverlay(cfg, cfgPath, logger, nil)

	// Presenters
	c.StatusPresenter = presenter.NewStatusPresenter(c.RootView, cfg.StatusMaxChars)
	c.CanvasPresenter = presenter.NewCanvasPresenter(c.RootView, 220, logger)
	c.EditorPresenter = presenter.NewEditorPresenter(logger, presenter.EditorDeps{
		Controller: c.Controller,
		Workspace:  c.Workspace,
		Index:      c.Index,
		Store:      c.Store,
		Images:     c.Images,
		View:       c.RootView,
		Canvas:     c.CanvasPresenter,
		Status:     c.StatusPresenter,
		Colors:     presenter.DefaultSceneColors(),
		ZoomStep:   cfg.ZoomStep,
		Confirm:    c.RootView.Confirm,
	})
	c.InferencePresenter = presenter.NewInferencePresenter(logger, c.Worker, c.EditorPresenter, c.StatusPresenter, c.Inference)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.Workspace, c.RootView)
	saver := &capture.Saver{Grab: capture.RegionGrabber(c.Overlay.ActiveRect), Now: time.Now}
	c.CapturePresenter = presenter.NewCapturePresenter(saver, c.EditorPresenter, c.StatusPresenter, c.screenshotDir, logger)
	c.Loop = presenter.NewLoop(c.InferencePresenter, c.EditorPresenter, c.CanvasPresenter, c.SessionPresenter, c.StatusPresenter, nil)
	return c
}

// screenshotDir saves next to the open images when a folder is open.
func (c *AppContainer) screenshotDir() string {
	if dir := c.Workspace.Dir(); dir != "" {
		return dir
	}
	return c.Config.ScreenshotDir
}

// PublishCounters copies editor figures for the debug loggers.
func (c *AppContainer) PublishCounters() {
	st := c.Controller.State()
	c.Counters.Set(c.Workspace.Len(), len(st.Boxes), c.Controller.History().UndoDepth(), c.Inference.Scanning())
}

// ControllerOptions maps the editing and view settings of cfg.
func ControllerOptions(cfg *config.Config) interaction.Options {
	return interaction.Options{
		MinSide:         cfg.MinSide,
		HandleSize:      cfg.HandleSize,
		SnapThreshold:   cfg.SnapThresholdPx,
		PasteNudge:      cfg.PasteNudge,
		HistoryCapacity: cfg.MaxHistory,
		MinZoom:         cfg.MinZoom,
		MaxZoom:         cfg.MaxZoom,
		ZoomStep:        cfg.ZoomStep,
		PanPerNotch:     cfg.PanPixelsPerNotch,
		Duplicates: annotation.DuplicateOptions{
			IoU:       cfg.DuplicateIoU,
			CenterPx:  cfg.DuplicateCenterPx,
			AreaRatio: cfg.DuplicateAreaRatio,
		},
	}
}
