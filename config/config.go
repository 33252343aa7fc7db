package config

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "fastlabel.json"

// Config holds runtime configuration for the editor.
// Fields may be loaded from a JSON file and overridden by environment
// variables and command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Editing
	MinSide         int     `json:"min_side"`
	HandleSize      float64 `json:"handle_size"`
	SnapThresholdPx float64 `json:"snap_threshold_px"`
	MaxHistory      int     `json:"max_history"`
	PasteNudge      int     `json:"paste_nudge"`

	// View
	MinZoom           float64 `json:"min_zoom"`
	MaxZoom           float64 `json:"max_zoom"`
	ZoomStep          float64 `json:"zoom_step"`
	PanPixelsPerNotch float64 `json:"pan_pixels_per_notch"`
	ViewportW         int     `json:"viewport_w"`
	ViewportH         int     `json:"viewport_h"`

	// Duplicate highlighting
	DuplicateIoU       float64 `json:"duplicate_iou"`
	DuplicateCenterPx  float64 `json:"duplicate_center_px"`
	DuplicateAreaRatio float64 `json:"duplicate_area_ratio"`

	// Inference
	ConfThreshold float64 `json:"conf_threshold"`
	BatchSize     int     `json:"batch_size"`
	OllamaURL     string  `json:"ollama_url"`
	Model         string  `json:"model"`
	MaxImageDim   int     `json:"max_image_dim"`
	// PromptFile replaces the built-in detector prompt when set.
	PromptFile string `json:"prompt_file"`

	// Storage
	LabelDir       string `json:"label_dir"`
	ImageCacheSize int    `json:"image_cache_size"`

	// UI loop
	TickMillis     int `json:"tick_millis"`
	StatusMaxChars int `json:"status_max_chars"`

	// Screen capture. A zero width or height grabs the whole screen.
	ScreenshotDir string `json:"screenshot_dir"`
	CaptureX      int    `json:"capture_x"`
	CaptureY      int    `json:"capture_y"`
	CaptureW      int    `json:"capture_w"`
	CaptureH      int    `json:"capture_h"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		MinSide:            4,
		HandleSize:         8,
		SnapThresholdPx:    8,
		MaxHistory:         150,
		PasteNudge:         8,
		MinZoom:            0.1,
		MaxZoom:            16.0,
		ZoomStep:           1.15,
		PanPixelsPerNotch:  30,
		ViewportW:          1100,
		ViewportH:          760,
		DuplicateIoU:       0.90,
		DuplicateCenterPx:  3,
		DuplicateAreaRatio: 0.02,
		ConfThreshold:      0.25,
		BatchSize:          8,
		OllamaURL:          "http://localhost:11434",
		Model:              "qwen2.5vl:7b",
		MaxImageDim:        1024,
		LabelDir:           "yoloLabels",
		ImageCacheSize:     16,
		TickMillis:         33,
		StatusMaxChars:     110,
		ScreenshotDir:      "screenshots",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.MinSide <= 0 {
		c.MinSide = d.MinSide
	}
	if c.HandleSize <= 0 {
		c.HandleSize = d.HandleSize
	}
	if c.SnapThresholdPx < 0 {
		c.SnapThresholdPx = d.SnapThresholdPx
	}
	if c.MaxHistory <= 0 {
		c.MaxHistory = d.MaxHistory
	}
	if c.PasteNudge < 0 {
		c.PasteNudge = d.PasteNudge
	}
	if c.MinZoom <= 0 {
		c.MinZoom = d.MinZoom
	}
	if c.MaxZoom <= 0 || c.MaxZoom < c.MinZoom {
		c.MaxZoom = max(d.MaxZoom, c.MinZoom)
	}
	if c.ZoomStep <= 1 {
		c.ZoomStep = d.ZoomStep
	}
	if c.PanPixelsPerNotch <= 0 {
		c.PanPixelsPerNotch = d.PanPixelsPerNotch
	}
	if c.ViewportW < 200 {
		c.ViewportW = d.ViewportW
	}
	if c.ViewportH < 200 {
		c.ViewportH = d.ViewportH
	}
	if c.DuplicateIoU <= 0 || c.DuplicateIoU > 1 {
		c.DuplicateIoU = d.DuplicateIoU
	}
	if c.DuplicateCenterPx < 0 {
		c.DuplicateCenterPx = d.DuplicateCenterPx
	}
	if c.DuplicateAreaRatio < 0 || c.DuplicateAreaRatio > 1 {
		c.DuplicateAreaRatio = d.DuplicateAreaRatio
	}
	if c.ConfThreshold < 0 || c.ConfThreshold > 1 {
		c.ConfThreshold = d.ConfThreshold
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if strings.TrimSpace(c.OllamaURL) == "" {
		c.OllamaURL = d.OllamaURL
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = d.Model
	}
	if c.MaxImageDim < 64 {
		c.MaxImageDim = d.MaxImageDim
	}
	if strings.TrimSpace(c.LabelDir) == "" {
		c.LabelDir = d.LabelDir
	}
	if c.ImageCacheSize <= 0 {
		c.ImageCacheSize = d.ImageCacheSize
	}
	if c.TickMillis <= 0 {
		c.TickMillis = d.TickMillis
	}
	if c.StatusMaxChars < 10 {
		c.StatusMaxChars = d.StatusMaxChars
	}
	if strings.TrimSpace(c.ScreenshotDir) == "" {
		c.ScreenshotDir = d.ScreenshotDir
	}
	if c.CaptureW < 0 || c.CaptureH < 0 {
		c.CaptureW, c.CaptureH = 0, 0
	}
	return nil
}

// CaptureRegion returns the configured screen area, or nil for the whole
// screen.
func (c *Config) CaptureRegion() *image.Rectangle {
	if c == nil || c.CaptureW <= 0 || c.CaptureH <= 0 {
		return nil
	}
	r := image.Rect(c.CaptureX, c.CaptureY, c.CaptureX+c.CaptureW, c.CaptureY+c.CaptureH)
	return &r
}

// SetCaptureRegion stores r; an empty r selects the whole screen.
func (c *Config) SetCaptureRegion(r image.Rectangle) {
	if r.Empty() {
		c.CaptureX, c.CaptureY, c.CaptureW, c.CaptureH = 0, 0, 0, 0
		return
	}
	c.CaptureX, c.CaptureY = r.Min.X, r.Min.Y
	c.CaptureW, c.CaptureH = r.Dx(), r.Dy()
}

// Environment variables consulted by ApplyEnv.
const (
	EnvOllamaURL = "FASTLABEL_OLLAMA_URL"
	EnvModel     = "FASTLABEL_MODEL"
	EnvLabelDir  = "FASTLABEL_LABEL_DIR"
	EnvDebug     = "FASTLABEL_DEBUG"
	EnvBatchSize = "FASTLABEL_BATCH_SIZE"
	EnvPrompt    = "FASTLABEL_PROMPT_FILE"
)

// ApplyEnv overrides fields from the process environment. Unset or
// unparsable variables leave the field unchanged.
func (c *Config) ApplyEnv() {
	c.OllamaURL = getEnv(EnvOllamaURL, c.OllamaURL)
	c.Model = getEnv(EnvModel, c.Model)
	c.LabelDir = getEnv(EnvLabelDir, c.LabelDir)
	c.Debug = getEnvBool(EnvDebug, c.Debug)
	c.BatchSize = getEnvInt(EnvBatchSize, c.BatchSize)
	c.PromptFile = getEnv(EnvPrompt, c.PromptFile)
	_ = c.Validate()
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return fallback
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("decode %s: %w", path, err)
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
