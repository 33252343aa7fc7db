// Package detector provides inference.Detector backends.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ollama/ollama/api"

	"github.com/soocke/fastlabel-go/assets"
	"github.com/soocke/fastlabel-go/domain/inference"
)

const (
	DefaultURL    = "http://localhost:11434"
	DefaultModel  = "qwen2.5vl:7b"
	DefaultMaxDim = 1024
)

var ErrEmptyResponse = errors.New("detector: empty model response")

// Ollama detects objects by asking a vision model served by Ollama.
type Ollama struct {
	client *api.Client
	model  string
	maxDim int
	prompt string
	logger *slog.Logger
}

// Options configures the Ollama backend.
type Options struct {
	URL    string
	Model  string
	MaxDim int
	Prompt string
}

// NewOllama builds a client for the server at opts.URL. Only scheme and host
// of the URL are used.
func NewOllama(logger *slog.Logger, opts Options) (*Ollama, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxDim <= 0 {
		opts.MaxDim = DefaultMaxDim
	}
	if opts.Prompt == "" {
		opts.Prompt = assets.DetectPrompt
	}
	parsed, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid ollama url %q", opts.URL)
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Ollama{
		client: api.NewClient(base, http.DefaultClient),
		model:  opts.Model,
		maxDim: opts.MaxDim,
		prompt: opts.Prompt,
		logger: logger,
	}, nil
}

// Factory returns an inference.DetectorFactory that connects and verifies
// the model is available.
func Factory(logger *slog.Logger, opts Options) inference.DetectorFactory {
	return func(ctx context.Context) (inference.Detector, error) {
		d, err := NewOllama(logger, opts)
		if err != nil {
			return nil, err
		}
		if err := d.Check(ctx); err != nil {
			return nil, err
		}
		return d, nil
	}
}

// Check asks the server for the model metadata.
func (o *Ollama) Check(ctx context.Context) error {
	if _, err := o.client.Show(ctx, &api.ShowRequest{Model: o.model}); err != nil {
		return fmt.Errorf("model %s unavailable: %w", o.model, err)
	}
	return nil
}

// Detect uploads a down-scaled PNG and maps the reply back to pixels of img.
func (o *Ollama) Detect(ctx context.Context, img image.Image) ([]inference.Detection, error) {
	if img == nil {
		return nil, errors.New("detector: nil image")
	}
	b := img.Bounds()
	src := img
	if b.Dx() > o.maxDim || b.Dy() > o.maxDim {
		src = imaging.Fit(img, o.maxDim, o.maxDim, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{{
			Role:    "user",
			Content: o.prompt,
			Images:  []api.ImageData{api.ImageData(buf.Bytes())},
		}},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0},
	}
	start := time.Now()
	var content string
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	o.logger.Debug("ollama detect", "model", o.model, "elapsed", time.Since(start), "bytes", buf.Len())
	sb := src.Bounds()
	return ParseDetections(content, sb.Dx(), sb.Dy(), b.Dx(), b.Dy())
}

type modelReply struct {
	Objects []modelObject `json:"objects"`
}

type modelObject struct {
	Label      string    `json:"label"`
	ClassID    *int      `json:"class_id,omitempty"`
	Box        []float64 `json:"box"`
	Confidence *float64  `json:"confidence,omitempty"`
}

// ParseDetections decodes a model reply. Boxes whose values are all within
// [0,1] are fractions of the image; otherwise they are pixels of the
// uploaded image (upW x upH). Results are scaled to outW x outH. A missing
// confidence counts as 1.
func ParseDetections(raw string, upW, upH, outW, outH int) ([]inference.Detection, error) {
	raw = sanitizeModelJSON(raw)
	if raw == "" {
		return nil, ErrEmptyResponse
	}
	var reply modelReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("decode model reply: %w", err)
	}
	out := make([]inference.Detection, 0, len(reply.Objects))
	for _, obj := range reply.Objects {
		if len(obj.Box) != 4 {
			continue
		}
		sx, sy := float64(outW), float64(outH)
		if !normalized(obj.Box) {
			if upW <= 0 || upH <= 0 {
				continue
			}
			sx, sy = float64(outW)/float64(upW), float64(outH)/float64(upH)
		}
		d := inference.Detection{
			ClassID:    -1,
			Label:      strings.TrimSpace(obj.Label),
			X1:         obj.Box[0] * sx,
			Y1:         obj.Box[1] * sy,
			X2:         obj.Box[2] * sx,
			Y2:         obj.Box[3] * sy,
			Confidence: 1,
		}
		if obj.ClassID != nil {
			d.ClassID = *obj.ClassID
		}
		if obj.Confidence != nil {
			d.Confidence = *obj.Confidence
		}
		out = append(out, d)
	}
	return out, nil
}

func normalized(box []float64) bool {
	for _, v := range box {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// sanitizeModelJSON strips code fences, comments and trailing commas and
// keeps the outermost object.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")
	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(raw[start : end+1])
}
