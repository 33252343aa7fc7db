// Package inference runs an external object detector over images and turns
// its output into annotation snapshots.
package inference

import (
	"context"
	"errors"
	"image"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

const (
	DefaultConfidence = 0.25
	DefaultBatchSize  = 8
)

var (
	// ErrBusy is returned when a run is requested while another is active.
	ErrBusy = errors.New("inference: another run is active")
	// ErrNoDetector is returned when no detector factory is configured.
	ErrNoDetector = errors.New("inference: no detector configured")
	// ErrNoLoader is returned when a batch run has no way to read images.
	ErrNoLoader = errors.New("inference: no image loader configured")
)

// Detection is one raw detector result in image pixel coordinates. ClassID is
// negative when the detector only reports a Label.
type Detection struct {
	ClassID    int
	Label      string
	X1, Y1     float64
	X2, Y2     float64
	Confidence float64
}

// Detector finds objects in an image.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, img image.Image) ([]Detection, error)

func (f DetectorFunc) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	return f(ctx, img)
}

// DetectorFactory loads a detector. A failure aborts the whole run.
type DetectorFactory func(ctx context.Context) (Detector, error)

// LoadFunc decodes the image at path.
type LoadFunc func(path string) (image.Image, error)

// Options tunes how detections become boxes and how runs are batched.
type Options struct {
	Confidence float64
	MinSide    int
	BatchSize  int
}

func DefaultOptions() Options {
	return Options{
		Confidence: DefaultConfidence,
		MinSide:    annotation.DefaultMinSide,
		BatchSize:  DefaultBatchSize,
	}
}

func (o Options) normalized() Options {
	if o.Confidence < 0 || o.Confidence > 1 {
		o.Confidence = DefaultConfidence
	}
	if o.MinSide <= 0 {
		o.MinSide = annotation.DefaultMinSide
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o
}

// MessageKind identifies a worker message.
type MessageKind int

const (
	MsgStart MessageKind = iota
	MsgImage
	MsgWarn
	MsgError
	MsgDone
)

func (k MessageKind) String() string {
	switch k {
	case MsgStart:
		return "start"
	case MsgImage:
		return "image"
	case MsgWarn:
		return "warn"
	case MsgError:
		return "error"
	case MsgDone:
		return "done"
	default:
		return "unknown"
	}
}

// Message is posted by the batch worker to the UI loop. Which fields are set
// depends on Kind.
type Message struct {
	Kind MessageKind
	Run  string

	// start
	Total int

	// image
	Path     string
	Size     annotation.Size
	Snapshot annotation.Snapshot
	BoxCount int
	ClassIDs []int

	// warn, error
	Text string

	// done
	Processed  int
	TotalBoxes int
	Failed     int
	Cancelled  bool
	ClassNames map[int]string
}
