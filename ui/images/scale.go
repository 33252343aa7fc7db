package images

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"sync"

	"github.com/disintegration/imaging"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed))
	return buf.Bytes()
}

// ScaleToFit performs a nearest-neighbour scale so that the returned image fits within
// maxW x maxH preserving aspect ratio. If the source already fits, the original is returned.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src
	}
	return imaging.Fit(src, max(1, maxW), max(1, maxH), imaging.NearestNeighbor)
}

// Surface caches the displayed copy of an image at one display size so
// redraws at a steady zoom skip the resample.
type Surface struct {
	mu     sync.Mutex
	src    image.Image
	w, h   int
	scaled image.Image

	win    windowKey
	winImg image.Image
}

type windowKey struct {
	scale          float64
	x0, y0, x1, y1 int
}

// NewSurface wraps src. A nil src yields an empty surface.
func NewSurface(src image.Image) *Surface { return &Surface{src: src} }

// Source returns the full-resolution image.
func (s *Surface) Source() image.Image {
	if s == nil {
		return nil
	}
	return s.src
}

// Scaled returns src resampled to w x h with nearest-neighbour filtering.
func (s *Surface) Scaled(w, h int) image.Image {
	if s == nil || s.src == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h = max(1, w), max(1, h)
	if s.scaled != nil && s.w == w && s.h == h {
		return s.scaled
	}
	b := s.src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		s.scaled = s.src
	} else {
		s.scaled = imaging.Resize(s.src, w, h, imaging.NearestNeighbor)
	}
	s.w, s.h = w, h
	return s.scaled
}

// Window returns the part of the image visible in a vw x vh viewport when the
// image is drawn at (offX, offY) with the given scale, already resampled, and
// the view position to draw it at. Only the visible source pixels are
// resampled so deep zoom levels stay bounded by the viewport size.
func (s *Surface) Window(scale, offX, offY float64, vw, vh int) (image.Image, float64, float64) {
	if s == nil || s.src == nil || scale <= 0 {
		return nil, 0, 0
	}
	b := s.src.Bounds()
	x0 := max(0, int(math.Floor(-offX/scale)))
	y0 := max(0, int(math.Floor(-offY/scale)))
	x1 := min(b.Dx(), int(math.Ceil((float64(vw)-offX)/scale)))
	y1 := min(b.Dy(), int(math.Ceil((float64(vh)-offY)/scale)))
	if x1 <= x0 || y1 <= y0 {
		return nil, 0, 0
	}
	atX, atY := offX+float64(x0)*scale, offY+float64(y0)*scale
	key := windowKey{scale: scale, x0: x0, y0: y0, x1: x1, y1: y1}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.winImg != nil && s.win == key {
		return s.winImg, atX, atY
	}
	crop := imaging.Crop(s.src, image.Rect(x0, y0, x1, y1).Add(b.Min))
	w := max(1, int(math.Round(float64(x1-x0)*scale)))
	h := max(1, int(math.Round(float64(y1-y0)*scale)))
	s.winImg = imaging.Resize(crop, w, h, imaging.NearestNeighbor)
	s.win = key
	return s.winImg, atX, atY
}
