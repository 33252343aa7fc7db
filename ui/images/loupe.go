package images

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// CropRect grows r by pad on every side and clamps it to bounds. The result
// is at least 1x1 when bounds is non-empty.
func CropRect(bounds, r image.Rectangle, pad int) image.Rectangle {
	r = r.Canon()
	r = image.Rect(r.Min.X-pad, r.Min.Y-pad, r.Max.X+pad, r.Max.Y+pad).Intersect(bounds)
	if r.Empty() && !bounds.Empty() {
		x := min(max(r.Min.X, bounds.Min.X), bounds.Max.X-1)
		y := min(max(r.Min.Y, bounds.Min.Y), bounds.Max.Y-1)
		r = image.Rect(x, y, x+1, y+1)
	}
	return r
}

// Loupe crops the region around r (padded by pad pixels) and magnifies it to
// fit within out x out using nearest-neighbour so pixel edges stay visible.
// It returns the magnified crop and the crop rectangle in source pixels.
func Loupe(src image.Image, r image.Rectangle, pad, out int) (*image.NRGBA, image.Rectangle, error) {
	if src == nil {
		return nil, image.Rectangle{}, errors.New("nil image")
	}
	if out < 1 {
		out = 1
	}
	crop := CropRect(src.Bounds(), r, pad)
	if crop.Empty() {
		return nil, image.Rectangle{}, errors.New("empty crop")
	}
	ratio := min(float64(out)/float64(crop.Dx()), float64(out)/float64(crop.Dy()))
	w := max(1, int(float64(crop.Dx())*ratio+0.5))
	h := max(1, int(float64(crop.Dy())*ratio+0.5))
	return imaging.Resize(imaging.Crop(src, crop), w, h, imaging.NearestNeighbor), crop, nil
}
