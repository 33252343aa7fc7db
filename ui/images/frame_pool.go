package images

import (
	"image"
	"sync"
)

// Canvas frames are large and produced at interactive rates, so their pixel
// buffers are pooled. A frame handed to RecycleFrame must not be touched
// again by the caller; frames that are never recycled are simply collected.

var framePool sync.Pool // *image.RGBA

// AcquireFrame returns an RGBA image of w x h with unspecified contents.
func AcquireFrame(w, h int) *image.RGBA {
	rect := image.Rect(0, 0, w, h)
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := framePool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		return &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	}
	img.Stride = w * 4
	img.Rect = rect
	img.Pix = img.Pix[:needed]
	return img
}

// RecycleFrame returns img to the pool.
func RecycleFrame(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	framePool.Put(img)
}
