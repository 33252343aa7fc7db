package model

import (
	"image"
)

// LoupeModel holds the source rectangle shown in the magnifier. Zero value
// means no loupe and is usable. Updates happen on the UI tick.
type LoupeModel struct {
	rect image.Rectangle
}

func NewLoupeModel() *LoupeModel { return &LoupeModel{} }

// SetRect sets the rectangle in image pixels. An empty rect clears it.
func (m *LoupeModel) SetRect(r image.Rectangle) {
	if m == nil {
		return
	}
	if r.Empty() {
		m.rect = image.Rectangle{}
		return
	}
	m.rect = r
}

// Rect returns the current rectangle (may be empty).
func (m *LoupeModel) Rect() image.Rectangle {
	if m == nil {
		return image.Rectangle{}
	}
	return m.rect
}

// Changed reports whether r differs from the stored rectangle.
func (m *LoupeModel) Changed(r image.Rectangle) bool {
	if m == nil {
		return false
	}
	if r.Empty() {
		return !m.rect.Empty()
	}
	return r != m.rect
}
