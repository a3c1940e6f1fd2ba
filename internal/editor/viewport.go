package editor

import "mindmap/internal/domain"

// Viewport is the rendering surface's pan/zoom transform and size, all in
// screen pixels. A canvas point p appears on screen at p*Zoom + Pan.
type Viewport struct {
	Pan    domain.Position `json:"pan"`
	Zoom   float64         `json:"zoom"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
}

// DefaultViewport is an unpanned, unzoomed 1280x720 surface
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1, Width: 1280, Height: 720}
}

// ScreenToCanvas converts a screen point to canvas coordinates
func (v Viewport) ScreenToCanvas(p domain.Position) domain.Position {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return domain.Position{
		X: (p.X - v.Pan.X) / zoom,
		Y: (p.Y - v.Pan.Y) / zoom,
	}
}

// Center returns the canvas point under the middle of the surface
func (v Viewport) Center() domain.Position {
	return v.ScreenToCanvas(domain.Position{X: v.Width / 2, Y: v.Height / 2})
}
