package geometry

import (
	"fmt"
	"math"

	"easel/internal/render"
)

// Box is a resolved overlay rectangle in canvas pixel coordinates. X and Y
// locate the top-left corner and may be negative or beyond the canvas edge.
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (b Box) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", b.Width, b.Height, b.X, b.Y)
}

// Resolve computes the pixel rectangle an overlay occupies on a canvas.
// Offsets round half away from zero; the rendered size is the overlay's
// native size multiplied by the placement scale, rounded the same way.
func Resolve(canvasW, canvasH, overlayW, overlayH int, p render.Placement) (Box, error) {
	if canvasW <= 0 || canvasH <= 0 {
		return Box{}, render.Wrap(render.ErrInvalidGeometry, "geometry", "resolve",
			fmt.Sprintf("canvas %dx%d has no area", canvasW, canvasH), nil)
	}
	if overlayW <= 0 || overlayH <= 0 {
		return Box{}, render.Wrap(render.ErrInvalidGeometry, "geometry", "resolve",
			fmt.Sprintf("overlay %dx%d has no area", overlayW, overlayH), nil)
	}
	if p.Scale <= 0 || math.IsNaN(p.Scale) || math.IsInf(p.Scale, 0) {
		return Box{}, render.Wrap(render.ErrInvalidGeometry, "geometry", "resolve",
			fmt.Sprintf("scale %v is not positive", p.Scale), nil)
	}

	box := Box{
		X:      roundHalfAway(p.X),
		Y:      roundHalfAway(p.Y),
		Width:  roundHalfAway(float64(overlayW) * p.Scale),
		Height: roundHalfAway(float64(overlayH) * p.Scale),
	}
	// A legal scale can still round a 1px overlay to nothing.
	if box.Width < 1 {
		box.Width = 1
	}
	if box.Height < 1 {
		box.Height = 1
	}
	return box, nil
}

// Intersect clips the box against a canvas of the given size. The returned
// visible rectangle is in canvas coordinates; ok is false when nothing of the
// box lands on the canvas.
func (b Box) Intersect(canvasW, canvasH int) (visible Box, ok bool) {
	left := max(b.X, 0)
	top := max(b.Y, 0)
	right := min(b.X+b.Width, canvasW)
	bottom := min(b.Y+b.Height, canvasH)
	if right <= left || bottom <= top {
		return Box{}, false
	}
	return Box{X: left, Y: top, Width: right - left, Height: bottom - top}, true
}

// Offscreen reports whether no part of the box is visible on the canvas.
func (b Box) Offscreen(canvasW, canvasH int) bool {
	_, ok := b.Intersect(canvasW, canvasH)
	return !ok
}

// Center returns the placement that centers an overlay of the given scaled
// size on the canvas.
func Center(canvasW, canvasH, overlayW, overlayH int, scale float64) render.Placement {
	w := float64(overlayW) * scale
	h := float64(overlayH) * scale
	return render.Placement{
		X:     (float64(canvasW) - w) / 2,
		Y:     (float64(canvasH) - h) / 2,
		Scale: scale,
	}
}

func roundHalfAway(v float64) int {
	return int(math.Round(v))
}
