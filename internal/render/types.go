package render

import (
	"fmt"
	"strings"
)

// OverlayKind distinguishes the two overlay families the engine composites.
// Every dispatch on kind must be an explicit switch; an unknown kind is a
// caller bug and surfaces as an error rather than a silent fallback.
type OverlayKind string

const (
	KindStatic OverlayKind = "static"
	KindVideo  OverlayKind = "video"
)

var allKinds = []OverlayKind{KindStatic, KindVideo}

// ParseKind normalizes a user-supplied kind label.
func ParseKind(value string) (OverlayKind, error) {
	kind := OverlayKind(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range allKinds {
		if kind == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown overlay kind %q (expected %q or %q)", value, KindStatic, KindVideo)
}

// Kinds returns the supported overlay kinds in display order.
func Kinds() []OverlayKind {
	out := make([]OverlayKind, len(allKinds))
	copy(out, allKinds)
	return out
}

func (k OverlayKind) String() string {
	return string(k)
}

// Valid reports whether the kind is one of the supported variants.
func (k OverlayKind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// OutputExt returns the file extension batch outputs use for this kind.
func (k OverlayKind) OutputExt() string {
	if k == KindVideo {
		return ".mp4"
	}
	return ".png"
}

// Placement positions an overlay on a normalized canvas. X and Y are signed
// pixel offsets of the overlay's top-left corner relative to the canvas
// top-left; Scale multiplies the overlay's native dimensions. Offsets may be
// fractional and may fall outside the canvas; clipping happens at composite
// time, never here.
type Placement struct {
	X     float64
	Y     float64
	Scale float64
}

// DefaultPlacement anchors an unscaled overlay at the canvas origin.
func DefaultPlacement() Placement {
	return Placement{X: 0, Y: 0, Scale: 1.0}
}

func (p Placement) String() string {
	return fmt.Sprintf("x=%.1f y=%.1f scale=%.3f", p.X, p.Y, p.Scale)
}
