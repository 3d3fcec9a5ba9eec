package positions

import (
	"fmt"
	"math"
	"strings"
	"time"

	"easel/internal/render"
)

// Wildcard matches any hero or overlay slug in a stored key.
const Wildcard = "*"

// Loop bounds applied to video placements on write.
const (
	MinLoops = 1
	MaxLoops = 10
)

// Key identifies a stored placement: which overlay goes where on which hero,
// per output format and overlay kind.
type Key struct {
	Hero    string
	Overlay string
	Format  string
	Kind    render.OverlayKind
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.Hero, k.Overlay, k.Format, k.Kind)
}

// Normalize trims whitespace and lowercases the format tag. Hero and overlay
// slugs keep their case because they mirror on-disk file names.
func (k Key) Normalize() Key {
	return Key{
		Hero:    strings.TrimSpace(k.Hero),
		Overlay: strings.TrimSpace(k.Overlay),
		Format:  strings.ToLower(strings.TrimSpace(k.Format)),
		Kind:    render.OverlayKind(strings.ToLower(strings.TrimSpace(string(k.Kind)))),
	}
}

// Validate rejects keys that cannot identify a placement. Hero and overlay
// may be the wildcard; format and kind must be concrete.
func (k Key) Validate() error {
	if k.Hero == "" || k.Overlay == "" {
		return render.Wrap(render.ErrValidation, "positions", "validate key",
			"hero and overlay are required", nil)
	}
	if k.Format == "" || k.Format == Wildcard {
		return render.Wrap(render.ErrValidation, "positions", "validate key",
			"format must name a concrete output format", nil)
	}
	if !k.Kind.Valid() {
		return render.Wrap(render.ErrValidation, "positions", "validate key",
			fmt.Sprintf("unknown overlay kind %q", k.Kind), nil)
	}
	return nil
}

// Record is a stored placement plus the per-creative render settings that
// ride along with it.
type Record struct {
	ID           int64
	Hero         string
	Overlay      string
	Format       string
	Kind         render.OverlayKind
	Placement    render.Placement
	Loops        int
	PreviewFrame float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Key returns the identifying tuple for the record.
func (r Record) Key() Key {
	return Key{Hero: r.Hero, Overlay: r.Overlay, Format: r.Format, Kind: r.Kind}
}

// normalize canonicalizes the key components and clamps the render settings
// into their valid ranges.
func (r *Record) normalize() {
	key := r.Key().Normalize()
	r.Hero = key.Hero
	r.Overlay = key.Overlay
	r.Format = key.Format
	r.Kind = key.Kind
	r.Loops = clampLoops(r.Loops)
	r.PreviewFrame = clampFraction(r.PreviewFrame)
}

// Validate rejects records whose key or placement cannot be rendered.
func (r Record) Validate() error {
	if err := r.Key().Validate(); err != nil {
		return err
	}
	scale := r.Placement.Scale
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return render.Wrap(render.ErrValidation, "positions", "validate record",
			fmt.Sprintf("scale %v must be a positive finite number", scale), nil)
	}
	if math.IsNaN(r.Placement.X) || math.IsInf(r.Placement.X, 0) ||
		math.IsNaN(r.Placement.Y) || math.IsInf(r.Placement.Y, 0) {
		return render.Wrap(render.ErrValidation, "positions", "validate record",
			"offsets must be finite numbers", nil)
	}
	return nil
}

func clampLoops(loops int) int {
	return min(max(loops, MinLoops), MaxLoops)
}

func clampFraction(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
