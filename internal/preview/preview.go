// Package preview composes display-sized creatives without writing
// deliverables. Static pairs composite exactly like a real render; video
// pairs composite a sampled frame so a position can be judged before paying
// for an encode.
package preview

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"easel/internal/aspect"
	"easel/internal/assets"
	"easel/internal/compositor"
	"easel/internal/geometry"
	"easel/internal/logging"
	"easel/internal/positions"
	"easel/internal/render"
)

// FrameSampler extracts a frame from a video overlay.
type FrameSampler interface {
	Frame(ctx context.Context, path string, fraction float64) (image.Image, error)
}

// Options adjust a single preview without touching the position store.
type Options struct {
	// Placement overrides the stored placement lookup.
	Placement *render.Placement
	// Fraction overrides the stored preview frame for video overlays.
	Fraction *float64
	// FullSize skips the display downscale.
	FullSize bool
}

// Generator builds preview images from library assets and stored positions.
type Generator struct {
	registry *aspect.Registry
	store    positions.Store
	sampler  FrameSampler
	maxEdge  int
	logger   *slog.Logger
}

func NewGenerator(registry *aspect.Registry, store positions.Store, sampler FrameSampler, maxEdge int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{
		registry: registry,
		store:    store,
		sampler:  sampler,
		maxEdge:  maxEdge,
		logger:   logger.With(logging.String(logging.FieldComponent, "preview")),
	}
}

// Creative composites hero and overlay for display. The placement comes from
// the store unless overridden; a pair with neither errors with a not-found
// marker so callers can distinguish "unplaced" from a render problem.
func (g *Generator) Creative(ctx context.Context, hero assets.Hero, overlay assets.Overlay, format aspect.Format, opts Options) (*image.NRGBA, error) {
	placement, fraction, err := g.resolvePlacement(ctx, hero, overlay, format, opts)
	if err != nil {
		return nil, err
	}

	heroImg, err := aspect.LoadHero(hero.Path, format)
	if err != nil {
		return nil, err
	}

	var overlayImg image.Image
	switch overlay.Kind {
	case render.KindStatic:
		overlayImg, err = aspect.Decode(overlay.Path)
	case render.KindVideo:
		overlayImg, err = g.sampler.Frame(ctx, overlay.Path, fraction)
	default:
		err = render.Wrap(render.ErrValidation, "preview", "dispatch",
			fmt.Sprintf("unknown overlay kind %q", overlay.Kind), nil)
	}
	if err != nil {
		return nil, err
	}

	ob := overlayImg.Bounds()
	box, err := geometry.Resolve(format.Width, format.Height, ob.Dx(), ob.Dy(), placement)
	if err != nil {
		return nil, err
	}

	composed := compositor.Composite(heroImg, overlayImg, box)
	if opts.FullSize || g.maxEdge <= 0 {
		return composed, nil
	}
	bounds := composed.Bounds()
	if bounds.Dx() <= g.maxEdge && bounds.Dy() <= g.maxEdge {
		return composed, nil
	}
	return imaging.Fit(composed, g.maxEdge, g.maxEdge, imaging.Lanczos), nil
}

func (g *Generator) resolvePlacement(ctx context.Context, hero assets.Hero, overlay assets.Overlay, format aspect.Format, opts Options) (render.Placement, float64, error) {
	fraction := 0.0
	if opts.Fraction != nil {
		fraction = *opts.Fraction
	}

	if opts.Placement != nil {
		return *opts.Placement, fraction, nil
	}

	key := positions.Key{Hero: hero.Slug, Overlay: overlay.Slug, Format: format.Tag, Kind: overlay.Kind}
	rec, err := g.store.Lookup(ctx, key)
	if err != nil {
		return render.Placement{}, 0, err
	}
	if rec == nil {
		return render.Placement{}, 0, render.Wrap(render.ErrNotFound, "preview", "resolve placement",
			fmt.Sprintf("no stored position for %s", key), nil)
	}
	if opts.Fraction == nil {
		fraction = rec.PreviewFrame
	}
	return rec.Placement, fraction, nil
}
