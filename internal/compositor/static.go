package compositor

import (
	"context"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"easel/internal/aspect"
	"easel/internal/fileutil"
	"easel/internal/geometry"
	"easel/internal/logging"
	"easel/internal/render"
)

// Composite draws overlay onto hero inside box. The overlay is resampled to
// the box size with Lanczos and alpha-blended at the box origin; portions
// outside the hero bounds are clipped. A fully offscreen box returns an
// untouched copy of the hero.
func Composite(hero image.Image, overlay image.Image, box geometry.Box) *image.NRGBA {
	bounds := hero.Bounds()
	if box.Offscreen(bounds.Dx(), bounds.Dy()) {
		return imaging.Clone(hero)
	}
	resized := imaging.Resize(overlay, box.Width, box.Height, imaging.Lanczos)
	return imaging.Overlay(hero, resized, image.Pt(box.X, box.Y), 1.0)
}

// Static renders still-image overlays onto format-normalized heroes.
type Static struct {
	logger *slog.Logger
}

func NewStatic(logger *slog.Logger) *Static {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Static{
		logger: logger.With(logging.String(logging.FieldComponent, "compositor")),
	}
}

// Render composites overlayPath onto heroPath normalized to format and writes
// the result to outPath as a PNG.
func (s *Static) Render(ctx context.Context, heroPath, overlayPath string, format aspect.Format, placement render.Placement, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	hero, err := aspect.LoadHero(heroPath, format)
	if err != nil {
		return err
	}
	overlay, err := aspect.Decode(overlayPath)
	if err != nil {
		return err
	}

	ob := overlay.Bounds()
	box, err := geometry.Resolve(format.Width, format.Height, ob.Dx(), ob.Dy(), placement)
	if err != nil {
		return err
	}

	composed := Composite(hero, overlay, box)
	if err := WritePNG(outPath, composed); err != nil {
		return render.Wrap(render.ErrRenderFailed, "compositor", "write output", outPath, err)
	}

	s.logger.Debug("rendered static creative",
		logging.String(logging.FieldFormat, format.Tag),
		logging.String("output", outPath),
		logging.Int("x", box.X),
		logging.Int("y", box.Y),
		logging.Int("width", box.Width),
		logging.Int("height", box.Height))
	return nil
}

// WritePNG encodes img to path atomically, creating parent directories as
// needed.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, func(f *os.File) error {
		return imaging.Encode(f, img, imaging.PNG)
	})
}
