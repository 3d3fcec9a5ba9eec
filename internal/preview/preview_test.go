package preview_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"easel/internal/aspect"
	"easel/internal/assets"
	"easel/internal/positions"
	"easel/internal/preview"
	"easel/internal/render"
	"easel/internal/testsupport"
)

type fakeSampler struct {
	path     string
	fraction float64
	frame    image.Image
	err      error
}

func (f *fakeSampler) Frame(_ context.Context, path string, fraction float64) (image.Image, error) {
	f.path = path
	f.fraction = fraction
	return f.frame, f.err
}

type fixture struct {
	store   *positions.SQLite
	sampler *fakeSampler
	gen     *preview.Generator
	hero    assets.Hero
	badge   assets.Overlay
	video   assets.Overlay
	format  aspect.Format
}

func newFixture(t *testing.T, maxEdge int) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)

	heroPath := filepath.Join(cfg.Paths.AssetsDir, "heroes", "1x1", "summer.png")
	badgePath := filepath.Join(cfg.Paths.AssetsDir, "overlays", "static", "1x1", "badge.png")
	videoPath := filepath.Join(cfg.Paths.AssetsDir, "overlays", "video", "1x1", "confetti.webm")
	testsupport.WriteImage(t, heroPath, 200, 200, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	testsupport.WriteImage(t, badgePath, 20, 20, color.NRGBA{R: 255, A: 255})
	testsupport.WriteFile(t, videoPath, 64)

	lib, err := assets.Scan(cfg.Paths.AssetsDir)
	if err != nil {
		t.Fatalf("assets.Scan: %v", err)
	}
	hero, ok := lib.FindHero("1x1", "summer")
	if !ok {
		t.Fatal("hero not scanned")
	}
	badge, ok := lib.FindOverlay("1x1", render.KindStatic, "badge")
	if !ok {
		t.Fatal("badge not scanned")
	}
	video, ok := lib.FindOverlay("1x1", render.KindVideo, "confetti")
	if !ok {
		t.Fatal("video overlay not scanned")
	}

	registry := aspect.DefaultRegistry()
	format, err := registry.Lookup("1x1")
	if err != nil {
		t.Fatalf("registry.Lookup: %v", err)
	}

	sampler := &fakeSampler{frame: imaging.New(20, 20, color.NRGBA{B: 255, A: 255})}
	store := testsupport.MustOpenStore(t, cfg)
	gen := preview.NewGenerator(registry, store, sampler, maxEdge, nil)
	return &fixture{store: store, sampler: sampler, gen: gen, hero: hero, badge: badge, video: video, format: format}
}

func TestCreativeStatic(t *testing.T) {
	f := newFixture(t, 0)
	testsupport.SetPosition(t, f.store, "summer", "badge", "1x1", render.KindStatic,
		render.Placement{X: 100, Y: 100, Scale: 1})

	img, err := f.gen.Creative(context.Background(), f.hero, f.badge, f.format, preview.Options{})
	if err != nil {
		t.Fatalf("Creative() error = %v", err)
	}

	// 1x1 canvas is 1080 wide; the 200px hero upscales to cover it.
	if b := img.Bounds(); b.Dx() != f.format.Width || b.Dy() != f.format.Height {
		t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), f.format.Width, f.format.Height)
	}
	got := img.NRGBAAt(105, 105)
	if got.R != 255 || got.G > 2 || got.B > 2 {
		t.Fatalf("overlay pixel = %v, want red", got)
	}
}

func TestCreativeDownscalesToMaxEdge(t *testing.T) {
	f := newFixture(t, 300)
	testsupport.SetPosition(t, f.store, "summer", "badge", "1x1", render.KindStatic, render.DefaultPlacement())

	img, err := f.gen.Creative(context.Background(), f.hero, f.badge, f.format, preview.Options{})
	if err != nil {
		t.Fatalf("Creative() error = %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 300 || b.Dy() != 300 {
		t.Fatalf("size = %dx%d, want 300x300", b.Dx(), b.Dy())
	}
}

func TestCreativeFullSizeSkipsDownscale(t *testing.T) {
	f := newFixture(t, 300)
	testsupport.SetPosition(t, f.store, "summer", "badge", "1x1", render.KindStatic, render.DefaultPlacement())

	img, err := f.gen.Creative(context.Background(), f.hero, f.badge, f.format, preview.Options{FullSize: true})
	if err != nil {
		t.Fatalf("Creative() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != f.format.Width {
		t.Fatalf("width = %d, want %d", b.Dx(), f.format.Width)
	}
}

func TestCreativeVideoUsesSampledFrame(t *testing.T) {
	f := newFixture(t, 0)
	rec := &positions.Record{
		Hero: "summer", Overlay: "confetti", Format: "1x1", Kind: render.KindVideo,
		Placement: render.Placement{X: 40, Y: 40, Scale: 1}, Loops: 2, PreviewFrame: 0.75,
	}
	if _, err := f.store.Set(context.Background(), rec); err != nil {
		t.Fatalf("seed position: %v", err)
	}

	img, err := f.gen.Creative(context.Background(), f.hero, f.video, f.format, preview.Options{})
	if err != nil {
		t.Fatalf("Creative() error = %v", err)
	}

	if f.sampler.path != f.video.Path {
		t.Fatalf("sampled path = %q, want %q", f.sampler.path, f.video.Path)
	}
	if f.sampler.fraction != 0.75 {
		t.Fatalf("sampled fraction = %v, want 0.75", f.sampler.fraction)
	}
	got := img.NRGBAAt(45, 45)
	if got.B != 255 || got.R > 2 {
		t.Fatalf("overlay pixel = %v, want blue frame", got)
	}
}

func TestCreativeFractionOverride(t *testing.T) {
	f := newFixture(t, 0)
	testsupport.SetPosition(t, f.store, "summer", "confetti", "1x1", render.KindVideo, render.DefaultPlacement())

	fraction := 0.25
	if _, err := f.gen.Creative(context.Background(), f.hero, f.video, f.format, preview.Options{Fraction: &fraction}); err != nil {
		t.Fatalf("Creative() error = %v", err)
	}
	if f.sampler.fraction != 0.25 {
		t.Fatalf("sampled fraction = %v, want 0.25", f.sampler.fraction)
	}
}

func TestCreativePlacementOverride(t *testing.T) {
	f := newFixture(t, 0)

	p := render.Placement{X: 10, Y: 10, Scale: 2}
	img, err := f.gen.Creative(context.Background(), f.hero, f.badge, f.format, preview.Options{Placement: &p})
	if err != nil {
		t.Fatalf("Creative() error = %v", err)
	}
	got := img.NRGBAAt(20, 20)
	if got.R != 255 {
		t.Fatalf("overlay pixel = %v, want red", got)
	}
}

func TestCreativeWithoutPositionErrors(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.gen.Creative(context.Background(), f.hero, f.badge, f.format, preview.Options{})
	if !errors.Is(err, render.ErrNotFound) {
		t.Fatalf("Creative() error = %v, want ErrNotFound", err)
	}
}

func TestCreativeSamplerFailure(t *testing.T) {
	f := newFixture(t, 0)
	testsupport.SetPosition(t, f.store, "summer", "confetti", "1x1", render.KindVideo, render.DefaultPlacement())
	f.sampler.err = render.Wrap(render.ErrInvalidFraction, "sampler", "sample frame", "fraction 2 outside [0, 1]", nil)

	_, err := f.gen.Creative(context.Background(), f.hero, f.video, f.format, preview.Options{})
	if !errors.Is(err, render.ErrInvalidFraction) {
		t.Fatalf("Creative() error = %v, want ErrInvalidFraction", err)
	}
}
