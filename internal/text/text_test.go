package text_test

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/gofont/goregular"

	"easel/internal/aspect"
	"easel/internal/render"
	"easel/internal/text"
)

func newLibrary(t *testing.T, dir string) *text.Library {
	t.Helper()
	lib, err := text.LoadLibrary(dir, nil)
	if err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}
	return lib
}

func writeFont(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadLibraryMissingDir(t *testing.T) {
	lib := newLibrary(t, filepath.Join(t.TempDir(), "absent"))
	if families := lib.Families(); len(families) != 0 {
		t.Fatalf("expected empty library, got %v", families)
	}
	if _, err := lib.Face("", "", 24); err != nil {
		t.Fatalf("fallback face: %v", err)
	}
}

func TestLoadLibraryGroupsFamilies(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "Inter-Bold.ttf")
	writeFont(t, dir, "Inter-Italic.otf")
	writeFont(t, dir, "Mono.ttf")
	if err := os.WriteFile(filepath.Join(dir, "broken.otf"), []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	lib := newLibrary(t, dir)
	if got := lib.Families(); !reflect.DeepEqual(got, []string{"inter", "mono"}) {
		t.Fatalf("Families() = %v", got)
	}
	if got := lib.Styles("Inter"); !reflect.DeepEqual(got, []string{"bold", "italic"}) {
		t.Fatalf("Styles(Inter) = %v", got)
	}
	if got := lib.Styles("mono"); !reflect.DeepEqual(got, []string{"regular"}) {
		t.Fatalf("Styles(mono) = %v", got)
	}
	if _, err := lib.Face("inter", "bold", 32); err != nil {
		t.Fatalf("Face(inter, bold): %v", err)
	}
}

func TestFaceStyleFallback(t *testing.T) {
	dir := t.TempDir()
	writeFont(t, dir, "Display-Black.ttf")
	lib := newLibrary(t, dir)

	// No regular variant, so an empty style takes the only one present.
	if _, err := lib.Face("display", "", 24); err != nil {
		t.Fatalf("Face(display): %v", err)
	}
	if _, err := lib.Face("display", "bold", 24); !errors.Is(err, render.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown style, got %v", err)
	}
}

func TestFaceUnknownFamily(t *testing.T) {
	lib := newLibrary(t, t.TempDir())
	if _, err := lib.Face("missing", "", 24); !errors.Is(err, render.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFaceRejectsBadSize(t *testing.T) {
	lib := newLibrary(t, t.TempDir())
	if _, err := lib.Face("", "", 0); !errors.Is(err, render.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		value string
		want  color.NRGBA
	}{
		{"#ffffff", color.NRGBA{255, 255, 255, 255}},
		{"#FF8000", color.NRGBA{255, 128, 0, 255}},
		{"00ff0080", color.NRGBA{0, 255, 0, 128}},
	}
	for _, tc := range cases {
		got, err := text.ParseColor(tc.value)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tc.value, err)
		}
		if got != tc.want {
			t.Fatalf("ParseColor(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestParseColorRejectsMalformed(t *testing.T) {
	for _, value := range []string{"", "#fff", "#gggggg", "red"} {
		if _, err := text.ParseColor(value); !errors.Is(err, render.ErrValidation) {
			t.Fatalf("ParseColor(%q): expected ErrValidation, got %v", value, err)
		}
	}
}

func TestParseAlignment(t *testing.T) {
	for value, want := range map[string]text.Alignment{
		"":       text.AlignLeft,
		"LEFT":   text.AlignLeft,
		"center": text.AlignCenter,
		"Right":  text.AlignRight,
	} {
		got, err := text.ParseAlignment(value)
		if err != nil {
			t.Fatalf("ParseAlignment(%q): %v", value, err)
		}
		if got != want {
			t.Fatalf("ParseAlignment(%q) = %q, want %q", value, got, want)
		}
	}
	if _, err := text.ParseAlignment("justify"); !errors.Is(err, render.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func inkBounds(img *image.NRGBA) (minX, maxX int, found bool) {
	bounds := img.Bounds()
	minX, maxX = bounds.Max.X, bounds.Min.X
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.R != 0 || c.G != 0 || c.B != 0 {
				found = true
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
			}
		}
	}
	return minX, maxX, found
}

func TestDrawSkipsEmptyLines(t *testing.T) {
	lib := newLibrary(t, t.TempDir())
	r := text.NewRenderer(lib, nil)
	img := imaging.New(400, 200, color.NRGBA{A: 255})

	lines := []text.Line{
		{Text: "  ", Size: 32, Y: 60},
		{Text: "SALE", Size: 32, Y: 120},
	}
	if err := r.Draw(img, lines); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if _, _, found := inkBounds(img); !found {
		t.Fatal("expected drawn pixels")
	}
}

func TestDrawLeftAlignStartsAtMargin(t *testing.T) {
	lib := newLibrary(t, t.TempDir())
	r := text.NewRenderer(lib, nil)
	img := imaging.New(400, 120, color.NRGBA{A: 255})

	if err := r.Draw(img, []text.Line{{Text: "OFF", Size: 32, Y: 80}}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	minX, _, found := inkBounds(img)
	if !found {
		t.Fatal("expected drawn pixels")
	}
	if minX < text.EdgeMargin-2 {
		t.Fatalf("ink starts at x=%d, expected at or after the margin", minX)
	}
}

func TestDrawRightAlignEndsAtMargin(t *testing.T) {
	lib := newLibrary(t, t.TempDir())
	r := text.NewRenderer(lib, nil)
	img := imaging.New(400, 120, color.NRGBA{A: 255})

	line := text.Line{Text: "OFF", Size: 32, Align: text.AlignRight, Y: 80}
	if err := r.Draw(img, []text.Line{line}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	_, maxX, found := inkBounds(img)
	if !found {
		t.Fatal("expected drawn pixels")
	}
	if limit := 400 - text.EdgeMargin + 2; maxX > limit {
		t.Fatalf("ink ends at x=%d, expected at or before %d", maxX, limit)
	}
}

func TestDrawCenterAlignStraddlesMiddle(t *testing.T) {
	lib := newLibrary(t, t.TempDir())
	r := text.NewRenderer(lib, nil)
	img := imaging.New(400, 120, color.NRGBA{A: 255})

	line := text.Line{Text: "MEGA SALE", Size: 32, Align: text.AlignCenter, Y: 80}
	if err := r.Draw(img, []text.Line{line}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	minX, maxX, found := inkBounds(img)
	if !found {
		t.Fatal("expected drawn pixels")
	}
	if minX >= 200 || maxX <= 200 {
		t.Fatalf("ink spans [%d, %d], expected it to straddle x=200", minX, maxX)
	}
}

func TestDrawColorsInk(t *testing.T) {
	lib := newLibrary(t, t.TempDir())
	r := text.NewRenderer(lib, nil)
	img := imaging.New(400, 120, color.NRGBA{A: 255})

	line := text.Line{Text: "GO", Size: 48, Color: color.NRGBA{R: 255, A: 255}, Y: 80}
	if err := r.Draw(img, []text.Line{line}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.G != 0 || c.B != 0 {
				t.Fatalf("unexpected green/blue ink at (%d,%d): %v", x, y, c)
			}
		}
	}
}

func TestDrawRejectsAllEmpty(t *testing.T) {
	lib := newLibrary(t, t.TempDir())
	r := text.NewRenderer(lib, nil)
	img := imaging.New(10, 10, color.NRGBA{A: 255})

	err := r.Draw(img, []text.Line{{Text: " "}, {Text: ""}})
	if !errors.Is(err, render.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDrawUnknownFamily(t *testing.T) {
	lib := newLibrary(t, t.TempDir())
	r := text.NewRenderer(lib, nil)
	img := imaging.New(10, 10, color.NRGBA{A: 255})

	err := r.Draw(img, []text.Line{{Text: "hi", Family: "ghost"}})
	if !errors.Is(err, render.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWrapString(t *testing.T) {
	lib := newLibrary(t, t.TempDir())
	face, err := lib.Face("", "", 16)
	if err != nil {
		t.Fatal(err)
	}

	single := text.WrapString("final markdown launch window", 0, face)
	if len(single) != 1 {
		t.Fatalf("expected one line without a limit, got %v", single)
	}

	wrapped := text.WrapString("final markdown launch window", 90, face)
	if len(wrapped) < 2 {
		t.Fatalf("expected wrapping at 90px, got %v", wrapped)
	}
	for _, line := range wrapped {
		if line == "" {
			t.Fatalf("empty line in %v", wrapped)
		}
	}
}

func TestCompose(t *testing.T) {
	dir := t.TempDir()
	hero := filepath.Join(dir, "hero.png")
	if err := imaging.Save(imaging.New(200, 100, color.NRGBA{A: 255}), hero); err != nil {
		t.Fatal(err)
	}

	lib := newLibrary(t, t.TempDir())
	r := text.NewRenderer(lib, nil)
	format := aspect.Format{Tag: "1x1", Width: 100, Height: 100}

	img, err := r.Compose(hero, format, []text.Line{{Text: "GO", Size: 24, Y: 50}})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Fatalf("canvas = %v, want 100x100", img.Bounds())
	}
	if _, _, found := inkBounds(img); !found {
		t.Fatal("expected drawn pixels")
	}
}

func TestComposeMissingHero(t *testing.T) {
	lib := newLibrary(t, t.TempDir())
	r := text.NewRenderer(lib, nil)
	format := aspect.Format{Tag: "1x1", Width: 100, Height: 100}

	_, err := r.Compose(filepath.Join(t.TempDir(), "absent.png"), format, []text.Line{{Text: "x"}})
	if !errors.Is(err, render.ErrAssetDecode) {
		t.Fatalf("expected ErrAssetDecode, got %v", err)
	}
}
