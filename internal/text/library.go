// Package text draws styled text lines onto creatives. Fonts come from the
// configured fonts directory with the embedded Go Regular face backing every
// miss, so text rendering never depends on installed system fonts.
package text

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"easel/internal/logging"
	"easel/internal/render"
)

// StyleRegular is the style a font file without a style suffix registers as.
const StyleRegular = "regular"

var fontExts = map[string]struct{}{".ttf": {}, ".otf": {}}

// Library holds the parsed fonts available for text rendering, grouped into
// families with style variants. A file named Inter-Bold.ttf registers as
// family "inter", style "bold"; a bare Inter.ttf registers as style "regular".
type Library struct {
	families map[string]map[string]*opentype.Font
	fallback *opentype.Font
}

// LoadLibrary parses every font under dir. Files that fail to parse are
// skipped with a warning. A missing directory yields a library holding only
// the embedded fallback.
func LoadLibrary(dir string, logger *slog.Logger) (*Library, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	fallback, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	lib := &Library{
		families: make(map[string]map[string]*opentype.Font),
		fallback: fallback,
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return lib, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fonts dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := fontExts[ext]; !ok {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable font",
				logging.String("path", path), logging.Error(err))
			continue
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			logger.Warn("skipping unparseable font",
				logging.String("path", path), logging.Error(err))
			continue
		}
		family, style := splitFontName(entry.Name())
		if lib.families[family] == nil {
			lib.families[family] = make(map[string]*opentype.Font)
		}
		lib.families[family][style] = parsed
	}
	return lib, nil
}

// splitFontName derives family and style keys from a font file name.
// "Inter-BoldItalic.ttf" becomes ("inter", "bolditalic").
func splitFontName(name string) (family, style string) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	family, style, found := strings.Cut(stem, "-")
	if !found || strings.TrimSpace(style) == "" {
		return strings.ToLower(strings.TrimSpace(stem)), StyleRegular
	}
	return strings.ToLower(strings.TrimSpace(family)), strings.ToLower(strings.TrimSpace(style))
}

// Families returns the registered family names, sorted. The embedded fallback
// is always available and not listed.
func (l *Library) Families() []string {
	names := make([]string, 0, len(l.families))
	for name := range l.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Styles returns the style variants registered for a family, sorted.
func (l *Library) Styles(family string) []string {
	styles := l.families[strings.ToLower(strings.TrimSpace(family))]
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Face builds a font face at the given point size. An empty family selects
// the embedded fallback; an empty style prefers "regular" and otherwise takes
// the first variant. Unknown names are errors so a typo never silently
// changes the brand font.
func (l *Library) Face(family, style string, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, render.Wrap(render.ErrValidation, "text", "build face",
			fmt.Sprintf("font size %v must be positive", size), nil)
	}

	parsed := l.fallback
	family = strings.ToLower(strings.TrimSpace(family))
	if family != "" {
		variants, ok := l.families[family]
		if !ok {
			return nil, render.Wrap(render.ErrNotFound, "text", "build face",
				fmt.Sprintf("font family %q not in library (known: %s)", family, strings.Join(l.Families(), ", ")), nil)
		}
		style = strings.ToLower(strings.TrimSpace(style))
		if style == "" {
			style = StyleRegular
			if _, ok := variants[style]; !ok {
				style = l.Styles(family)[0]
			}
		}
		parsed, ok = variants[style]
		if !ok {
			return nil, render.Wrap(render.ErrNotFound, "text", "build face",
				fmt.Sprintf("font %s has no %q style (known: %s)", family, style, strings.Join(l.Styles(family), ", ")), nil)
		}
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}
	return face, nil
}
