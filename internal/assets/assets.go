package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"easel/internal/render"
)

var (
	heroExts   = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}}
	staticExts = map[string]struct{}{".png": {}}
	videoExts  = map[string]struct{}{".mov": {}, ".webm": {}, ".mp4": {}}
)

// Hero is a background image belonging to one output format.
type Hero struct {
	Slug   string
	Label  string
	Format string
	Group  string
	Path   string
}

// Overlay is a static or video element composited onto heroes. Overlays live
// under per-format directories just like heroes, so the same slug can carry
// different artwork per format.
type Overlay struct {
	Slug   string
	Label  string
	Kind   render.OverlayKind
	Format string
	Group  string
	Path   string
}

// Library is the indexed view of an asset root.
type Library struct {
	root     string
	Heroes   []Hero
	Overlays []Overlay
}

// Scan indexes the asset library under root. Missing directories yield an
// empty library rather than an error so a fresh install can scan before any
// assets exist.
func Scan(root string) (*Library, error) {
	lib := &Library{root: root}
	err := scanFormatTree(filepath.Join(root, "heroes"), heroExts, func(format, group, path string) {
		slug := stem(path)
		lib.Heroes = append(lib.Heroes, Hero{
			Slug:   slug,
			Label:  Label(slug),
			Format: format,
			Group:  group,
			Path:   path,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scan heroes: %w", err)
	}

	for _, branch := range []struct {
		kind    render.OverlayKind
		dir     string
		allowed map[string]struct{}
	}{
		{render.KindStatic, filepath.Join(root, "overlays", "static"), staticExts},
		{render.KindVideo, filepath.Join(root, "overlays", "video"), videoExts},
	} {
		kind := branch.kind
		err := scanFormatTree(branch.dir, branch.allowed, func(format, group, path string) {
			slug := stem(path)
			lib.Overlays = append(lib.Overlays, Overlay{
				Slug:   slug,
				Label:  Label(slug),
				Kind:   kind,
				Format: format,
				Group:  group,
				Path:   path,
			})
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s overlays: %w", kind, err)
		}
	}

	sort.Slice(lib.Heroes, func(i, j int) bool {
		a, b := lib.Heroes[i], lib.Heroes[j]
		if a.Format != b.Format {
			return a.Format < b.Format
		}
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Slug < b.Slug
	})
	sort.Slice(lib.Overlays, func(i, j int) bool {
		a, b := lib.Overlays[i], lib.Overlays[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Format != b.Format {
			return a.Format < b.Format
		}
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Slug < b.Slug
	})
	return lib, nil
}

// Root returns the scanned library root.
func (l *Library) Root() string {
	return l.root
}

// scanFormatTree walks a <dir>/<format>/(<group>/)? tree and reports every
// file whose extension is in allowed. Grouping stops at one level; anything
// deeper is ignored.
func scanFormatTree(dir string, allowed map[string]struct{}, add func(format, group, path string)) error {
	formats, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	for _, formatEntry := range formats {
		if !formatEntry.IsDir() || hidden(formatEntry.Name()) {
			continue
		}
		formatTag := strings.ToLower(formatEntry.Name())
		formatDir := filepath.Join(dir, formatEntry.Name())
		entries, err := os.ReadDir(formatDir)
		if err != nil {
			return fmt.Errorf("read format dir %s: %w", formatTag, err)
		}
		for _, entry := range entries {
			if hidden(entry.Name()) {
				continue
			}
			if entry.IsDir() {
				group := entry.Name()
				groupDir := filepath.Join(formatDir, group)
				files, err := os.ReadDir(groupDir)
				if err != nil {
					return fmt.Errorf("read group dir %s/%s: %w", formatTag, group, err)
				}
				for _, file := range files {
					if file.IsDir() || hidden(file.Name()) {
						continue
					}
					if allowedExt(file.Name(), allowed) {
						add(formatTag, group, filepath.Join(groupDir, file.Name()))
					}
				}
				continue
			}
			if allowedExt(entry.Name(), allowed) {
				add(formatTag, "", filepath.Join(formatDir, entry.Name()))
			}
		}
	}
	return nil
}

func allowedExt(name string, allowed map[string]struct{}) bool {
	_, ok := allowed[strings.ToLower(filepath.Ext(name))]
	return ok
}

// HeroesFor returns the heroes available in one output format.
func (l *Library) HeroesFor(format string) []Hero {
	format = strings.ToLower(strings.TrimSpace(format))
	var out []Hero
	for _, hero := range l.Heroes {
		if hero.Format == format {
			out = append(out, hero)
		}
	}
	return out
}

// OverlaysByKind returns the overlays of one kind across all formats.
func (l *Library) OverlaysByKind(kind render.OverlayKind) []Overlay {
	var out []Overlay
	for _, overlay := range l.Overlays {
		if overlay.Kind == kind {
			out = append(out, overlay)
		}
	}
	return out
}

// OverlaysFor returns the overlays of one kind available in one output format.
func (l *Library) OverlaysFor(format string, kind render.OverlayKind) []Overlay {
	format = strings.ToLower(strings.TrimSpace(format))
	var out []Overlay
	for _, overlay := range l.Overlays {
		if overlay.Kind == kind && overlay.Format == format {
			out = append(out, overlay)
		}
	}
	return out
}

// FindHero locates a hero by format and slug.
func (l *Library) FindHero(format, slug string) (Hero, bool) {
	format = strings.ToLower(strings.TrimSpace(format))
	for _, hero := range l.Heroes {
		if hero.Format == format && hero.Slug == slug {
			return hero, true
		}
	}
	return Hero{}, false
}

// FindOverlay locates an overlay by format, kind, and slug.
func (l *Library) FindOverlay(format string, kind render.OverlayKind, slug string) (Overlay, bool) {
	format = strings.ToLower(strings.TrimSpace(format))
	for _, overlay := range l.Overlays {
		if overlay.Format == format && overlay.Kind == kind && overlay.Slug == slug {
			return overlay, true
		}
	}
	return Overlay{}, false
}

// Formats returns the distinct hero formats present in the library, sorted.
func (l *Library) Formats() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, hero := range l.Heroes {
		if _, ok := seen[hero.Format]; ok {
			continue
		}
		seen[hero.Format] = struct{}{}
		out = append(out, hero.Format)
	}
	sort.Strings(out)
	return out
}

// Label humanizes a slug for display: dashes and underscores become spaces
// and words are title-cased.
func Label(slug string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return cases.Title(language.English).String(cleaned)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
