package aspect

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"easel/internal/render"
)

// Format pairs an aspect ratio tag with its canonical canvas resolution.
type Format struct {
	Tag    string
	Width  int
	Height int
}

// Resolution renders the canvas size as WIDTHxHEIGHT.
func (f Format) Resolution() string {
	return fmt.Sprintf("%dx%d", f.Width, f.Height)
}

func (f Format) String() string {
	return fmt.Sprintf("%s (%s)", f.Tag, f.Resolution())
}

// builtinFormats is the compiled-in format set. Config can override any entry
// or add new tags; it cannot remove these.
var builtinFormats = []Format{
	{Tag: "1x1", Width: 1080, Height: 1080},
	{Tag: "9x16", Width: 1080, Height: 1920},
	{Tag: "16x9", Width: 1920, Height: 1080},
	{Tag: "4x5", Width: 1080, Height: 1350},
}

// Registry resolves aspect ratio tags to formats.
type Registry struct {
	formats map[string]Format
}

// NewRegistry builds a registry from the compiled-in formats merged with the
// supplied tag to "WIDTHxHEIGHT" overrides.
func NewRegistry(overrides map[string]string) (*Registry, error) {
	formats := make(map[string]Format, len(builtinFormats)+len(overrides))
	for _, f := range builtinFormats {
		formats[f.Tag] = f
	}
	for tag, resolution := range overrides {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		width, height, err := ParseResolution(resolution)
		if err != nil {
			return nil, fmt.Errorf("format %q: %w", tag, err)
		}
		formats[tag] = Format{Tag: tag, Width: width, Height: height}
	}
	return &Registry{formats: formats}, nil
}

// DefaultRegistry returns a registry holding only the compiled-in formats.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(nil)
	if err != nil {
		panic(err)
	}
	return reg
}

// Lookup resolves a tag to its format. Unknown tags fail with the known tag
// list in the message.
func (r *Registry) Lookup(tag string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if f, ok := r.formats[normalized]; ok {
		return f, nil
	}
	return Format{}, render.Wrap(render.ErrUnknownFormat, "aspect", "lookup",
		fmt.Sprintf("no format registered for %q (known: %s)", tag, strings.Join(r.Tags(), ", ")), nil)
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.formats))
	for tag := range r.formats {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Formats returns the registered formats ordered by tag.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.formats))
	for _, tag := range r.Tags() {
		out = append(out, r.formats[tag])
	}
	return out
}

// ParseResolution parses a "WIDTHxHEIGHT" string into positive dimensions.
func ParseResolution(value string) (width, height int, err error) {
	left, right, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("resolution %q must be WIDTHxHEIGHT", value)
	}
	width, err = strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, fmt.Errorf("resolution %q has invalid width", value)
	}
	height, err = strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, fmt.Errorf("resolution %q has invalid height", value)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("resolution %q must be positive", value)
	}
	return width, height, nil
}
