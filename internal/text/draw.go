package text

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"easel/internal/logging"
	"easel/internal/render"
)

// Alignment positions a line horizontally on the canvas.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// EdgeMargin keeps left and right aligned lines off the canvas edge.
const EdgeMargin = 48

// DefaultSize is the point size used when a line leaves Size unset.
const DefaultSize = 48.0

// ParseAlignment maps a user-supplied label onto an Alignment.
func ParseAlignment(value string) (Alignment, error) {
	switch Alignment(strings.ToLower(strings.TrimSpace(value))) {
	case AlignLeft, "":
		return AlignLeft, nil
	case AlignCenter:
		return AlignCenter, nil
	case AlignRight:
		return AlignRight, nil
	default:
		return "", render.Wrap(render.ErrValidation, "text", "parse alignment",
			fmt.Sprintf("unknown alignment %q (use left, center, or right)", value), nil)
	}
}

// ParseColor decodes #rrggbb or #rrggbbaa hex notation.
func ParseColor(value string) (color.NRGBA, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(raw) != 6 && len(raw) != 8 {
		return color.NRGBA{}, render.Wrap(render.ErrValidation, "text", "parse color",
			fmt.Sprintf("color %q must be #rrggbb or #rrggbbaa", value), nil)
	}
	parsed, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return color.NRGBA{}, render.Wrap(render.ErrValidation, "text", "parse color",
			fmt.Sprintf("color %q is not valid hex", value), nil)
	}
	if len(raw) == 6 {
		parsed = parsed<<8 | 0xff
	}
	return color.NRGBA{
		R: uint8(parsed >> 24),
		G: uint8(parsed >> 16),
		B: uint8(parsed >> 8),
		A: uint8(parsed),
	}, nil
}

// Line is one row of text to draw. Y is the baseline in canvas pixels. A zero
// Color draws white.
type Line struct {
	Text   string
	Family string
	Style  string
	Size   float64
	Color  color.NRGBA
	Align  Alignment
	Y      int
}

// Renderer draws text lines using fonts from a Library.
type Renderer struct {
	library *Library
	logger  *slog.Logger
}

// NewRenderer builds a text renderer.
func NewRenderer(library *Library, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{library: library, logger: logger.With(logging.String("component", "text"))}
}

// Draw renders each line onto img at its own baseline. Lines with empty text
// are skipped; at least one line must carry text.
func (r *Renderer) Draw(img *image.NRGBA, lines []Line) error {
	if img == nil {
		return render.Wrap(render.ErrValidation, "text", "draw", "target image is required", nil)
	}

	drawn := 0
	width := img.Bounds().Dx()
	for _, line := range lines {
		value := strings.TrimSpace(line.Text)
		if value == "" {
			continue
		}

		size := line.Size
		if size <= 0 {
			size = DefaultSize
		}
		face, err := r.library.Face(line.Family, line.Style, size)
		if err != nil {
			return err
		}

		col := line.Color
		if col == (color.NRGBA{}) {
			col = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		}

		advance := font.MeasureString(face, value).Ceil()
		x := EdgeMargin
		switch line.Align {
		case AlignCenter:
			x = (width - advance) / 2
		case AlignRight:
			x = width - advance - EdgeMargin
		}

		drawer := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(col),
			Face: face,
			Dot:  fixed.P(x, line.Y),
		}
		drawer.DrawString(value)
		drawn++
	}

	if drawn == 0 {
		return render.Wrap(render.ErrValidation, "text", "draw", "no text lines with content", nil)
	}
	r.logger.Debug("text lines drawn", logging.Int("lines", drawn))
	return nil
}

// WrapString splits value into lines no wider than maxWidth pixels when drawn
// with face. Words are kept whole even when a single word exceeds the limit.
// A maxWidth of zero returns the value as one line.
func WrapString(value string, maxWidth int, face font.Face) []string {
	if maxWidth <= 0 {
		return []string{value}
	}
	words := strings.Fields(value)
	if len(words) == 0 {
		return []string{value}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate).Ceil() > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}
