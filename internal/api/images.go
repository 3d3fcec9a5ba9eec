package api

import (
	"fmt"
	"image"
	"net/http"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"easel/internal/logging"
	"easel/internal/preview"
	"easel/internal/render"
)

// previewHandler composites one hero and overlay combination and returns it
// as PNG. With x, y, and scale query parameters it previews an unsaved
// placement; without them the stored position resolves through the wildcard
// chain.
func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		format, err := cfg.Registry.Lookup(q.Get("format"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		kind, err := render.ParseKind(q.Get("kind"))
		if err != nil {
			writeDomainError(w, render.Wrap(render.ErrValidation, "api", "preview", err.Error(), nil))
			return
		}

		heroSlug := strings.TrimSpace(q.Get("hero"))
		hero, ok := cfg.Library.FindHero(format.Tag, heroSlug)
		if !ok {
			WriteError(w, http.StatusNotFound,
				fmt.Sprintf("no %s hero %q in the asset library", format.Tag, heroSlug), "NOT_FOUND")
			return
		}
		overlaySlug := strings.TrimSpace(q.Get("overlay"))
		overlay, ok := cfg.Library.FindOverlay(format.Tag, kind, overlaySlug)
		if !ok {
			WriteError(w, http.StatusNotFound,
				fmt.Sprintf("no %s %s overlay %q in the asset library", format.Tag, kind, overlaySlug), "NOT_FOUND")
			return
		}

		opts, err := previewOptions(q.Get("x"), q.Get("y"), q.Get("scale"), q.Get("frame"), q.Get("full"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		img, err := cfg.Previews.Creative(r.Context(), hero, overlay, format, opts)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writePNG(w, cfg, img)
	}
}

// frameHandler returns one decoded frame of a video overlay as PNG, used by
// the position editor to scrub through a clip.
func frameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		format, err := cfg.Registry.Lookup(q.Get("format"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		overlaySlug := strings.TrimSpace(q.Get("overlay"))
		overlay, ok := cfg.Library.FindOverlay(format.Tag, render.KindVideo, overlaySlug)
		if !ok {
			WriteError(w, http.StatusNotFound,
				fmt.Sprintf("no %s video overlay %q in the asset library", format.Tag, overlaySlug), "NOT_FOUND")
			return
		}

		fraction := 0.0
		if raw := strings.TrimSpace(q.Get("frame")); raw != "" {
			fraction, ok = parseFloatParam(raw)
			if !ok {
				writeDomainError(w, render.Wrap(render.ErrValidation, "api", "sample frame",
					fmt.Sprintf("frame %q is not a number", raw), nil))
				return
			}
		}

		frame, err := cfg.Frames.Frame(r.Context(), overlay.Path, fraction)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writePNG(w, cfg, frame)
	}
}

// previewOptions assembles generator options from raw query values. The x, y,
// and scale parameters must arrive together to form a placement override.
func previewOptions(x, y, scale, frame, full string) (preview.Options, error) {
	var opts preview.Options

	given := 0
	for _, raw := range []string{x, y, scale} {
		if strings.TrimSpace(raw) != "" {
			given++
		}
	}
	switch given {
	case 0:
	case 3:
		placement := render.Placement{}
		var ok bool
		if placement.X, ok = parseFloatParam(x); !ok {
			return opts, render.Wrap(render.ErrValidation, "api", "preview", fmt.Sprintf("x %q is not a number", x), nil)
		}
		if placement.Y, ok = parseFloatParam(y); !ok {
			return opts, render.Wrap(render.ErrValidation, "api", "preview", fmt.Sprintf("y %q is not a number", y), nil)
		}
		if placement.Scale, ok = parseFloatParam(scale); !ok {
			return opts, render.Wrap(render.ErrValidation, "api", "preview", fmt.Sprintf("scale %q is not a number", scale), nil)
		}
		opts.Placement = &placement
	default:
		return opts, render.Wrap(render.ErrValidation, "api", "preview",
			"x, y, and scale are required together", nil)
	}

	if raw := strings.TrimSpace(frame); raw != "" {
		fraction, ok := parseFloatParam(raw)
		if !ok {
			return opts, render.Wrap(render.ErrValidation, "api", "preview",
				fmt.Sprintf("frame %q is not a number", raw), nil)
		}
		opts.Fraction = &fraction
	}

	opts.FullSize = full == "true"
	return opts, nil
}

func parseFloatParam(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func writePNG(w http.ResponseWriter, cfg ServerConfig, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		cfg.Logger.Warn("png response write failed", logging.Error(err))
	}
}
