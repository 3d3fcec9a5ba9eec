package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"easel/internal/assets"
	"easel/internal/logging"
	"easel/internal/positions"
	"easel/internal/render"
)

// NewRouter assembles the preview service routes.
func NewRouter(cfg ServerConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Route("/api", func(r chi.Router) {
		r.Get("/formats", formatsHandler(cfg))
		r.Get("/assets", assetsHandler(cfg))
		r.Get("/positions", getPositionsHandler(cfg))
		r.Put("/positions", putPositionHandler(cfg))
		r.Delete("/positions", deletePositionHandler(cfg))
		r.Get("/preview.png", previewHandler(cfg))
		r.Get("/frame.png", frameHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func formatsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formats := cfg.Registry.Formats()
		resp := FormatsResponse{Formats: make([]FormatResponse, len(formats))}
		for i, f := range formats {
			resp.Formats[i] = FormatToResponse(f)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func assetsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formatTag := strings.TrimSpace(r.URL.Query().Get("format"))
		kindValue := strings.TrimSpace(r.URL.Query().Get("kind"))

		heroes := cfg.Library.Heroes
		overlays := cfg.Library.Overlays
		if formatTag != "" {
			format, err := cfg.Registry.Lookup(formatTag)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			heroes = cfg.Library.HeroesFor(format.Tag)
			var scoped []assets.Overlay
			for _, o := range overlays {
				if o.Format == format.Tag {
					scoped = append(scoped, o)
				}
			}
			overlays = scoped
		}
		if kindValue != "" {
			kind, err := render.ParseKind(kindValue)
			if err != nil {
				writeDomainError(w, render.Wrap(render.ErrValidation, "api", "list assets", err.Error(), nil))
				return
			}
			var scoped []assets.Overlay
			for _, o := range overlays {
				if o.Kind == kind {
					scoped = append(scoped, o)
				}
			}
			overlays = scoped
		}

		resp := AssetsResponse{
			Heroes:   make([]HeroResponse, len(heroes)),
			Overlays: make([]OverlayResponse, len(overlays)),
		}
		for i, h := range heroes {
			resp.Heroes[i] = HeroToResponse(h)
		}
		for i, o := range overlays {
			resp.Overlays[i] = OverlayToResponse(o)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// positionKeyFromQuery builds a store key from hero/overlay/format/kind query
// parameters. All four must be present together.
func positionKeyFromQuery(r *http.Request) (positions.Key, bool, error) {
	q := r.URL.Query()
	key := positions.Key{
		Hero:    strings.TrimSpace(q.Get("hero")),
		Overlay: strings.TrimSpace(q.Get("overlay")),
		Format:  strings.TrimSpace(q.Get("format")),
	}
	kindValue := strings.TrimSpace(q.Get("kind"))

	if key.Hero == "" && key.Overlay == "" && key.Format == "" && kindValue == "" {
		return positions.Key{}, false, nil
	}
	if key.Hero == "" || key.Overlay == "" || key.Format == "" || kindValue == "" {
		return positions.Key{}, false, render.Wrap(render.ErrValidation, "api", "parse position key",
			"hero, overlay, format, and kind are required together", nil)
	}

	kind, err := render.ParseKind(kindValue)
	if err != nil {
		return positions.Key{}, false, render.Wrap(render.ErrValidation, "api", "parse position key", err.Error(), nil)
	}
	key.Kind = kind
	return key, true, nil
}

func getPositionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, keyed, err := positionKeyFromQuery(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		if !keyed {
			records, err := cfg.Store.List(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := PositionsResponse{Positions: make([]PositionResponse, len(records))}
			for i, rec := range records {
				resp.Positions[i] = PositionToResponse(rec)
			}
			WriteJSON(w, http.StatusOK, resp)
			return
		}

		var rec *positions.Record
		if r.URL.Query().Get("resolve") == "true" {
			rec, err = cfg.Store.Lookup(r.Context(), key)
		} else {
			rec, err = cfg.Store.Get(r.Context(), key)
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if rec == nil {
			WriteError(w, http.StatusNotFound, "no stored position for "+key.String(), "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, PositionToResponse(rec))
	}
}

func putPositionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpsertPositionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		kind, err := render.ParseKind(req.Kind)
		if err != nil {
			writeDomainError(w, render.Wrap(render.ErrValidation, "api", "save position", err.Error(), nil))
			return
		}
		rec := &positions.Record{
			Hero:         req.Hero,
			Overlay:      req.Overlay,
			Format:       req.Format,
			Kind:         kind,
			Placement:    render.Placement{X: req.X, Y: req.Y, Scale: req.Scale},
			Loops:        req.Loops,
			PreviewFrame: req.PreviewFrame,
		}

		stored, err := cfg.Store.Set(r.Context(), rec)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, PositionToResponse(stored))
	}
}

func deletePositionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, keyed, err := positionKeyFromQuery(r)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if !keyed {
			WriteError(w, http.StatusBadRequest, "hero, overlay, format, and kind are required", "BAD_REQUEST")
			return
		}

		if err := cfg.Store.Delete(r.Context(), key); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
