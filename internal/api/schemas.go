package api

import (
	"time"

	"easel/internal/aspect"
	"easel/internal/assets"
	"easel/internal/positions"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type FormatResponse struct {
	Tag    string `json:"tag"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type FormatsResponse struct {
	Formats []FormatResponse `json:"formats"`
}

type HeroResponse struct {
	Slug   string `json:"slug"`
	Label  string `json:"label"`
	Format string `json:"format"`
	Group  string `json:"group,omitempty"`
}

type OverlayResponse struct {
	Slug   string `json:"slug"`
	Label  string `json:"label"`
	Kind   string `json:"kind"`
	Format string `json:"format"`
	Group  string `json:"group,omitempty"`
}

type AssetsResponse struct {
	Heroes   []HeroResponse    `json:"heroes"`
	Overlays []OverlayResponse `json:"overlays"`
}

type PositionResponse struct {
	Hero         string  `json:"hero"`
	Overlay      string  `json:"overlay"`
	Format       string  `json:"format"`
	Kind         string  `json:"kind"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Scale        float64 `json:"scale"`
	Loops        int     `json:"loops"`
	PreviewFrame float64 `json:"preview_frame"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

type PositionsResponse struct {
	Positions []PositionResponse `json:"positions"`
}

type UpsertPositionRequest struct {
	Hero         string  `json:"hero"`
	Overlay      string  `json:"overlay"`
	Format       string  `json:"format"`
	Kind         string  `json:"kind"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Scale        float64 `json:"scale"`
	Loops        int     `json:"loops"`
	PreviewFrame float64 `json:"preview_frame"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func FormatToResponse(f aspect.Format) FormatResponse {
	return FormatResponse{Tag: f.Tag, Width: f.Width, Height: f.Height}
}

func HeroToResponse(h assets.Hero) HeroResponse {
	return HeroResponse{Slug: h.Slug, Label: h.Label, Format: h.Format, Group: h.Group}
}

func OverlayToResponse(o assets.Overlay) OverlayResponse {
	return OverlayResponse{Slug: o.Slug, Label: o.Label, Kind: o.Kind.String(), Format: o.Format, Group: o.Group}
}

func PositionToResponse(rec *positions.Record) PositionResponse {
	resp := PositionResponse{
		Hero:         rec.Hero,
		Overlay:      rec.Overlay,
		Format:       rec.Format,
		Kind:         rec.Kind.String(),
		X:            rec.Placement.X,
		Y:            rec.Placement.Y,
		Scale:        rec.Placement.Scale,
		Loops:        rec.Loops,
		PreviewFrame: rec.PreviewFrame,
	}
	if !rec.UpdatedAt.IsZero() {
		resp.UpdatedAt = rec.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
