package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"easel/internal/aspect"
	"easel/internal/assets"
	"easel/internal/config"
	"easel/internal/logging"
	"easel/internal/positions"
	"easel/internal/render"
)

// StaticRenderer renders one still creative.
type StaticRenderer interface {
	Render(ctx context.Context, heroPath, overlayPath string, format aspect.Format, placement render.Placement, outPath string) error
}

// VideoRenderer renders one looped video creative.
type VideoRenderer interface {
	Render(ctx context.Context, heroPath, overlayPath string, format aspect.Format, placement render.Placement, loops int, outPath string) error
}

// Runner expands selections into items and dispatches each item to the
// renderer matching its overlay kind.
type Runner struct {
	cfg      *config.Config
	registry *aspect.Registry
	store    positions.Store
	static   StaticRenderer
	video    VideoRenderer
	logger   *slog.Logger
}

func NewRunner(cfg *config.Config, registry *aspect.Registry, store positions.Store, static StaticRenderer, video VideoRenderer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		registry: registry,
		store:    store,
		static:   static,
		video:    video,
		logger:   logger.With(logging.String(logging.FieldComponent, "batch")),
	}
}

// Plan expands sel against the library into concrete render items. Formats,
// heroes, and overlays named explicitly must exist somewhere in the
// selection; placement lookups may come back empty, which marks the item for
// skipping rather than failing the plan.
func (r *Runner) Plan(ctx context.Context, lib *assets.Library, sel Selection, batchName string) ([]Item, error) {
	kinds, err := selectedKinds(sel.Kinds)
	if err != nil {
		return nil, err
	}
	formats, err := r.selectedFormats(lib, sel.Formats)
	if err != nil {
		return nil, err
	}
	if err := validateHeroes(lib, formats, sel.Heroes); err != nil {
		return nil, err
	}

	// Overlays are per-format assets, so the pool is rebuilt for every
	// format and explicitly named slugs only need to exist in one of the
	// selected formats.
	wantedOverlays := make(map[string]bool, len(sel.Overlays))
	for _, slug := range sel.Overlays {
		wantedOverlays[slug] = false
	}

	var items []Item
	for _, format := range formats {
		heroes := filterHeroes(lib.HeroesFor(format.Tag), sel.Heroes)
		overlays := overlaysForFormat(lib, format.Tag, kinds, wantedOverlays)
		for _, hero := range heroes {
			for _, overlay := range overlays {
				key := positions.Key{Hero: hero.Slug, Overlay: overlay.Slug, Format: format.Tag, Kind: overlay.Kind}
				rec, err := r.store.Lookup(ctx, key)
				if err != nil {
					return nil, fmt.Errorf("lookup position %s: %w", key, err)
				}
				items = append(items, Item{
					Hero:     hero,
					Overlay:  overlay,
					Format:   format,
					Position: rec,
					OutPath:  filepath.Join(r.cfg.OutputDirFor(format.Tag, batchName), outputName(hero, overlay)),
				})
			}
		}
	}
	for _, slug := range sel.Overlays {
		if !wantedOverlays[slug] {
			return nil, render.Wrap(render.ErrNotFound, "batch", "plan",
				fmt.Sprintf("overlay %q not in library for the selected formats", slug), nil)
		}
	}
	return items, nil
}

// Run plans and renders a batch. Items without a stored placement are
// reported as skipped; a failed item is recorded and the run continues.
// Cancellation stops the run, records every unprocessed item as skipped with
// reason "canceled", and returns the report alongside the context error.
func (r *Runner) Run(ctx context.Context, lib *assets.Library, sel Selection, batchName string) (*Report, error) {
	if batchName == "" {
		batchName = fmt.Sprintf("run-%s", time.Now().Format("20060102-150405"))
	}

	runID := uuid.NewString()
	ctx = render.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	items, err := r.Plan(ctx, lib, sel, batchName)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     runID,
		BatchName: batchName,
		Started:   time.Now(),
	}
	logger.Info("starting batch run",
		logging.String("batch", batchName),
		logging.Int("items", len(items)))

	for i := range items {
		if err := ctx.Err(); err != nil {
			markCanceled(report, items[i:])
			report.Finished = time.Now()
			return report, err
		}

		result := r.renderItem(ctx, logger, items[i])
		if result.Err != nil && errors.Is(result.Err, context.Canceled) {
			markCanceled(report, items[i:])
			report.Finished = time.Now()
			return report, context.Canceled
		}
		report.Results = append(report.Results, result)
	}

	report.Finished = time.Now()
	rendered, skipped, failed := report.Counts()
	logger.Info("batch run complete",
		logging.String("batch", batchName),
		logging.Int("rendered", rendered),
		logging.Int("skipped", skipped),
		logging.Int("failed", failed),
		logging.Duration("elapsed", report.Duration()))
	return report, nil
}

// markCanceled records the items a canceled run never rendered so the report
// still covers the full plan.
func markCanceled(report *Report, remaining []Item) {
	for _, item := range remaining {
		report.Results = append(report.Results, Result{Item: item, Status: StatusSkipped, Reason: "canceled"})
	}
}

func (r *Runner) renderItem(ctx context.Context, logger *slog.Logger, item Item) Result {
	itemLogger := logger.With(
		logging.String(logging.FieldHero, item.Hero.Slug),
		logging.String(logging.FieldOverlay, item.Overlay.Slug),
		logging.String(logging.FieldFormat, item.Format.Tag),
		logging.String(logging.FieldKind, string(item.Overlay.Kind)))

	if item.Position == nil {
		itemLogger.Warn("skipping pair without stored position")
		return Result{Item: item, Status: StatusSkipped, Reason: "no stored position"}
	}

	started := time.Now()
	var err error
	switch item.Overlay.Kind {
	case render.KindStatic:
		err = r.static.Render(ctx, item.Hero.Path, item.Overlay.Path, item.Format, item.Position.Placement, item.OutPath)
	case render.KindVideo:
		err = r.video.Render(ctx, item.Hero.Path, item.Overlay.Path, item.Format, item.Position.Placement, item.Position.Loops, item.OutPath)
	default:
		err = render.Wrap(render.ErrValidation, "batch", "dispatch",
			fmt.Sprintf("unknown overlay kind %q", item.Overlay.Kind), nil)
	}
	elapsed := time.Since(started)

	if err != nil {
		itemLogger.Error("item failed", logging.Error(err), logging.Duration("elapsed", elapsed))
		return Result{Item: item, Status: StatusFailed, Reason: render.Kind(err), Err: err, Elapsed: elapsed}
	}

	itemLogger.Info("item rendered",
		logging.String("output", item.OutPath),
		logging.Duration("elapsed", elapsed))
	return Result{Item: item, Status: StatusRendered, Elapsed: elapsed}
}

func (r *Runner) selectedFormats(lib *assets.Library, want []string) ([]aspect.Format, error) {
	if len(want) == 0 {
		var out []aspect.Format
		for _, tag := range lib.Formats() {
			format, err := r.registry.Lookup(tag)
			if err != nil {
				r.logger.Warn("skipping unregistered format directory",
					logging.String(logging.FieldFormat, tag))
				continue
			}
			out = append(out, format)
		}
		return out, nil
	}

	seen := make(map[string]struct{}, len(want))
	var out []aspect.Format
	for _, tag := range want {
		format, err := r.registry.Lookup(tag)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[format.Tag]; dup {
			continue
		}
		seen[format.Tag] = struct{}{}
		out = append(out, format)
	}
	return out, nil
}

func selectedKinds(want []string) ([]render.OverlayKind, error) {
	if len(want) == 0 {
		return render.Kinds(), nil
	}
	seen := make(map[render.OverlayKind]struct{}, len(want))
	var out []render.OverlayKind
	for _, value := range want {
		kind, err := render.ParseKind(value)
		if err != nil {
			return nil, render.Wrap(render.ErrValidation, "batch", "plan", err.Error(), nil)
		}
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}
		out = append(out, kind)
	}
	return out, nil
}

func overlaysForFormat(lib *assets.Library, format string, kinds []render.OverlayKind, wanted map[string]bool) []assets.Overlay {
	var out []assets.Overlay
	for _, kind := range kinds {
		for _, overlay := range lib.OverlaysFor(format, kind) {
			if len(wanted) > 0 {
				if _, ok := wanted[overlay.Slug]; !ok {
					continue
				}
				wanted[overlay.Slug] = true
			}
			out = append(out, overlay)
		}
	}
	return out
}

func validateHeroes(lib *assets.Library, formats []aspect.Format, want []string) error {
	if len(want) == 0 {
		return nil
	}
	for _, slug := range want {
		found := false
		for _, format := range formats {
			if _, ok := lib.FindHero(format.Tag, slug); ok {
				found = true
				break
			}
		}
		if !found {
			return render.Wrap(render.ErrNotFound, "batch", "plan",
				fmt.Sprintf("hero %q not in library for the selected formats", slug), nil)
		}
	}
	return nil
}

func filterHeroes(heroes []assets.Hero, want []string) []assets.Hero {
	if len(want) == 0 {
		return heroes
	}
	wanted := make(map[string]struct{}, len(want))
	for _, slug := range want {
		wanted[slug] = struct{}{}
	}
	var out []assets.Hero
	for _, hero := range heroes {
		if _, ok := wanted[hero.Slug]; ok {
			out = append(out, hero)
		}
	}
	return out
}

func outputName(hero assets.Hero, overlay assets.Overlay) string {
	return hero.Slug + "__" + overlay.Slug + overlay.Kind.OutputExt()
}
