package batch_test

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"sync"
	"testing"

	"easel/internal/aspect"
	"easel/internal/assets"
	"easel/internal/batch"
	"easel/internal/config"
	"easel/internal/positions"
	"easel/internal/render"
	"easel/internal/testsupport"
)

type staticCall struct {
	Hero      string
	Overlay   string
	Format    string
	Placement render.Placement
	Out       string
}

type fakeStatic struct {
	mu       sync.Mutex
	calls    []staticCall
	fail     map[string]error
	onRender func(ctx context.Context)
}

func (f *fakeStatic) Render(ctx context.Context, heroPath, overlayPath string, format aspect.Format, placement render.Placement, outPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, staticCall{
		Hero:      filepath.Base(heroPath),
		Overlay:   filepath.Base(overlayPath),
		Format:    format.Tag,
		Placement: placement,
		Out:       outPath,
	})
	if f.onRender != nil {
		f.onRender(ctx)
	}
	if err, ok := f.fail[filepath.Base(heroPath)]; ok {
		return err
	}
	return nil
}

type videoCall struct {
	Hero  string
	Loops int
	Out   string
}

type fakeVideo struct {
	mu    sync.Mutex
	calls []videoCall
}

func (f *fakeVideo) Render(ctx context.Context, heroPath, overlayPath string, format aspect.Format, placement render.Placement, loops int, outPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, videoCall{Hero: filepath.Base(heroPath), Loops: loops, Out: outPath})
	return nil
}

type fixture struct {
	cfg    *config.Config
	lib    *assets.Library
	store  *positions.SQLite
	static *fakeStatic
	video  *fakeVideo
	runner *batch.Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	c := color.NRGBA{R: 10, G: 20, B: 30, A: 255}

	testsupport.WriteImage(t, filepath.Join(cfg.Paths.AssetsDir, "heroes", "1x1", "summer.png"), 8, 8, c)
	testsupport.WriteImage(t, filepath.Join(cfg.Paths.AssetsDir, "heroes", "1x1", "winter.png"), 8, 8, c)
	testsupport.WriteImage(t, filepath.Join(cfg.Paths.AssetsDir, "overlays", "static", "1x1", "badge.png"), 4, 4, c)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.AssetsDir, "overlays", "video", "1x1", "confetti.webm"), 64)

	lib, err := assets.Scan(cfg.Paths.AssetsDir)
	if err != nil {
		t.Fatalf("assets.Scan: %v", err)
	}

	store := testsupport.MustOpenStore(t, cfg)
	static := &fakeStatic{fail: map[string]error{}}
	video := &fakeVideo{}
	runner := batch.NewRunner(cfg, aspect.DefaultRegistry(), store, static, video, nil)
	return &fixture{cfg: cfg, lib: lib, store: store, static: static, video: video, runner: runner}
}

func TestRunRendersMatrix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testsupport.SetPosition(t, f.store, "summer", "badge", "1x1", render.KindStatic, render.Placement{X: 10, Y: 12, Scale: 0.5})
	rec, err := f.store.Set(ctx, &positions.Record{
		Hero: positions.Wildcard, Overlay: positions.Wildcard, Format: "1x1", Kind: render.KindVideo,
		Placement: render.Placement{X: 4, Y: 4, Scale: 1}, Loops: 3,
	})
	if err != nil {
		t.Fatalf("seed video position: %v", err)
	}
	if rec.Loops != 3 {
		t.Fatalf("seed loops = %d, want 3", rec.Loops)
	}

	report, err := f.runner.Run(ctx, f.lib, batch.Selection{}, "launch")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rendered, skipped, failed := report.Counts()
	if rendered != 3 || skipped != 1 || failed != 0 {
		t.Fatalf("counts = %d/%d/%d, want 3 rendered, 1 skipped, 0 failed", rendered, skipped, failed)
	}
	if report.RunID == "" || report.BatchName != "launch" {
		t.Fatalf("report identity = %q/%q", report.RunID, report.BatchName)
	}

	skippedResults := report.ByStatus(batch.StatusSkipped)
	if len(skippedResults) != 1 {
		t.Fatalf("skipped results = %d, want 1", len(skippedResults))
	}
	sk := skippedResults[0]
	if sk.Item.Hero.Slug != "winter" || sk.Item.Overlay.Kind != render.KindStatic {
		t.Fatalf("wrong item skipped: %s/%s", sk.Item.Hero.Slug, sk.Item.Overlay.Slug)
	}
	if sk.Reason != "no stored position" {
		t.Fatalf("skip reason = %q", sk.Reason)
	}

	if len(f.static.calls) != 1 {
		t.Fatalf("static calls = %d, want 1", len(f.static.calls))
	}
	call := f.static.calls[0]
	if call.Hero != "summer.png" || call.Placement.X != 10 || call.Placement.Scale != 0.5 {
		t.Fatalf("static call = %+v", call)
	}
	wantOut := filepath.Join(f.cfg.OutputDirFor("1x1", "launch"), "summer__badge.png")
	if call.Out != wantOut {
		t.Fatalf("static out = %q, want %q", call.Out, wantOut)
	}

	if len(f.video.calls) != 2 {
		t.Fatalf("video calls = %d, want 2", len(f.video.calls))
	}
	for _, call := range f.video.calls {
		if call.Loops != 3 {
			t.Fatalf("video loops = %d, want 3", call.Loops)
		}
		if filepath.Ext(call.Out) != ".mp4" {
			t.Fatalf("video out = %q, want .mp4", call.Out)
		}
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	testsupport.SetPosition(t, f.store, positions.Wildcard, "badge", "1x1", render.KindStatic, render.DefaultPlacement())
	f.static.fail["winter.png"] = render.Wrap(render.ErrAssetDecode, "compositor", "decode", "winter.png", errors.New("truncated"))

	report, err := f.runner.Run(ctx, f.lib, batch.Selection{Kinds: []string{"static"}}, "launch")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rendered, skipped, failed := report.Counts()
	if rendered != 1 || skipped != 0 || failed != 1 {
		t.Fatalf("counts = %d/%d/%d, want 1 rendered, 0 skipped, 1 failed", rendered, skipped, failed)
	}

	failures := report.ByStatus(batch.StatusFailed)
	if failures[0].Item.Hero.Slug != "winter" {
		t.Fatalf("failed hero = %s, want winter", failures[0].Item.Hero.Slug)
	}
	if failures[0].Reason != "asset_decode" {
		t.Fatalf("failure reason = %q, want asset_decode", failures[0].Reason)
	}
	if !errors.Is(failures[0].Err, render.ErrAssetDecode) {
		t.Fatalf("failure error = %v", failures[0].Err)
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	testsupport.SetPosition(t, f.store, positions.Wildcard, "badge", "1x1", render.KindStatic, render.DefaultPlacement())
	f.static.onRender = func(context.Context) { cancel() }

	report, err := f.runner.Run(ctx, f.lib, batch.Selection{Kinds: []string{"static"}}, "launch")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("results = %d, want every planned item reported", len(report.Results))
	}
	if report.Results[0].Status != batch.StatusRendered {
		t.Fatalf("first result = %+v, want rendered", report.Results[0])
	}
	last := report.Results[1]
	if last.Status != batch.StatusSkipped || last.Reason != "canceled" {
		t.Fatalf("unprocessed item = %s/%q, want skipped with reason canceled", last.Status, last.Reason)
	}
	if last.Item.Hero.Slug != "winter" {
		t.Fatalf("canceled item hero = %s, want winter", last.Item.Hero.Slug)
	}
	if len(f.static.calls) != 1 {
		t.Fatalf("static calls = %d, want 1 before cancellation", len(f.static.calls))
	}
}

func TestPlanMarksMissingPositions(t *testing.T) {
	f := newFixture(t)

	items, err := f.runner.Plan(context.Background(), f.lib, batch.Selection{Kinds: []string{"static"}}, "launch")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.Position != nil {
			t.Fatalf("expected nil position for %s/%s", item.Hero.Slug, item.Overlay.Slug)
		}
	}
}

func TestPlanSelectionErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		sel     batch.Selection
		wantErr error
	}{
		{"unknown format", batch.Selection{Formats: []string{"3x7"}}, render.ErrUnknownFormat},
		{"unknown overlay", batch.Selection{Overlays: []string{"ghost"}}, render.ErrNotFound},
		{"unknown hero", batch.Selection{Heroes: []string{"ghost"}}, render.ErrNotFound},
		{"bad kind", batch.Selection{Kinds: []string{"gif"}}, render.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.runner.Plan(ctx, f.lib, tt.sel, "launch"); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Plan() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlanFiltersSelection(t *testing.T) {
	f := newFixture(t)

	items, err := f.runner.Plan(context.Background(), f.lib, batch.Selection{
		Heroes:   []string{"summer"},
		Overlays: []string{"confetti"},
		Kinds:    []string{"video"},
	}, "launch")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	item := items[0]
	if item.Hero.Slug != "summer" || item.Overlay.Slug != "confetti" || item.Format.Tag != "1x1" {
		t.Fatalf("item = %s/%s/%s", item.Hero.Slug, item.Overlay.Slug, item.Format.Tag)
	}
}

func TestPlanScopesOverlaysToFormat(t *testing.T) {
	f := newFixture(t)
	c := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	testsupport.WriteImage(t, filepath.Join(f.cfg.Paths.AssetsDir, "heroes", "9x16", "autumn.png"), 8, 8, c)
	testsupport.WriteImage(t, filepath.Join(f.cfg.Paths.AssetsDir, "overlays", "static", "9x16", "ribbon.png"), 4, 4, c)

	lib, err := assets.Scan(f.cfg.Paths.AssetsDir)
	if err != nil {
		t.Fatalf("assets.Scan: %v", err)
	}

	items, err := f.runner.Plan(context.Background(), lib, batch.Selection{Kinds: []string{"static"}}, "launch")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 2 square plus 1 tall", len(items))
	}
	for _, item := range items {
		if item.Overlay.Format != item.Format.Tag {
			t.Fatalf("overlay %s scoped to %s paired with format %s",
				item.Overlay.Slug, item.Overlay.Format, item.Format.Tag)
		}
		if item.Format.Tag == "9x16" && item.Overlay.Slug != "ribbon" {
			t.Fatalf("9x16 overlay = %s, want ribbon", item.Overlay.Slug)
		}
	}

	// A slug present only in one format must still satisfy an explicit
	// selection spanning several formats.
	items, err = f.runner.Plan(context.Background(), lib, batch.Selection{Overlays: []string{"ribbon"}}, "launch")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(items) != 1 || items[0].Format.Tag != "9x16" {
		t.Fatalf("items = %+v, want single 9x16 pairing", items)
	}
}
