package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"easel/internal/batch"
	"easel/internal/compositor"
	"easel/internal/render"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var sel batch.Selection
	var kindValue string
	var batchName string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render every selected hero, overlay, and format combination",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if kindValue != "" {
				sel.Kinds = []string{kindValue}
			}

			lib, err := ctx.library()
			if err != nil {
				return err
			}
			registry, err := ctx.registry()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			static := compositor.NewStatic(logger)
			video, err := ctx.videoCompositor()
			if err != nil {
				return err
			}
			runner := batch.NewRunner(cfg, registry, store, static, video, logger)

			if dryRun {
				items, err := runner.Plan(cmd.Context(), lib, sel, batchName)
				if err != nil {
					return err
				}
				return printPlan(cmd, ctx, items)
			}

			lock := flock.New(filepath.Join(cfg.Paths.OutputDir, ".easel-render.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire render lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another render is already writing to %s", cfg.Paths.OutputDir)
			}
			defer lock.Unlock()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, runErr := runner.Run(runCtx, lib, sel, batchName)
			if report != nil {
				if err := printReport(cmd, ctx, report); err != nil {
					return err
				}
			}
			if runErr != nil {
				if errors.Is(runErr, context.Canceled) {
					return context.Canceled
				}
				return runErr
			}

			_, _, failed := report.Counts()
			if failed > 0 {
				return fmt.Errorf("%d of %d items failed", failed, len(report.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&sel.Formats, "formats", nil, "Restrict to these format tags")
	cmd.Flags().StringSliceVar(&sel.Heroes, "heroes", nil, "Restrict to these hero slugs")
	cmd.Flags().StringSliceVar(&sel.Overlays, "overlays", nil, "Restrict to these overlay slugs")
	cmd.Flags().StringVar(&kindValue, "kind", "", "Restrict to one overlay kind (static or video)")
	cmd.Flags().StringVar(&batchName, "batch", "", "Batch name used in output paths (defaults to a timestamp)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without rendering")
	return cmd
}

func printPlan(cmd *cobra.Command, ctx *commandContext, items []batch.Item) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, items)
	}

	rows := make([][]string, 0, len(items))
	willRender := 0
	for _, item := range items {
		action := "skip (no stored position)"
		placement := "-"
		if item.Position != nil {
			action = "render"
			placement = formatPlacement(item.Position.Placement)
			willRender++
		}
		rows = append(rows, []string{
			item.Format.Tag,
			item.Overlay.Kind.String(),
			item.Hero.Slug,
			item.Overlay.Slug,
			placement,
			action,
			item.OutPath,
		})
	}
	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "Nothing to render for the given selection")
		return nil
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Format", "Kind", "Hero", "Overlay", "Placement", "Action", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}))
	fmt.Fprintf(out, "%d of %d combinations would render\n", willRender, len(items))
	return nil
}

func printReport(cmd *cobra.Command, ctx *commandContext, report *batch.Report) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, reportPayload(report))
	}

	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		detail := result.Reason
		if result.Status == batch.StatusRendered {
			detail = result.Item.OutPath
		}
		rows = append(rows, []string{
			result.Item.Format.Tag,
			result.Item.Overlay.Kind.String(),
			result.Item.Hero.Slug,
			result.Item.Overlay.Slug,
			string(result.Status),
			formatElapsed(result.Elapsed),
			detail,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Format", "Kind", "Hero", "Overlay", "Status", "Elapsed", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))

	rendered, skipped, failed := report.Counts()
	fmt.Fprintf(out, "Batch %s: %d rendered, %d skipped, %d failed in %s\n",
		report.BatchName, rendered, skipped, failed, formatElapsed(report.Duration()))
	return nil
}

type reportResultPayload struct {
	Format  string `json:"format"`
	Kind    string `json:"kind"`
	Hero    string `json:"hero"`
	Overlay string `json:"overlay"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
	Output  string `json:"output,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
}

func reportPayload(report *batch.Report) any {
	results := make([]reportResultPayload, 0, len(report.Results))
	for _, result := range report.Results {
		payload := reportResultPayload{
			Format:  result.Item.Format.Tag,
			Kind:    result.Item.Overlay.Kind.String(),
			Hero:    result.Item.Hero.Slug,
			Overlay: result.Item.Overlay.Slug,
			Status:  string(result.Status),
			Reason:  result.Reason,
		}
		if result.Err != nil {
			payload.Error = result.Err.Error()
			payload.Reason = render.Kind(result.Err)
		}
		if result.Status == batch.StatusRendered {
			payload.Output = result.Item.OutPath
		}
		if result.Elapsed > 0 {
			payload.Elapsed = formatElapsed(result.Elapsed)
		}
		results = append(results, payload)
	}
	rendered, skipped, failed := report.Counts()
	return struct {
		RunID    string                `json:"run_id"`
		Batch    string                `json:"batch"`
		Rendered int                   `json:"rendered"`
		Skipped  int                   `json:"skipped"`
		Failed   int                   `json:"failed"`
		Results  []reportResultPayload `json:"results"`
	}{report.RunID, report.BatchName, rendered, skipped, failed, results}
}
