package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"easel/internal/compositor"
	"easel/internal/config"
	"easel/internal/preview"
	"easel/internal/render"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var heroSlug, overlaySlug, formatTag, kindValue, outPath string
	var x, y, scale, frame float64
	var fullSize bool

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Write a preview PNG for one hero and overlay combination",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(heroSlug) == "" || strings.TrimSpace(overlaySlug) == "" ||
				strings.TrimSpace(formatTag) == "" || strings.TrimSpace(kindValue) == "" {
				return fmt.Errorf("--hero, --overlay, --format, and --kind are required")
			}
			kind, err := render.ParseKind(kindValue)
			if err != nil {
				return err
			}
			registry, err := ctx.registry()
			if err != nil {
				return err
			}
			format, err := registry.Lookup(formatTag)
			if err != nil {
				return err
			}
			lib, err := ctx.library()
			if err != nil {
				return err
			}
			hero, ok := lib.FindHero(format.Tag, heroSlug)
			if !ok {
				return render.Wrap(render.ErrNotFound, "cli", "preview",
					fmt.Sprintf("hero %q not found for format %s", heroSlug, format.Tag), nil)
			}
			overlay, ok := lib.FindOverlay(format.Tag, kind, overlaySlug)
			if !ok {
				return render.Wrap(render.ErrNotFound, "cli", "preview",
					fmt.Sprintf("%s overlay %q not found for format %s", kind, overlaySlug, format.Tag), nil)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			generator, err := ctx.previewGenerator(store)
			if err != nil {
				return err
			}

			opts := previewOptions(cmd, x, y, scale, frame, fullSize)
			img, err := generator.Creative(cmd.Context(), hero, overlay, format, opts)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outPath)
			if target == "" {
				target = fmt.Sprintf("preview_%s_%s_%s.png", hero.Slug, overlay.Slug, format.Tag)
			}
			target, err = config.ExpandPath(target)
			if err != nil {
				return err
			}
			if err := compositor.WritePNG(target, img); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote preview to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&heroSlug, "hero", "", "Hero slug")
	cmd.Flags().StringVar(&overlaySlug, "overlay", "", "Overlay slug")
	cmd.Flags().StringVar(&formatTag, "format", "", "Output format tag")
	cmd.Flags().StringVar(&kindValue, "kind", "", "Overlay kind (static or video)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Preview output path (defaults to the working directory)")
	cmd.Flags().Float64Var(&x, "x", 0, "Override the stored left edge in canvas pixels")
	cmd.Flags().Float64Var(&y, "y", 0, "Override the stored top edge in canvas pixels")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Override the stored scale factor")
	cmd.Flags().Float64Var(&frame, "frame", 0, "Override the stored preview frame fraction")
	cmd.Flags().BoolVar(&fullSize, "full-size", false, "Skip the display downscale")
	return cmd
}

// previewOptions builds overrides from the flags that were explicitly set.
// Placement flags travel together: setting any of x/y/scale overrides the
// whole stored placement.
func previewOptions(cmd *cobra.Command, x, y, scale, frame float64, fullSize bool) preview.Options {
	opts := preview.Options{FullSize: fullSize}
	if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") || cmd.Flags().Changed("scale") {
		opts.Placement = &render.Placement{X: x, Y: y, Scale: scale}
	}
	if cmd.Flags().Changed("frame") {
		opts.Fraction = &frame
	}
	return opts
}
