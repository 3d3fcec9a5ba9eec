package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"easel/internal/compositor"
	"easel/internal/config"
	"easel/internal/text"
)

func newTextCommand(ctx *commandContext) *cobra.Command {
	var heroPath, formatTag, outPath string
	var lineValues []string
	var yValues []int
	var family, style, colorValue, alignValue string
	var size float64

	cmd := &cobra.Command{
		Use:   "text",
		Short: "Render text lines onto a normalized hero image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(heroPath) == "" {
				return fmt.Errorf("--hero is required")
			}
			if len(lineValues) == 0 {
				return fmt.Errorf("at least one --line is required")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
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

			align, err := text.ParseAlignment(alignValue)
			if err != nil {
				return err
			}
			lineColor, err := text.ParseColor(colorValue)
			if err != nil {
				return err
			}

			lines := make([]text.Line, 0, len(lineValues))
			spacing := int(size * 1.4)
			for i, value := range lineValues {
				y := text.EdgeMargin + i*spacing
				if i < len(yValues) {
					y = yValues[i]
				}
				lines = append(lines, text.Line{
					Text:   value,
					Family: family,
					Style:  style,
					Size:   size,
					Color:  lineColor,
					Align:  align,
					Y:      y,
				})
			}

			library, err := text.LoadLibrary(cfg.Paths.FontsDir, logger)
			if err != nil {
				return err
			}
			renderer := text.NewRenderer(library, logger)

			hero, err := config.ExpandPath(heroPath)
			if err != nil {
				return err
			}
			img, err := renderer.Compose(hero, format, lines)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outPath)
			if target == "" {
				target = fmt.Sprintf("text_%s.png", format.Tag)
			}
			target, err = config.ExpandPath(target)
			if err != nil {
				return err
			}
			if err := compositor.WritePNG(target, img); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote text composite to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&heroPath, "hero", "", "Hero image path")
	cmd.Flags().StringVar(&formatTag, "format", "1x1", "Output format tag")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (defaults to the working directory)")
	cmd.Flags().StringArrayVar(&lineValues, "line", nil, "Text line (repeatable)")
	cmd.Flags().IntSliceVar(&yValues, "y", nil, "Baseline Y offsets matching --line order")
	cmd.Flags().StringVar(&family, "family", "", "Font family from the fonts directory")
	cmd.Flags().StringVar(&style, "style", text.StyleRegular, "Font style")
	cmd.Flags().Float64Var(&size, "size", text.DefaultSize, "Font size in points")
	cmd.Flags().StringVar(&colorValue, "color", "#ffffff", "Text color as hex")
	cmd.Flags().StringVar(&alignValue, "align", string(text.AlignCenter), "Horizontal alignment (left, center, right)")
	return cmd
}
