package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"easel/internal/assets"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Index the asset library and list heroes and overlays",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library()
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, struct {
					Root     string           `json:"root"`
					Heroes   []assets.Hero    `json:"heroes"`
					Overlays []assets.Overlay `json:"overlays"`
				}{Root: lib.Root(), Heroes: lib.Heroes, Overlays: lib.Overlays})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Asset library: %s\n\n", lib.Root())

			if len(lib.Heroes) == 0 {
				fmt.Fprintln(out, "No heroes found")
			} else {
				rows := make([][]string, 0, len(lib.Heroes))
				for _, hero := range lib.Heroes {
					group := hero.Group
					if group == "" {
						group = "-"
					}
					rows = append(rows, []string{hero.Format, hero.Slug, hero.Label, group})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Format", "Hero", "Label", "Group"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft}))
			}

			if len(lib.Overlays) == 0 {
				fmt.Fprintln(out, "No overlays found")
			} else {
				rows := make([][]string, 0, len(lib.Overlays))
				for _, overlay := range lib.Overlays {
					group := overlay.Group
					if group == "" {
						group = "-"
					}
					rows = append(rows, []string{overlay.Kind.String(), overlay.Format, overlay.Slug, overlay.Label, group})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Kind", "Format", "Overlay", "Label", "Group"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}))
			}

			fmt.Fprintf(out, "%d heroes, %d overlays\n", len(lib.Heroes), len(lib.Overlays))
			return nil
		},
	}
}
