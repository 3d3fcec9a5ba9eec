package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"easel/internal/positions"
	"easel/internal/render"
)

func newPositionsCommand(ctx *commandContext) *cobra.Command {
	positionsCmd := &cobra.Command{
		Use:   "positions",
		Short: "Inspect and manage stored overlay placements",
	}

	positionsCmd.AddCommand(newPositionsListCommand(ctx))
	positionsCmd.AddCommand(newPositionsShowCommand(ctx))
	positionsCmd.AddCommand(newPositionsSetCommand(ctx))
	positionsCmd.AddCommand(newPositionsClearCommand(ctx))

	return positionsCmd
}

func addPositionKeyFlags(cmd *cobra.Command, flags *positionKeyFlags) {
	cmd.Flags().StringVar(&flags.hero, "hero", "", "Hero slug")
	cmd.Flags().StringVar(&flags.overlay, "overlay", "", "Overlay slug")
	cmd.Flags().StringVar(&flags.format, "format", "", "Output format tag")
	cmd.Flags().StringVar(&flags.kind, "kind", "", "Overlay kind (static or video)")
	cmd.Flags().BoolVar(&flags.allHeroes, "all-heroes", false, "Apply to every hero in the format")
	cmd.Flags().BoolVar(&flags.allOverlays, "all-overlays", false, "Apply to every overlay of the kind")
}

func positionRows(records []*positions.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Format,
			rec.Kind.String(),
			rec.Hero,
			rec.Overlay,
			formatPlacement(rec.Placement),
			fmt.Sprintf("%d", rec.Loops),
			fmt.Sprintf("%.2f", rec.PreviewFrame),
		})
	}
	return rows
}

var positionHeaders = []string{"Format", "Kind", "Hero", "Overlay", "Placement", "Loops", "Frame"}

func newPositionsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every stored placement",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored positions")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(positionHeaders, positionRows(records),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}))
			return nil
		},
	}
}

func newPositionsShowCommand(ctx *commandContext) *cobra.Command {
	var keyFlags positionKeyFlags
	var resolve bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the placement stored for one combination",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keyFlags.key()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var rec *positions.Record
			if resolve {
				rec, err = store.Lookup(cmd.Context(), key)
			} else {
				rec, err = store.Get(cmd.Context(), key)
			}
			if err != nil {
				return err
			}
			if rec == nil {
				return render.Wrap(render.ErrNotFound, "cli", "show position",
					fmt.Sprintf("no stored position for %s", key), nil)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, rec)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(positionHeaders,
				positionRows([]*positions.Record{rec}),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}))
			return nil
		},
	}

	addPositionKeyFlags(cmd, &keyFlags)
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Resolve through wildcard fallbacks instead of exact match")
	return cmd
}

func newPositionsSetCommand(ctx *commandContext) *cobra.Command {
	var keyFlags positionKeyFlags
	var x, y, scale, frame float64
	var loops int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store or update the placement for one combination",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keyFlags.key()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			rec := &positions.Record{
				Hero:      key.Hero,
				Overlay:   key.Overlay,
				Format:    key.Format,
				Kind:      key.Kind,
				Placement: render.DefaultPlacement(),
				Loops:     1,
			}
			if existing, err := store.Get(cmd.Context(), key); err != nil {
				return err
			} else if existing != nil {
				rec = existing
			}

			if cmd.Flags().Changed("x") {
				rec.Placement.X = x
			}
			if cmd.Flags().Changed("y") {
				rec.Placement.Y = y
			}
			if cmd.Flags().Changed("scale") {
				rec.Placement.Scale = scale
			}
			if cmd.Flags().Changed("loops") {
				rec.Loops = loops
			}
			if cmd.Flags().Changed("frame") {
				rec.PreviewFrame = frame
			}

			stored, err := store.Set(cmd.Context(), rec)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, stored)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored position %s: %s loops=%d frame=%.2f\n",
				stored.Key(), formatPlacement(stored.Placement), stored.Loops, stored.PreviewFrame)
			return nil
		},
	}

	addPositionKeyFlags(cmd, &keyFlags)
	cmd.Flags().Float64Var(&x, "x", 0, "Overlay left edge in canvas pixels (negative crops off the left)")
	cmd.Flags().Float64Var(&y, "y", 0, "Overlay top edge in canvas pixels (negative crops off the top)")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Overlay scale factor (must be positive)")
	cmd.Flags().IntVar(&loops, "loops", 1, "Loop count for video overlays (1-10)")
	cmd.Flags().Float64Var(&frame, "frame", 0, "Preview frame fraction for video overlays (0-1)")
	return cmd
}

func newPositionsClearCommand(ctx *commandContext) *cobra.Command {
	var keyFlags positionKeyFlags

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the placement stored for one combination",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keyFlags.key()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared position %s\n", key)
			return nil
		},
	}

	addPositionKeyFlags(cmd, &keyFlags)
	return cmd
}
