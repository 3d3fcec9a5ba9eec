package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the registered output formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.registry()
			if err != nil {
				return err
			}
			formats := registry.Formats()

			if ctx.jsonOutput() {
				return writeJSON(cmd, formats)
			}

			rows := make([][]string, 0, len(formats))
			for _, format := range formats {
				rows = append(rows, []string{
					format.Tag,
					strconv.Itoa(format.Width),
					strconv.Itoa(format.Height),
					format.Resolution(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Tag", "Width", "Height", "Resolution"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft}))
			return nil
		},
	}
}
