package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"easel/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external binaries and directory permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			problems := 0

			depRows := make([][]string, 0, 2)
			for _, status := range preflight.CheckSystemDeps(cfg) {
				state := "ok"
				if !status.Available {
					state = "missing"
					if !status.Optional {
						problems++
					}
				}
				detail := status.Detail
				if status.Available {
					version := preflight.ProbeVersion(status.Name, status.Command)
					if v := version.Detail(); v != "" {
						detail = v
					}
				}
				depRows = append(depRows, []string{status.Name, state, detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Dependency", "Status", "Detail"}, depRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft}))

			dirRows := make([][]string, 0, 5)
			for _, result := range preflight.RunAll(cfg) {
				state := "ok"
				if !result.Passed {
					state = "failed"
					problems++
				}
				dirRows = append(dirRows, []string{result.Name, state, result.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, dirRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft}))

			if problems > 0 {
				return fmt.Errorf("doctor found %d problems", problems)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
