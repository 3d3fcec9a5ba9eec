package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"easel/internal/compositor"
	"easel/internal/config"
)

var probeLoopCounts = []int{1, 2, 5}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <path>",
		Short: "Inspect a media asset and report dimensions, duration, and alpha",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			prober, err := ctx.prober()
			if err != nil {
				return err
			}
			result, err := prober.Inspect(cmd.Context(), path)
			if err != nil {
				return err
			}

			width, height := result.Dimensions()
			duration := result.DurationSeconds()
			fps := result.FrameRate()
			stream, hasVideo := result.FirstVideoStream()

			if ctx.jsonOutput() {
				payload := struct {
					Path        string             `json:"path"`
					Width       int                `json:"width"`
					Height      int                `json:"height"`
					Duration    float64            `json:"duration_s"`
					FrameRate   float64            `json:"frame_rate"`
					PixelFormat string             `json:"pixel_format,omitempty"`
					HasAlpha    bool               `json:"has_alpha"`
					Planned     map[string]float64 `json:"planned_durations_s,omitempty"`
				}{
					Path:      path,
					Width:     width,
					Height:    height,
					Duration:  duration,
					FrameRate: fps,
					HasAlpha:  result.HasAlpha(),
				}
				if hasVideo {
					payload.PixelFormat = stream.PixFmt
				}
				if duration > 0 {
					payload.Planned = make(map[string]float64, len(probeLoopCounts))
					for _, loops := range probeLoopCounts {
						payload.Planned[fmt.Sprintf("%d", loops)] = compositor.PlannedDuration(duration, loops)
					}
				}
				return writeJSON(cmd, payload)
			}

			rows := [][]string{
				{"Path", path},
				{"Dimensions", fmt.Sprintf("%dx%d", width, height)},
			}
			if duration > 0 {
				rows = append(rows, []string{"Duration", formatSecondsValue(duration)})
			}
			if fps > 0 {
				rows = append(rows, []string{"Frame rate", fmt.Sprintf("%.3f fps", fps)})
			}
			if hasVideo {
				rows = append(rows, []string{"Pixel format", stream.PixFmt})
				rows = append(rows, []string{"Alpha channel", yesNo(result.HasAlpha())})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Property", "Value"}, rows,
				[]columnAlignment{alignLeft, alignLeft}))

			if duration > 0 {
				loopRows := make([][]string, 0, len(probeLoopCounts))
				for _, loops := range probeLoopCounts {
					loopRows = append(loopRows, []string{
						fmt.Sprintf("%d", loops),
						formatSecondsValue(compositor.PlannedDuration(duration, loops)),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Loops", "Output duration"}, loopRows,
					[]columnAlignment{alignRight, alignRight}))
			}
			return nil
		},
	}
}
