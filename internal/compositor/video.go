package compositor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"easel/internal/aspect"
	"easel/internal/fileutil"
	"easel/internal/geometry"
	"easel/internal/logging"
	"easel/internal/media/ffmpeg"
	"easel/internal/media/ffprobe"
	"easel/internal/render"
)

// EncodeSettings are the fixed encode parameters applied to every video
// render in a run.
type EncodeSettings struct {
	FrameRate int
	CRF       int
	Preset    string
}

// Prober inspects overlay containers ahead of an encode.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// VideoPlan describes a video render before any encoding starts.
type VideoPlan struct {
	OverlayWidth   int
	OverlayHeight  int
	NativeDuration float64
	Loops          int
	Duration       float64
}

// PlannedDuration returns the output duration for a looped overlay: loops
// times the overlay's native duration.
func PlannedDuration(nativeSeconds float64, loops int) float64 {
	return nativeSeconds * float64(loops)
}

// Video renders looped alpha-channel video overlays over still heroes.
type Video struct {
	runner *ffmpeg.Runner
	prober Prober
	encode EncodeSettings
	logger *slog.Logger
}

func NewVideo(runner *ffmpeg.Runner, prober Prober, encode EncodeSettings, logger *slog.Logger) *Video {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Video{
		runner: runner,
		prober: prober,
		encode: encode,
		logger: logger.With(logging.String(logging.FieldComponent, "compositor")),
	}
}

// Plan probes the overlay and validates it for rendering. Overlays must carry
// a video stream with an alpha-capable pixel format, known dimensions, and a
// known duration.
func (v *Video) Plan(ctx context.Context, overlayPath string, loops int) (VideoPlan, error) {
	if loops < 1 {
		return VideoPlan{}, render.Wrap(render.ErrValidation, "compositor", "plan",
			fmt.Sprintf("loop count %d, must be at least 1", loops), nil)
	}

	probe, err := v.prober.Inspect(ctx, overlayPath)
	if err != nil {
		return VideoPlan{}, render.Wrap(render.ErrAssetDecode, "compositor", "probe overlay", overlayPath, err)
	}
	stream, ok := probe.FirstVideoStream()
	if !ok {
		return VideoPlan{}, render.Wrap(render.ErrUnsupportedFormat, "compositor", "probe overlay",
			fmt.Sprintf("%s has no video stream", overlayPath), nil)
	}
	if !ffprobe.PixelFormatHasAlpha(stream.PixFmt) {
		return VideoPlan{}, render.Wrap(render.ErrMissingAlpha, "compositor", "probe overlay",
			fmt.Sprintf("%s pixel format %q has no alpha channel", overlayPath, stream.PixFmt), nil)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return VideoPlan{}, render.Wrap(render.ErrAssetDecode, "compositor", "probe overlay",
			fmt.Sprintf("%s reports no frame dimensions", overlayPath), nil)
	}
	native := probe.DurationSeconds()
	if native <= 0 {
		return VideoPlan{}, render.Wrap(render.ErrAssetDecode, "compositor", "probe overlay",
			fmt.Sprintf("%s reports no duration", overlayPath), nil)
	}

	return VideoPlan{
		OverlayWidth:   stream.Width,
		OverlayHeight:  stream.Height,
		NativeDuration: native,
		Loops:          loops,
		Duration:       PlannedDuration(native, loops),
	}, nil
}

// Render composites overlayPath looped loops times over heroPath normalized
// to format, encoding the result to outPath as an H.264 MP4.
func (v *Video) Render(ctx context.Context, heroPath, overlayPath string, format aspect.Format, placement render.Placement, loops int, outPath string) error {
	plan, err := v.Plan(ctx, overlayPath, loops)
	if err != nil {
		return err
	}
	box, err := geometry.Resolve(format.Width, format.Height, plan.OverlayWidth, plan.OverlayHeight, placement)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return render.Wrap(render.ErrRenderFailed, "compositor", "prepare output", outPath, err)
	}
	temp := fileutil.TempSibling(outPath)
	args := buildVideoArgs(heroPath, overlayPath, format, box, plan, v.encode, temp)

	v.logger.Debug("encoding video creative",
		logging.String(logging.FieldFormat, format.Tag),
		logging.String("output", outPath),
		logging.Float64("duration_s", plan.Duration),
		logging.Int("loops", plan.Loops))

	if err := v.runner.Run(ctx, args, func(line string) {
		v.logger.Debug("ffmpeg", logging.String("line", line))
	}); err != nil {
		_ = os.Remove(temp)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return render.Wrap(render.ErrRenderFailed, "compositor", "encode",
			fmt.Sprintf("hero %s overlay %s", heroPath, overlayPath), err)
	}
	if err := os.Rename(temp, outPath); err != nil {
		_ = os.Remove(temp)
		return render.Wrap(render.ErrRenderFailed, "compositor", "finalize output", outPath, err)
	}

	v.logger.Info("rendered video creative",
		logging.String(logging.FieldFormat, format.Tag),
		logging.String("output", outPath),
		logging.Float64("duration_s", plan.Duration))
	return nil
}

// buildVideoArgs assembles the ffmpeg invocation. The hero image is looped
// into a video source and normalized in-graph with the same cover-and-crop
// the static path applies, so resolved box coordinates line up across both
// paths. The overlay is resampled to the box size and forced to rgba so its
// alpha plane survives into the blend.
func buildVideoArgs(heroPath, overlayPath string, format aspect.Format, box geometry.Box, plan VideoPlan, encode EncodeSettings, outPath string) []string {
	canvas := fmt.Sprintf("%d:%d", format.Width, format.Height)

	hero := ffmpeggo.Input(heroPath, ffmpeggo.KwArgs{"loop": 1}).
		Filter("scale", ffmpeggo.Args{canvas}, ffmpeggo.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeggo.Args{canvas})
	overlay := ffmpeggo.Input(overlayPath, ffmpeggo.KwArgs{"stream_loop": plan.Loops - 1}).
		Filter("scale", ffmpeggo.Args{fmt.Sprintf("%d:%d", box.Width, box.Height)}).
		Filter("format", ffmpeggo.Args{"rgba"})

	composed := ffmpeggo.Filter([]*ffmpeggo.Stream{hero, overlay}, "overlay", ffmpeggo.Args{},
		ffmpeggo.KwArgs{"x": box.X, "y": box.Y, "shortest": 1})

	// Creatives ship silent; without -an a source audio stream would be
	// auto-mapped into the output.
	return composed.Output(outPath, ffmpeggo.KwArgs{
		"t":        formatSeconds(plan.Duration),
		"r":        encode.FrameRate,
		"c:v":      "libx264",
		"preset":   encode.Preset,
		"crf":      encode.CRF,
		"pix_fmt":  "yuv420p",
		"movflags": "+faststart",
		"an":       "",
	}).OverWriteOutput().GetArgs()
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 6, 64)
}
