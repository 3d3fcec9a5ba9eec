package sampler

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"easel/internal/logging"
	"easel/internal/media/ffmpeg"
	"easel/internal/media/ffprobe"
	"easel/internal/render"
)

// fallbackInterval stands in for one frame interval when the stream does not
// report a frame rate.
const fallbackInterval = 1.0 / 30

// Prober inspects containers ahead of frame extraction.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Sampler pulls single frames out of video files.
type Sampler struct {
	runner *ffmpeg.Runner
	prober Prober
	logger *slog.Logger
}

func New(runner *ffmpeg.Runner, prober Prober, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sampler{
		runner: runner,
		prober: prober,
		logger: logger.With(logging.String(logging.FieldComponent, "sampler")),
	}
}

// Timestamp maps a fraction of a video's duration onto a seekable timestamp.
// The result is clamped to the last decodable frame so fraction 1.0 lands on
// the final frame instead of past the end of the stream.
func Timestamp(durationSeconds, fps, fraction float64) float64 {
	interval := fallbackInterval
	if fps > 0 {
		interval = 1.0 / fps
	}
	last := durationSeconds - interval
	if last < 0 {
		last = 0
	}
	ts := durationSeconds * fraction
	if ts > last {
		ts = last
	}
	if ts < 0 {
		ts = 0
	}
	return ts
}

// Frame decodes the frame at the given fraction of path's duration. The
// fraction must lie in [0, 1]: 0 samples the first frame, 1 the last.
func (s *Sampler) Frame(ctx context.Context, path string, fraction float64) (image.Image, error) {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return nil, render.Wrap(render.ErrInvalidFraction, "sampler", "sample frame",
			fmt.Sprintf("fraction %v outside [0, 1]", fraction), nil)
	}

	probe, err := s.prober.Inspect(ctx, path)
	if err != nil {
		return nil, render.Wrap(render.ErrAssetDecode, "sampler", "probe", path, err)
	}
	if _, ok := probe.FirstVideoStream(); !ok {
		return nil, render.Wrap(render.ErrUnsupportedFormat, "sampler", "probe",
			fmt.Sprintf("%s has no video stream", path), nil)
	}
	duration := probe.DurationSeconds()
	if duration <= 0 {
		return nil, render.Wrap(render.ErrAssetDecode, "sampler", "probe",
			fmt.Sprintf("%s reports no duration", path), nil)
	}

	ts := Timestamp(duration, probe.FrameRate(), fraction)
	args := buildFrameArgs(path, ts)

	s.logger.Debug("sampling frame",
		logging.String("path", path),
		logging.Float64("fraction", fraction),
		logging.Float64("timestamp_s", ts))

	data, err := s.runner.Output(ctx, args)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, render.Wrap(render.ErrRenderFailed, "sampler", "extract frame", path, err)
	}

	frame, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, render.Wrap(render.ErrAssetDecode, "sampler", "decode frame", path, err)
	}
	return frame, nil
}

// buildFrameArgs seeks before the input is opened, then emits exactly one
// PNG-encoded frame on stdout.
func buildFrameArgs(path string, timestamp float64) []string {
	return ffmpeggo.Input(path, ffmpeggo.KwArgs{"ss": formatSeconds(timestamp)}).
		Output("pipe:1", ffmpeggo.KwArgs{
			"frames:v": 1,
			"f":        "image2pipe",
			"c:v":      "png",
		}).GetArgs()
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 6, 64)
}
