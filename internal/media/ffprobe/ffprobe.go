package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
	raw     []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	PixFmt       string `json:"pix_fmt"`
	Duration     string `json:"duration"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), output...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// Client binds an ffprobe binary for repeated inspections.
type Client struct {
	binary string
}

func NewClient(binary string) Client {
	return Client{binary: binary}
}

// Inspect probes path with the bound binary.
func (c Client) Inspect(ctx context.Context, path string) (Result, error) {
	return Inspect(ctx, c.binary, path)
}

// FirstVideoStream returns the first video stream and whether one exists.
func (r Result) FirstVideoStream() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	return Stream{}, false
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			count++
		}
	}
	return count
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the media duration in seconds. Containers that omit
// a format-level duration (common for webm overlays) fall back to the first
// video stream's duration. Unparseable values report as 0.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 && !math.IsNaN(d) {
		return d
	}
	if stream, ok := r.FirstVideoStream(); ok {
		if d := parseFloat(stream.Duration); d > 0 && !math.IsNaN(d) {
			return d
		}
	}
	return 0
}

// HasAlpha reports whether the first video stream carries an alpha channel,
// judged by its pixel format.
func (r Result) HasAlpha() bool {
	stream, ok := r.FirstVideoStream()
	if !ok {
		return false
	}
	return PixelFormatHasAlpha(stream.PixFmt)
}

// Dimensions returns the first video stream's width and height, or zeros when
// no video stream exists.
func (r Result) Dimensions() (width, height int) {
	stream, ok := r.FirstVideoStream()
	if !ok {
		return 0, 0
	}
	return stream.Width, stream.Height
}

// FrameRate returns the first video stream's frame rate in frames per second,
// or 0 when it cannot be determined.
func (r Result) FrameRate() float64 {
	stream, ok := r.FirstVideoStream()
	if !ok {
		return 0
	}
	if fps := parseRatio(stream.RFrameRate); fps > 0 {
		return fps
	}
	return parseRatio(stream.AvgFrameRate)
}

// alphaMarkers are the pix_fmt fragments that indicate an alpha plane.
var alphaMarkers = []string{"rgba", "bgra", "argb", "abgr", "yuva", "gbrap"}

// PixelFormatHasAlpha reports whether an ffprobe pix_fmt value names a pixel
// layout with an alpha channel.
func PixelFormatHasAlpha(pixFmt string) bool {
	p := strings.ToLower(strings.TrimSpace(pixFmt))
	if p == "" {
		return false
	}
	for _, marker := range alphaMarkers {
		if strings.Contains(p, marker) {
			return true
		}
	}
	// Grayscale+alpha formats (ya8, ya16le, ...).
	return strings.HasPrefix(p, "ya")
}

func parseRatio(value string) float64 {
	left, right, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		parsed := parseFloat(value)
		if math.IsNaN(parsed) || parsed <= 0 {
			return 0
		}
		return parsed
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(left), 64)
	if err != nil {
		return 0
	}
	den, err := strconv.ParseFloat(strings.TrimSpace(right), 64)
	if err != nil || den == 0 {
		return 0
	}
	ratio := num / den
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0
	}
	return ratio
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
