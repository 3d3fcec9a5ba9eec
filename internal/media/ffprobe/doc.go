// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties (dimensions, pixel format, rates)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result cover the questions the compositing engine asks:
// duration (with stream fallback), frame rate, dimensions, and whether the
// pixel format carries an alpha channel.
package ffprobe
