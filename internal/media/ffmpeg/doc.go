// Package ffmpeg runs the ffmpeg binary with context cancellation and
// testable execution.
//
// Argument lists are built elsewhere (the compositor and sampler construct
// their filter graphs); this package owns process lifecycle: streaming
// stderr lines to a callback, capturing stdout for pipe outputs, and
// surfacing a stderr tail when ffmpeg exits nonzero. The Executor interface
// lets tests substitute a fake process.
package ffmpeg
