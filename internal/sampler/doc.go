// Package sampler extracts single frames from video overlays by fractional
// position, for previews and thumbnails. Sampling seeks before decode so a
// frame near the end of a long overlay costs the same as the first frame.
package sampler
