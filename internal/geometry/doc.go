// Package geometry translates normalized placements into pixel rectangles.
// It is pure math: no decoding, no clipping, no I/O. Out-of-bounds and
// negative rectangles are legal results and are clipped later by the
// compositor.
package geometry
