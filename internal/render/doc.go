// Package render defines the vocabulary shared by every compositing
// component: overlay kinds, placements, and the error taxonomy.
//
// Key responsibilities:
//   - The OverlayKind tagged variant that drives static versus video
//     dispatch throughout the engine.
//   - Placement, the saved position and scale applied to an overlay on a
//     normalized canvas.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (decode, geometry, missing alpha, render) without parsing
//     message strings.
package render
