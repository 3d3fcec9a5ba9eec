// Package aspect maps aspect ratio tags to canonical canvas resolutions and
// normalizes hero images onto them.
//
// The registry merges compiled-in formats (1x1, 9x16, 16x9, 4x5) with
// config overrides. Normalization scales to cover and center-crops, so the
// output always has the exact canvas dimensions and is never distorted.
package aspect
