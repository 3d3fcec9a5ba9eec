// Package positions persists overlay placements keyed by hero, overlay,
// format, and overlay kind. Batch renders consult the store to decide where
// each overlay lands on each hero; pairs with no stored placement are skipped
// rather than rendered at a guessed location.
//
// Hero and overlay components accept the "*" wildcard so one record can
// position an overlay across every hero (or vice versa). Lookup resolves from
// most to least specific: exact, hero wildcard on overlay, overlay wildcard
// on hero, both wildcarded. Format and kind always match exactly.
package positions
