// Package batch plans and executes creative render runs. A run expands the
// cartesian product of selected heroes, overlays, and output formats, looks
// up each triple's stored placement, and renders the pairs that have one.
// Pairs without a placement are reported as skipped, and a failing item never
// aborts the rest of the run.
package batch
