// Package config loads, normalizes, and validates Easel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// EASEL_FFMPEG. The Config type centralizes every knob the CLI and preview
// service need, so asset/output directories, encode settings, and format
// overrides are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
