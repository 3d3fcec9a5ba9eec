// Package logging builds the slog loggers used across Easel.
//
// Two output formats are supported: a human console format that prefixes
// messages with the emitting component and flattens attributes into key=val
// pairs, and a JSON format with stable ts/level/msg keys for file output.
// Helpers mirror the slog attribute constructors so call sites stay terse,
// and WithContext augments a logger with run and request identifiers carried
// on a context.
package logging
