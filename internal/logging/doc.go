// Package logging assembles the structured slog loggers used across the
// rendering pipeline.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes attribute helpers so pipeline code tags log lines with run IDs,
// aspect ratios, and output variants using one set of field names. It also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
