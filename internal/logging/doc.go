// Package logging assembles the structured slog loggers used across
// marquee components.
//
// It owns the console and JSON handlers, centralizes level parsing and
// log-file mirroring, and provides attr helpers plus a no-op logger for
// tests and wiring code that cannot fail. Prefer these constructors
// over hand-rolled slog setup so components emit lines with the same
// shape.
package logging
