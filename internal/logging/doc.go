// Package logging assembles structured slog loggers and formatting helpers used
// across the metadata layer.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context-aware helpers so resolver code can automatically tag log
// lines with operation names and correlation IDs. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
