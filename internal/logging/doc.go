// Package logging centralizes slog construction and the structured field
// conventions used across the pipeline.
//
// Loggers are built from config (level, console or json format, optional log
// file) and carried through context so per-source and per-unit fields appear
// on every record without threading them by hand.
package logging
