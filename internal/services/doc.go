// Package services defines shared utilities consumed by the recognition
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp batch sources, unit indexes, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the classification the tiered strategy escalates on (transient vs
//     blocked vs empty vs fatal).
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability, retries) stays uniform.
package services
