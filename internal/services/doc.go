// Package services defines shared utilities consumed by the metadata layer and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and operation names
//     for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (invalid input, transport, cache corruption, quota) with
//     errors.Is instead of string matching.
package services
