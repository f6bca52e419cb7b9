// Package logs reads back the JSON log files filmtrack writes.
//
// Tail returns the last N lines or everything after a byte offset, and can
// wait for new lines in follow mode. A Filter narrows the output to the
// structured fields the resolver and cache emit (component, event_type,
// decision_type, level), so `filmtrack logs --event cache_quota` shows only
// quota trimming and `--decision tmdb_match` shows only match decisions.
package logs
