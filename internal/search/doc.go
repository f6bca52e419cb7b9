// Package search turns loosely written titles into metadata queries and
// scores the results.
//
// CleanTitle and CoreTitle strip season markers, years and release noise.
// Generate expands a title into an ordered, deduplicated list of queries
// (cleaned, core, CJK series markers removed, numeral variants and English
// keyword substitutions) capped to bound request volume. Score rates a search
// result against a query and Thresholds.Classify decides whether it ends the
// search, is kept as a fallback, or is discarded.
package search
