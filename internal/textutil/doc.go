// Package textutil provides string distance and token helpers.
//
// Levenshtein distance is computed over runes so that CJK titles compare
// character by character. NormalizedSimilarity turns the distance into a
// score in [0,1]. EscapeToken and UnescapeToken map cache record names to
// file names and back.
package textutil
