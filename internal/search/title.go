package search

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

var (
	alternateTitleSplit = regexp.MustCompile(`\s*[/|]\s*`)

	// Markers are removed in order; each match collapses to a single space.
	titleNoisePatterns = []*regexp.Regexp{
		// seasons
		regexp.MustCompile(`\s*第[一二三四五六七八九十\d]+季\s*`),
		regexp.MustCompile(`(?i)\s*\bSeason\s*\d+\s*`),
		regexp.MustCompile(`(?i)\s*\bS\d+\b\s*`),
		regexp.MustCompile(`\s*年番\d*\s*`),
		// episodes
		regexp.MustCompile(`\s*第\d+-?\d*集\s*`),
		regexp.MustCompile(`\s*\d+-?\d*集\s*`),
		regexp.MustCompile(`(?i)\s*\bEP?\d+(-\d+)?\b\s*`),
		// release year
		regexp.MustCompile(`\s*\(\d{4}\)\s*`),
		// release phrases
		regexp.MustCompile(`\s*(完结篇|特别篇|剧场版|电影版|TV动画|TV版|网络版|导演剪辑版|完整版|未删减版)\s*`),
		regexp.MustCompile(`\s*\bOVA\b\s*`),
		// quality tags
		regexp.MustCompile(`(?i)\s*(\bHD\b|\b4K\b|蓝光|\bDVD\b)\s*`),
	}

	whitespaceRun = regexp.MustCompile(`\s+`)
	corePrefix    = regexp.MustCompile(`^(.+?)[\s:：\-]`)
)

// CleanTitle strips decoration that the metadata service never indexes:
// alternate titles after "/" or "|", season and episode markers, bracketed
// years, release phrases and quality tags. Full-width ASCII is folded first
// so "（2021）" and "(2021)" clean the same way.
func CleanTitle(title string) string {
	title = strings.TrimSpace(width.Fold.String(title))
	if title == "" {
		return ""
	}
	cleaned := strings.TrimSpace(alternateTitleSplit.Split(title, 2)[0])
	for _, pattern := range titleNoisePatterns {
		cleaned = pattern.ReplaceAllString(cleaned, " ")
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))
}

// CoreTitle returns the part of the cleaned title before the first space,
// colon or dash. Titles without a separator are returned cleaned.
func CoreTitle(title string) string {
	cleaned := CleanTitle(title)
	if match := corePrefix.FindStringSubmatch(cleaned); len(match) == 2 {
		if core := strings.TrimSpace(match[1]); core != "" {
			return core
		}
	}
	return cleaned
}

// ContainsCJK reports whether text contains a CJK unified ideograph.
func ContainsCJK(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// normalizeForComparison lowercases and drops whitespace and punctuation.
func normalizeForComparison(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	folded := strings.ToLower(width.Fold.String(input))
	var builder strings.Builder
	builder.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r), unicode.IsPunct(r), unicode.IsSymbol(r):
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
