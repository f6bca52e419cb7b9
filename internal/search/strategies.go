package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// DefaultMaxStrategies bounds the number of queries one resolution may issue.
const DefaultMaxStrategies = 8

const minQueryRunes = 2

var cjkSeriesMarkers = regexp.MustCompile(`第.*季|第.*集`)

// "10" precedes "1" so that ten maps to 十 rather than 一0.
var (
	arabicToCJK = strings.NewReplacer(
		"10", "十",
		"1", "一", "2", "二", "3", "三", "4", "四", "5", "五",
		"6", "六", "7", "七", "8", "八", "9", "九",
	)
	cjkToArabic = strings.NewReplacer(
		"一", "1", "二", "2", "三", "3", "四", "4", "五", "5",
		"六", "6", "七", "7", "八", "8", "九", "9", "十", "10",
	)
)

type keywordMapping struct {
	term    string
	english []string
}

// keywordTable is ordered; matches contribute their English terms in this order.
var keywordTable = []keywordMapping{
	{"传说", []string{"Legend"}},
	{"英雄", []string{"Hero"}},
	{"王者", []string{"King"}},
	{"战士", []string{"Warrior"}},
	{"冒险", []string{"Adventure"}},
	{"奇迹", []string{"Miracle"}},
	{"梦想", []string{"Dream"}},
	{"未来", []string{"Future"}},
	{"时空", []string{"Time", "Space"}},
	{"宇宙", []string{"Universe", "Cosmos"}},
	{"星际", []string{"Interstellar", "Star"}},
	{"银河", []string{"Galaxy"}},
	{"龙", []string{"Dragon"}},
	{"凤", []string{"Phoenix"}},
	{"仙", []string{"Immortal", "Fairy"}},
	{"神", []string{"God", "Divine"}},
	{"魔", []string{"Demon", "Magic"}},
	{"武", []string{"Martial", "Fighting"}},
	{"剑", []string{"Sword"}},
	{"刀", []string{"Blade"}},
	{"拳", []string{"Fist"}},
	{"功夫", []string{"Kung Fu"}},
	{"江湖", []string{"Jianghu"}},
	{"侠", []string{"Hero", "Knight"}},
	{"皇", []string{"Emperor", "Imperial"}},
	{"王", []string{"King", "Royal"}},
	{"公主", []string{"Princess"}},
	{"王子", []string{"Prince"}},
	{"学院", []string{"Academy", "School"}},
	{"高校", []string{"High School"}},
	{"大学", []string{"University", "College"}},
	{"青春", []string{"Youth"}},
	{"恋爱", []string{"Love", "Romance"}},
	{"友情", []string{"Friendship"}},
	{"家族", []string{"Family"}},
	{"兄弟", []string{"Brother"}},
	{"姐妹", []string{"Sister"}},
	{"父亲", []string{"Father"}},
	{"母亲", []string{"Mother"}},
	{"儿子", []string{"Son"}},
	{"女儿", []string{"Daughter"}},
}

// Strategies is the ordered set of queries tried for one title.
type Strategies struct {
	// Queries are title variants usable against any search endpoint.
	Queries []string
	// Keywords are English substitutions for CJK theme words. They only make
	// sense against the multi search endpoint.
	Keywords []string
}

// All returns queries followed by keywords.
func (s Strategies) All() []string {
	out := make([]string, 0, len(s.Queries)+len(s.Keywords))
	out = append(out, s.Queries...)
	return append(out, s.Keywords...)
}

// Len returns the total number of strategies.
func (s Strategies) Len() int {
	return len(s.Queries) + len(s.Keywords)
}

// Generate builds strategies for title capped at DefaultMaxStrategies.
func Generate(title string) Strategies {
	return GenerateWithLimit(title, DefaultMaxStrategies)
}

// GenerateWithLimit builds strategies in priority order: cleaned title, core
// title, CJK series markers stripped, numeral variants, then English keywords.
// The combined output is deduplicated, drops entries shorter than two
// characters and holds at most limit entries.
func GenerateWithLimit(title string, limit int) Strategies {
	if limit <= 0 {
		limit = DefaultMaxStrategies
	}
	title = strings.TrimSpace(width.Fold.String(title))
	if title == "" {
		return Strategies{}
	}

	cleaned := CleanTitle(title)
	if cleaned == "" {
		cleaned = title
	}
	candidates := []string{cleaned, CoreTitle(title)}
	if ContainsCJK(title) {
		if stripped := strings.TrimSpace(cjkSeriesMarkers.ReplaceAllString(title, "")); stripped != title {
			candidates = append(candidates, stripped)
		}
	}
	candidates = append(candidates, NumberVariants(cleaned)...)

	seen := make(map[string]struct{}, len(candidates))
	var result Strategies
	accept := func(value string) bool {
		value = strings.TrimSpace(value)
		if utf8.RuneCountInString(value) < minQueryRunes {
			return false
		}
		if _, ok := seen[value]; ok {
			return false
		}
		if result.Len() >= limit {
			return false
		}
		seen[value] = struct{}{}
		return true
	}
	for _, candidate := range candidates {
		if accept(candidate) {
			result.Queries = append(result.Queries, strings.TrimSpace(candidate))
		}
	}
	for _, keyword := range EnglishKeywords(title) {
		if accept(keyword) {
			result.Keywords = append(result.Keywords, keyword)
		}
	}
	return result
}

// NumberVariants returns title with Arabic digits replaced by CJK numerals
// and title with CJK numerals replaced by Arabic digits, omitting variants
// identical to the input.
func NumberVariants(title string) []string {
	var variants []string
	if cjk := arabicToCJK.Replace(title); cjk != title {
		variants = append(variants, cjk)
	}
	if arabic := cjkToArabic.Replace(title); arabic != title {
		variants = append(variants, arabic)
	}
	return variants
}

// EnglishKeywords maps CJK theme words in title to English search terms.
func EnglishKeywords(title string) []string {
	var keywords []string
	for _, mapping := range keywordTable {
		if strings.Contains(title, mapping.term) {
			keywords = append(keywords, mapping.english...)
		}
	}
	return keywords
}
