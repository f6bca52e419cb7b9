package search

import (
	"strings"

	"filmtrack/internal/textutil"
)

// containmentFloor is the minimum score when one title contains the other.
const containmentFloor = 0.8

// Candidate is the subset of a search result the scorer compares against.
type Candidate struct {
	Title         string
	OriginalTitle string
}

// Score measures how well query matches candidate on [0,1]. It is the best
// normalized Levenshtein similarity between the query and the candidate's
// title or original title, raw or normalized. Case-insensitive containment
// between query and title lifts the score to at least 0.8. Empty inputs
// score 0.
func Score(query string, candidate Candidate) float64 {
	if query == "" {
		return 0
	}
	best := 0.0
	compare := func(a, b string) {
		if a == "" || b == "" {
			return
		}
		if s := textutil.NormalizedSimilarity(a, b); s > best {
			best = s
		}
	}
	compare(query, candidate.Title)
	compare(query, candidate.OriginalTitle)

	normalizedQuery := normalizeForComparison(query)
	compare(normalizedQuery, normalizeForComparison(candidate.Title))
	compare(normalizedQuery, normalizeForComparison(candidate.OriginalTitle))

	if candidate.Title != "" {
		queryLower := strings.ToLower(query)
		titleLower := strings.ToLower(candidate.Title)
		if strings.Contains(titleLower, queryLower) || strings.Contains(queryLower, titleLower) {
			best = max(best, containmentFloor)
		}
	}
	return min(max(best, 0), 1)
}

// Decision classifies a score against Thresholds.
type Decision int

const (
	// DecisionReject means the candidate is not usable.
	DecisionReject Decision = iota
	// DecisionCandidate is kept as a best-effort fallback.
	DecisionCandidate
	// DecisionAccept stops the strategy loop.
	DecisionAccept
)

func (d Decision) String() string {
	switch d {
	case DecisionAccept:
		return "accept"
	case DecisionCandidate:
		return "candidate"
	default:
		return "reject"
	}
}

// Thresholds holds the acceptance policy. Both bounds are exclusive.
type Thresholds struct {
	Accept   float64
	Fallback float64
}

// Default returns the stock acceptance policy.
func Default() Thresholds {
	return Thresholds{Accept: 0.8, Fallback: 0.3}
}

// Classify maps score to a decision.
func (t Thresholds) Classify(score float64) Decision {
	switch {
	case score > t.Accept:
		return DecisionAccept
	case score > t.Fallback:
		return DecisionCandidate
	default:
		return DecisionReject
	}
}
