package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"filmtrack/internal/logging"
	"filmtrack/internal/search"
	"filmtrack/internal/services"
	"filmtrack/internal/tmdb"
)

// Status is the outcome of a title resolution.
type Status string

const (
	StatusMatched      Status = "matched"
	StatusBestEffort   Status = "best_effort"
	StatusNoMatch      Status = "no_match"
	StatusInvalidInput Status = "invalid_input"
)

// Resolution describes the record chosen for a title.
type Resolution struct {
	Status        Status       `json:"status"`
	Record        *tmdb.Result `json:"record,omitempty"`
	Score         float64      `json:"score"`
	Query         string       `json:"query,omitempty"`
	Strategies    []string     `json:"strategies"`
	Attempts      int          `json:"attempts"`
	CacheHits     int          `json:"cache_hits"`
	Failures      int          `json:"failures"`
	CorrelationID string       `json:"correlation_id,omitempty"`
}

// Found reports whether a record was chosen.
func (r Resolution) Found() bool {
	return r.Record != nil && (r.Status == StatusMatched || r.Status == StatusBestEffort)
}

// ResolveByTitle finds the TMDB record that best matches title. Strategies
// run one at a time and the first result above the accept threshold wins.
// Otherwise the best result above the fallback threshold is returned as
// best effort. An empty title yields StatusInvalidInput and an error wrapping
// services.ErrInvalidInput; finding nothing is StatusNoMatch with a nil
// error.
func (r *Resolver) ResolveByTitle(ctx context.Context, title string, kind tmdb.MediaKind) (Resolution, error) {
	ctx = withCorrelation(ctx, "resolve")
	logger := logging.WithContext(ctx, r.logger)
	correlationID, _ := services.RequestIDFromContext(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		return Resolution{Status: StatusInvalidInput, CorrelationID: correlationID},
			services.Wrap(services.ErrInvalidInput, "metadata", "resolve", "title must not be empty", nil)
	}
	if kind == "" {
		kind = tmdb.KindMulti
	}

	strategies := search.GenerateWithLimit(title, r.maxStrategies)
	queries := strategies.Queries
	if kind == tmdb.KindMulti {
		queries = strategies.All()
	}
	res := Resolution{
		Status:        StatusNoMatch,
		Strategies:    queries,
		CorrelationID: correlationID,
	}
	logger.Debug("resolving title",
		logging.String("title", title),
		logging.String("kind", string(kind)),
		logging.Strings("strategies", queries))

	var best *scored
	for i, query := range queries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempts++
		resp, hit, err := r.search(ctx, query, kind, 1)
		if hit {
			res.CacheHits++
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			res.Failures++
			logging.WarnWithContext(logger, "search strategy failed", "strategy_failed",
				logging.String("query", query),
				logging.Int("strategy", i+1),
				logging.Bool("retriable", tmdb.IsRetriable(err)),
				logging.Error(err))
			continue
		}

		top, ok := topResult(resp)
		if !ok {
			logger.Debug("strategy returned no results", logging.String("query", query))
			continue
		}
		score := search.Score(query, search.Candidate{
			Title:         top.DisplayTitle(),
			OriginalTitle: top.DisplayOriginalTitle(),
		})
		decision := r.thresholds.Classify(score)
		logger.Debug("strategy scored",
			logging.String("query", query),
			logging.String("candidate", top.DisplayTitle()),
			logging.Float64("score", score),
			logging.String("decision", decision.String()),
			logging.Bool("cached", hit))

		switch decision {
		case search.DecisionAccept:
			res.Status = StatusMatched
			res.Record = &top
			res.Score = score
			res.Query = query
			logDecision(logger, res, "score above accept threshold")
			return res, nil
		case search.DecisionCandidate:
			if best == nil || score > best.score {
				best = &scored{result: top, score: score, query: query}
			}
		}
	}

	if best != nil {
		res.Status = StatusBestEffort
		res.Record = &best.result
		res.Score = best.score
		res.Query = best.query
		logDecision(logger, res, "best result above fallback threshold")
		return res, nil
	}
	logDecision(logger, res, fmt.Sprintf("no result above fallback threshold after %d strategies", res.Attempts))
	return res, nil
}

type scored struct {
	result tmdb.Result
	score  float64
	query  string
}

// topResult returns the first movie or TV result. Multi search also returns
// people, which never describe a title.
func topResult(resp *tmdb.Response) (tmdb.Result, bool) {
	if resp == nil {
		return tmdb.Result{}, false
	}
	for _, result := range resp.Results {
		if result.MediaType == "person" {
			continue
		}
		return result, true
	}
	return tmdb.Result{}, false
}

func logDecision(logger *slog.Logger, res Resolution, reason string) {
	attrs := logging.DecisionAttrs("tmdb_match", string(res.Status), reason)
	attrs = append(attrs,
		logging.Int("attempts", res.Attempts),
		logging.Int("cache_hits", res.CacheHits),
		logging.Float64("score", res.Score))
	if res.Record != nil {
		attrs = append(attrs,
			logging.Int64("tmdb_id", res.Record.ID),
			logging.String("tmdb_title", res.Record.DisplayTitle()),
			logging.String("query", res.Query))
	}
	logger.Info("title resolution decided", logging.Args(attrs...)...)
}
