package preflight

import (
	"context"

	"filmtrack/internal/config"
	"filmtrack/internal/tmdb"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every applicable check for cfg. client may be nil when no
// credentials are configured; the TMDB check is then skipped because the
// credentials check already reports the problem.
func RunAll(ctx context.Context, cfg *config.Config, client tmdb.API) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckCredentials(cfg)}
	if client != nil {
		results = append(results, CheckTMDB(ctx, client))
	}
	results = append(results, CheckCacheStore(ctx, cfg))
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
