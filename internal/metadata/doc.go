// Package metadata answers "which TMDB record is this title" and "fetch the
// details of this id".
//
// A Resolver composes the search strategy generator, the request queue, the
// relevance scorer and the partitioned cache. Every remote call first checks
// the cache; misses go through the shared queue so at most one TMDB request
// is in flight per process, and successful responses are written back to
// the cache under a key derived from the operation.
//
// Title resolution walks strategies sequentially and stops at the first
// result scoring above the accept threshold. When none does, the best result
// above the fallback threshold is returned as a best-effort match. Failing
// strategies are logged and skipped; finding nothing is a normal outcome
// reported through Resolution.Status rather than an error.
package metadata
