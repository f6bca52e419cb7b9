// Package preflight provides readiness checks for the services and paths
// filmtrack depends on: TMDB credentials and reachability, and the
// persistent cache tier.
//
// The CLI "filmtrack doctor" command runs RunAll and renders each Result.
// Checks are gated by configuration; the cache check adapts to the
// configured backend.
package preflight
