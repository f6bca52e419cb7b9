// Package main hosts the filmtrack CLI entrypoint and command graph.
//
// Commands resolve local titles to TMDB records, run direct searches and
// lookups through the shared request queue, and maintain the partitioned
// response cache. doctor checks readiness and logs reads back the JSON log
// with structured filters. Configuration resolution and the wiring of logger, cache
// backend, TMDB client and resolver live in commandContext so subcommands
// only describe user-facing behaviour.
package main
