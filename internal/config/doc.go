// Package config loads, normalizes, and validates filmtrack configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY and TMDB_ACCESS_TOKEN. The Config type centralizes every knob
// the resolver and CLI need: API credentials, request spacing, search
// thresholds, cache backend selection and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
