// Package tmdb is a thin HTTP client for the TMDB v3 API.
//
// The client covers the handful of endpoints filmtrack needs: multi, movie
// and TV search, movie and TV details, image listings and genre lists.
// Requests authenticate with either a v3 api_key query parameter or a v4
// bearer token. Non-200 responses surface as *HTTPError so callers can
// decide whether a failure is worth retrying.
package tmdb
