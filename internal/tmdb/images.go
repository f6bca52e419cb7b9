package tmdb

import (
	"slices"
	"strings"
)

const defaultImageSize = "w500"

// ImageURL joins an image base URL, a size such as "w780" or "original" and
// a TMDB file path. An empty path yields "".
func ImageURL(base, size, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if size = strings.Trim(strings.TrimSpace(size), "/"); size == "" {
		size = defaultImageSize
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/" + size + path
}

// RankImages returns a copy of images ordered by vote count, then vote
// average, then pixel area, all descending. A positive limit truncates the
// result.
func RankImages(images []Image, limit int) []Image {
	ranked := slices.Clone(images)
	slices.SortStableFunc(ranked, func(a, b Image) int {
		if a.VoteCount != b.VoteCount {
			if a.VoteCount > b.VoteCount {
				return -1
			}
			return 1
		}
		if a.VoteAverage != b.VoteAverage {
			if a.VoteAverage > b.VoteAverage {
				return -1
			}
			return 1
		}
		areaA, areaB := a.Width*a.Height, b.Width*b.Height
		switch {
		case areaA > areaB:
			return -1
		case areaA < areaB:
			return 1
		}
		return 0
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
