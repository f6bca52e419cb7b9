package cache

import (
	"slices"
	"strings"
	"time"
)

// countEvictionRatio is the share of a full bucket dropped before an insert.
const countEvictionRatio = 0.2

// sizeEvictionTarget is the fraction of MaxBytes a bucket is trimmed to once
// it overflows.
const sizeEvictionTarget = 0.7

type keyedEntry struct {
	key   string
	entry entry
	size  int
}

func sortedByAge(entries map[string]entry) []keyedEntry {
	out := make([]keyedEntry, 0, len(entries))
	for key, e := range entries {
		out = append(out, keyedEntry{key: key, entry: e})
	}
	slices.SortFunc(out, func(a, b keyedEntry) int {
		if c := a.entry.StoredAt.Compare(b.entry.StoredAt); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})
	return out
}

// evictForInsert makes room for one new key when the bucket is at its item
// cap: the oldest 20% go, at least one, and enough that the insert keeps the
// bucket within maxItems.
func evictForInsert(entries map[string]entry, maxItems int) []string {
	count := len(entries)
	if maxItems <= 0 || count < maxItems {
		return nil
	}
	n := max(int(float64(count)*countEvictionRatio), 1, count-maxItems+1)
	victims := sortedByAge(entries)[:n]
	evicted := make([]string, 0, n)
	for _, v := range victims {
		delete(entries, v.key)
		evicted = append(evicted, v.key)
	}
	return evicted
}

// evictForSize drops the largest entries until the encoded bucket fits
// within 70% of maxBytes.
func evictForSize(entries map[string]entry, encodedLen, maxBytes int) []string {
	if maxBytes <= 0 || encodedLen <= maxBytes {
		return nil
	}
	ranked := make([]keyedEntry, 0, len(entries))
	for key, e := range entries {
		ranked = append(ranked, keyedEntry{key: key, entry: e, size: encodedSize(key, e)})
	}
	slices.SortFunc(ranked, func(a, b keyedEntry) int {
		if a.size != b.size {
			return b.size - a.size
		}
		return strings.Compare(a.key, b.key)
	})

	target := int(float64(maxBytes) * sizeEvictionTarget)
	remaining := encodedLen
	var evicted []string
	for _, v := range ranked {
		if remaining <= target {
			break
		}
		delete(entries, v.key)
		remaining -= v.size
		evicted = append(evicted, v.key)
	}
	return evicted
}

// keepSince drops entries stored before cutoff and returns how many went.
func keepSince(entries map[string]entry, cutoff time.Time) int {
	var removed int
	for key, e := range entries {
		if e.StoredAt.Before(cutoff) {
			delete(entries, key)
			removed++
		}
	}
	return removed
}
