package cache

import (
	"fmt"
	"strings"
	"time"
)

// Bucket is a cache partition. Each bucket has its own count, size and age
// limits so that disposable search results never evict long-lived details.
type Bucket int

const (
	BucketMovieDetails Bucket = iota
	BucketTVDetails
	BucketSearchMulti
	BucketSearchMovie
	BucketSearchTV
	BucketBackdropsMovie
	BucketBackdropsTV
	BucketGenres
	BucketOther

	bucketCount
)

var bucketNames = [bucketCount]string{
	BucketMovieDetails:   "movie-details",
	BucketTVDetails:      "tv-details",
	BucketSearchMulti:    "search-multi",
	BucketSearchMovie:    "search-movie",
	BucketSearchTV:       "search-tv",
	BucketBackdropsMovie: "backdrops-movie",
	BucketBackdropsTV:    "backdrops-tv",
	BucketGenres:         "genres",
	BucketOther:          "other",
}

// prefixTable is matched in order; the first matching prefix wins.
var prefixTable = [...]struct {
	prefix string
	bucket Bucket
}{
	{"movie_details_", BucketMovieDetails},
	{"tv_details_", BucketTVDetails},
	{"search_multi_", BucketSearchMulti},
	{"search_movie_", BucketSearchMovie},
	{"search_tv_", BucketSearchTV},
	{"backdrops_movie_", BucketBackdropsMovie},
	{"backdrops_tv_", BucketBackdropsTV},
	{"genres_", BucketGenres},
}

func (b Bucket) String() string {
	if b < 0 || b >= bucketCount {
		return fmt.Sprintf("bucket(%d)", int(b))
	}
	return bucketNames[b]
}

func (b Bucket) valid() bool { return b >= 0 && b < bucketCount }

// isDetail reports whether entries hold full records rather than listings.
func (b Bucket) isDetail() bool {
	return b == BucketMovieDetails || b == BucketTVDetails
}

// Buckets returns every bucket in declaration order.
func Buckets() []Bucket {
	out := make([]Bucket, 0, bucketCount)
	for b := Bucket(0); b < bucketCount; b++ {
		out = append(out, b)
	}
	return out
}

// ParseBucket resolves a bucket by name. Underscores are accepted in place of
// dashes.
func ParseBucket(name string) (Bucket, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for b, candidate := range bucketNames {
		if candidate == normalized {
			return Bucket(b), nil
		}
	}
	return BucketOther, fmt.Errorf("unknown cache bucket %q", name)
}

// BucketForKey returns the bucket owning key.
func BucketForKey(key string) Bucket {
	for _, entry := range prefixTable {
		if strings.HasPrefix(key, entry.prefix) {
			return entry.bucket
		}
	}
	return BucketOther
}

// Policy bounds a single bucket.
type Policy struct {
	MaxItems   int
	MaxBytes   int
	Expiration time.Duration
}

const (
	defaultMaxItems   = 200
	defaultMaxBytes   = 2 << 20
	defaultExpiration = 24 * time.Hour
)

// DefaultPolicy returns the limits applied to buckets without overrides.
func DefaultPolicy() Policy {
	return Policy{
		MaxItems:   defaultMaxItems,
		MaxBytes:   defaultMaxBytes,
		Expiration: defaultExpiration,
	}
}

// merge fills zero fields of p from base.
func (p Policy) merge(base Policy) Policy {
	if p.MaxItems <= 0 {
		p.MaxItems = base.MaxItems
	}
	if p.MaxBytes <= 0 {
		p.MaxBytes = base.MaxBytes
	}
	if p.Expiration <= 0 {
		p.Expiration = base.Expiration
	}
	return p
}
