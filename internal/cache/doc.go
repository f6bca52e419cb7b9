// Package cache implements the partitioned response cache in front of the
// metadata service.
//
// Keys are routed to a fixed set of buckets by prefix (movie_details_,
// search_multi_, backdrops_tv_, ...; anything else lands in "other"). Every
// bucket carries its own Policy: an item cap enforced before inserts by
// dropping the oldest fifth, a byte cap enforced after inserts by dropping
// the largest entries until the bucket fits in 70% of the cap, and an
// expiration applied on read and by Sweep.
//
// Buckets are mirrored to a blobstore.Store as one record named
// "<namespace>-<bucket>". A record that fails to decode is discarded. A save
// rejected for quota keeps only the last hour of entries, and the bucket is
// dropped if that still does not fit. None of these conditions reach callers;
// the cache is an optimization, never a source of truth.
package cache
