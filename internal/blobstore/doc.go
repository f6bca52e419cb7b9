// Package blobstore provides the persistent tier behind the response cache.
//
// A Store maps record names to opaque byte payloads. Backends:
//   - MemoryStore: process memory, for tests and the "memory" backend
//   - FileStore: one JSON file per record, atomic replace, directory lock
//   - SQLiteStore: a single table in a SQLite database (modernc driver)
//   - RedisStore: redis strings under a key prefix
//
// WithQuota layers a total byte budget over any backend and reports
// ErrQuotaExceeded when a save would break it.
package blobstore
