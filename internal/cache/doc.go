// Package cache provides the response cache that de-duplicates and
// memoizes HTTP fetches.
//
// The cache is a flat key→value store keyed by canonical request hashes
// (see the hashkey package). Entries are immutable once written and have
// no TTL: they persist until explicitly dropped. Because entries are
// immutable, the consistency model is deliberately relaxed:
//
//   - concurrent Set of the same key is last-write-wins (both writers
//     computed the same value, so the race is benign)
//   - Has followed by Get is not atomic; a key vanishing between the two
//     calls is treated as a miss, which simply triggers a re-fetch
//
// Two backends are provided: Memory for tests and single-process runs,
// and Redis wrapping an external cache service so that separate crawl
// and ingest invocations share fetched content.
package cache
