// Package fetch performs HTTP requests against the registry and the
// publisher-hosted resource files, memoizing every result through the
// response cache.
//
// # Components
//
//   - Descriptor: a pure value describing one request; its canonical hash
//     is the cache key
//   - Fetcher: performs a single cache-or-fetch operation and classifies
//     the outcome as Ok, SoftFailure, or HardFailure
//   - Scheduler: fans out many fetch operations under a global
//     concurrency ceiling
//
// # Failure philosophy
//
// A crawl touches hundreds of third-party servers; some of them are
// always down, misconfigured, or serving garbage. The fetcher therefore
// never raises for an expected failure: a non-2xx status, transport
// error, TLS error, or truncated payload is a soft failure that is
// logged, not cached, and reported through the Result type so the rest
// of the batch keeps going. Only the per-item Result carries the
// outcome; sibling tasks are never cancelled.
package fetch
