// Package log provides logging for the crawler, built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - Automatic truncation of oversized attribute values
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Truncation
//
// Crawl code logs values that come straight off the wire: response
// bodies, XML snippets, registry payloads. A single malformed publisher
// file can be tens of megabytes, and logging it whole makes the log
// useless and the process slow. The TrimHandler caps every string
// attribute at a fixed length and marks the cut.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("fetch failed",
//	    "url", "https://example.org/data.xml",
//	    "body", hugeBody, // logged truncated
//	)
package log
