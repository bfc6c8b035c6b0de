package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the fetch concurrency is
	// outside the supported range. The ceiling keeps a single crawl from
	// looking like a flood to publisher hosts.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be between 1 and 2000")

	// ErrInvalidRows is returned when the package_search page size is not
	// positive. The search must return every resource in one page.
	ErrInvalidRows = errors.New("invalid rows: must be positive")

	// ErrInvalidDelay is returned when the request delay is negative.
	// Use 0 for no delay between request starts.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNothingToIngest is returned when both element kinds are disabled.
	ErrNothingToIngest = errors.New("nothing to ingest: activities and organisations are both disabled")
)
