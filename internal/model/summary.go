package model

import (
	"sync"
	"time"
)

// Counts holds the counters and failure notes produced by a crawl or
// ingest run. It is plain data: report writers serialize it directly.
type Counts struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total run duration, set by Summary.Finish.
	Elapsed time.Duration `json:"elapsed"`

	// Handles is the number of organisation handles seen in the list stage.
	Handles int `json:"handles"`

	// XMLRequests is the number of XML resource requests produced by the
	// detail stage (after any exclude-cached filtering).
	XMLRequests int `json:"xml_requests"`

	// Fetched counts successful fetches (including cache hits).
	Fetched int `json:"fetched"`

	// SoftFailures counts fetches that failed in an expected way
	// (transport error, non-2xx status, parse failure).
	SoftFailures int `json:"soft_failures"`

	// HardFailures counts fetches that failed unexpectedly.
	HardFailures int `json:"hard_failures"`

	// Organisations counts organisation records upserted.
	Organisations int `json:"organisations"`

	// Activities counts activity records upserted.
	Activities int `json:"activities"`

	// Rejected counts elements that failed validation and were skipped.
	Rejected int `json:"rejected"`

	// Narratives counts narrative rows written.
	Narratives int `json:"narratives"`

	// Children counts transaction/budget/result/document-link rows written.
	Children int `json:"children"`

	// Codelists and CodelistItems count refreshed vocabulary records.
	Codelists     int `json:"codelists"`
	CodelistItems int `json:"codelist_items"`

	// Failures holds human-readable notes for resources that did not make
	// it through the run. Absence of a resource from the stored records
	// plus a note here is the only per-resource status kept.
	Failures []string `json:"failures,omitempty"`
}

// Summary accumulates Counts while a crawl or ingest run executes. A single
// Summary is threaded through the orchestrator and the ingestion pipeline,
// then handed to a report writer.
//
// Design decision: Counters are guarded by a mutex rather than using
// atomic fields because fetch and ingest tasks run concurrently and
// several counters are often updated together (e.g. a failure increments
// a counter and appends a note). The lock is uncontended enough that the
// simplicity wins.
type Summary struct {
	mu     sync.Mutex
	counts Counts
}

// NewSummary creates a Summary with the start time set.
func NewSummary() *Summary {
	return &Summary{counts: Counts{StartedAt: time.Now()}}
}

// Finish records the total elapsed time.
func (s *Summary) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts.Elapsed = time.Since(s.counts.StartedAt)
}

// Add applies a delta to the counters under the lock. The callback receives
// the counts with the mutex held and must not retain them.
func (s *Summary) Add(fn func(*Counts)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.counts)
}

// AddFailure appends a failure note.
func (s *Summary) AddFailure(note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts.Failures = append(s.counts.Failures, note)
}

// Snapshot returns a copy of the counters safe to read without locking.
func (s *Summary) Snapshot() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.counts
	out.Failures = append([]string(nil), s.counts.Failures...)
	return out
}
