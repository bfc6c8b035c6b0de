// Package database provides SQLite-based storage for ingested IATI data
// and request outcome records.
//
// Design decision: We store each normalized XML element as a JSON column
// beside the explicitly extracted fields (identifiers, narrative text,
// codelist codes) instead of modelling the full IATI schema relationally.
// The schema is large, versioned, and unevenly used by publishers; the
// fields the pipeline queries get real columns, the rest travels as JSON.
//
// Design decision: Ingestion is idempotent at the row level. Activities
// and codelists are written with replace semantics inside a single
// transaction, so re-running a crawl converges on the same rows instead
// of accumulating duplicates.
package database
