// Package model defines the core data structures used throughout iatifetch.
//
// This package contains the following main types:
//   - Organisation: A publisher record keyed by its IATI organisation-identifier
//   - Activity: An aid activity keyed by its iati-identifier
//   - Narrative: A free-text fragment hoisted out of an activity element
//   - ActivityChild: A transaction/budget/result/document-link row
//   - Codelist / CodelistItem: The IATI reference vocabularies
//   - Summary: Counters and failure notes accumulated during a crawl or ingest run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (registry, ingest, database, report) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
