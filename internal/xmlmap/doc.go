// Package xmlmap converts raw XML text into a nested map/slice structure
// suitable for structural queries and JSON storage.
//
// The conversion follows three rules:
//
//   - attributes become keys prefixed with "@" ("@ref", "@xml:lang") so
//     they can never collide with child element names
//   - character data of a mixed element is stored under "#text"
//   - a fixed set of recurrence-ambiguous tag names is always materialized
//     as a sequence, even when exactly one instance is present
//
// The forced-sequence rule exists because the IATI schema allows many
// elements to appear 0, 1, or N times, and a naive conversion collapses
// the single-occurrence case to a bare mapping. Downstream code would then
// need two code paths for every such element. Forcing the list removes
// the ambiguity at the boundary.
//
// Malformed XML and empty payloads normalize to an empty map rather than
// an error, so ingestion sees "nothing to import" uniformly.
//
// Design decision: We implement the conversion over encoding/xml tokens
// rather than adopting a mapping library because no library in reach
// offers the forced-sequence materialization this pipeline depends on;
// bolting it on as a post-pass would walk every document twice.
package xmlmap
