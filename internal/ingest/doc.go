// Package ingest turns fetched IATI XML documents into relational rows.
//
// A document yields organisations (iati-organisations/iati-organisation)
// and activities (iati-activities/iati-activity). Activities have their
// recurring child collections (transactions, budgets, results, document
// links) and all narrative text split into rows of their own before the
// remaining element is stored as JSON.
//
// # Failure philosophy
//
// Publisher files are messy. An element that violates the format in a
// recoverable way, such as an activity without an iati-identifier, is
// recorded as a rejection and skipped; the batch keeps going. Only a
// structural assumption violation, an organisation element carrying
// neither an organisation-identifier nor an iati-identifier, stops the
// document, because it means the file is not what the registry said it
// was.
package ingest
