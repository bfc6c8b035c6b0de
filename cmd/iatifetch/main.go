// Package main provides the entry point for the iatifetch CLI.
//
// iatifetch crawls the IATI registry, caches every fetched document, and
// ingests the XML into a relational store.
//
// Usage:
//
//	iatifetch crawl
//	iatifetch ingest
//	iatifetch codelists
//
// See --help for all available options.
package main

// main is the entry point for iatifetch.
func main() {
	Execute()
}
