// Package config provides configuration structures and utilities for
// iatifetch. It defines the options for crawling the registry, caching,
// ingestion, and report generation.
package config
