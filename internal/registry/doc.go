// Package registry orchestrates crawls against the IATI registry.
//
// A crawl runs in three stages. The organisation list endpoint yields the
// registry handles, one package_search per handle yields the published
// resources, and the resources whose format is IATI-XML become the fetch
// batch handed to the bounded scheduler. The stored handle set is
// reconciled against the list on the way through.
//
// Design decision: The stages communicate through plain values (handle
// slices and request descriptors) rather than channels or an event bus.
// Each stage is independently testable and the orchestrator stays a
// straight-line function.
package registry
