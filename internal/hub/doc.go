// Package hub holds the game registry: an ordered, read-only lookup from a
// stable identifier to a Descriptor carrying display metadata and the
// module instance.
//
// The registry is populated once before any navigation happens. Init and
// Default manage the process-wide instance used by cmd/bdhub; tests build
// isolated registries with NewRegistry.
package hub
