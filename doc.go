// Package singleton provides a generic, concurrency-safe lazy singleton
// provider for Go.
//
// This repository keeps the surface intentionally small:
//
//   - one instance per type, constructed on first request behind a per-type
//     guard (fast lock-free reads once constructed)
//   - an opt-in contract instead of magic: unexported struct + InitSingleton
//   - typed, uncached errors so misconfiguration is diagnosable and fixable
//     at runtime
//   - optional eager construction at startup (Prime) and lifecycle events
//     for logging or metrics
//
// The goal is to keep instance ownership explicit: the provider is the only
// producer of a managed type, and everything else (wiring between instances,
// scopes, teardown) stays in ordinary Go code in your composition root.
//
// See subpackages:
//   - singleton: the library package (provider, Cell, Prime, events)
//   - cmd/singen: accessor generator and contract linter for managed types
//   - examples/*: runnable examples, one per feature area
package singleton
