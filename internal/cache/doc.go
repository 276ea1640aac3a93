// Package cache memoizes metadata-service responses for the UI.
//
// # Overview
//
// Every view in dvx reads through this cache. An entry is keyed by
// (environment identity, query signature) and moves through NotRequested →
// Pending → Ready/Failed. GetOrFetch never blocks: it returns the current
// snapshot and, on first reference, schedules the fetch on a background
// goroutine. The UI stays responsive while data loads and re-renders when the
// Updates channel signals a completion.
//
// # Single-Flight
//
// Concurrent GetOrFetch calls for the same key observe the same Pending entry
// and trigger exactly one remote call. A Failed entry stays Failed until
// Retry clears it, so error banners do not flicker into retry loops.
//
// # Environment Switching
//
// SwitchEnv clears the whole cache in one atomic operation and bumps an
// internal generation counter. A fetch that was issued under the previous
// environment and completes afterwards is discarded by the generation check,
// never written into the new environment's cache. This is the one
// correctness-critical race in dvx; see TestSwitchEnv_DiscardsStaleCompletions.
package cache
