// Package ui implements the Bubble Tea front end.
//
// # Architecture
//
// The Model owns three collaborators and almost no state of its own:
//
//   - a nav.Stack holding where the user is (view kinds, cursors, tabs,
//     filters)
//   - a cache.Store holding what has been fetched, keyed by environment and
//     query signature
//   - a dataverse.API doing the actual Web API calls
//
// Update never blocks on the network. Key handling mutates the stack, then
// ensureData issues whatever background fetch the new top frame needs; the
// store's single-flight guarantee makes repeated calls free. A long-lived
// command blocks on the store's update channel and delivers cacheUpdatedMsg
// whenever a fetch lands, which re-renders the view against the fresh data.
//
// View is a pure projection: it peeks at the store (never triggering fetches)
// and renders Pending entries as placeholders and Failed entries as inline
// banners with a retry hint, so one failed pane never takes down the screen.
//
// # Environment switching
//
// Switching environments builds a fresh client, resets the cache store (which
// also discards in-flight completions from the old environment), collapses
// the stack to the entity list, and persists the choice to the config file.
package ui
