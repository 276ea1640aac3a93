// Package derive holds pure computations over fetched metadata.
//
// Nothing here touches the network or owns state: each function takes raw
// service data and returns a derived view. Results are cached by the caller
// alongside the raw data they were computed from.
//
//   - ResolveRoles: a user's effective security roles with inheritance
//     origins (direct, team, business unit chain)
//   - OrderLayers: a component's customization layers in base-to-top order
//   - Classify: relationship direction relative to a viewing entity
package derive
