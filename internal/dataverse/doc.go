// Package dataverse provides an HTTP client for the Dataverse Web API.
//
// # Overview
//
// This package defines the API client dvx uses to browse an environment's
// metadata: entity definitions, attributes, relationships, solutions and
// their components, customization layers, users, teams, security roles,
// business units, global option sets, and ad-hoc queries (OData and
// FetchXML). All operations are read-only GETs.
//
// # Architecture
//
// The package is split into four files:
//
//   - client.go: HTTP client, endpoint methods, request plumbing
//   - types.go: Data structures mirroring the Web API's OData shapes
//   - query.go: Ad-hoc query building, FetchXML validation, result flattening
//   - errors.go: The closed error taxonomy surfaced to the rest of dvx
//
// # Error Taxonomy
//
// Every method returns either a typed payload or an *APIError whose Kind is
// one of Unauthorized, NotFound, Transient, Malformed, or Service. Callers
// never see wire-level detail; the taxonomy is the whole contract. Credential
// failures from the auth package are wrapped and pass through errors.Is.
//
// # Authentication
//
// Requests carry a bearer token obtained from an auth.TokenProvider for the
// environment's resource scope. The Global Discovery Service uses its own
// scope, handled inside DiscoverEnvironments.
//
// # Client Usage
//
//	client, err := dataverse.NewClient("https://org.crm.dynamics.com", tokens)
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	entities, err := client.ListEntities(ctx)
//	if err != nil {
//		log.Printf("entity fetch failed: %v", err)
//	}
package dataverse
