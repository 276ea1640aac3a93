// Package auth acquires Dataverse access tokens from the Azure CLI.
//
// dvx never handles raw credentials. It shells out to `az account
// get-access-token` for the environment's resource scope and caches the
// resulting bearer token until shortly before expiry. A missing CLI session
// maps to ErrNotLoggedIn so the UI can tell the user to run `az login`
// instead of crashing.
package auth
