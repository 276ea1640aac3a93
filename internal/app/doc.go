// Package app wires configuration, credentials, the Dataverse client, and the
// cache store together and hands them to the UI.
package app
