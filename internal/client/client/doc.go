// Package client is the HTTP client for the BioGuard REST API used by the
// admin CLI. It keeps the session in a SessionStore and transparently
// refreshes an expired access token once per request.
package client
