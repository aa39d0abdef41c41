// Package client contains the client-side transport for GophStore.
//
// # Overview
//
// The package provides:
//  1. Gateway, the fetch gateway every outbound call goes through: it resolves
//     paths against a base URL, attaches the bearer token, throttles, decodes
//     JSON and records each request in a TraceLog.
//  2. The storefront API contract (see the Client interface) and its HTTP
//     implementation (HTTPClient): login, product search/filter, catalog
//     options, product save, image upload and delete.
//  3. CharacterClient for the public character list used by the portfolio
//     screen.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses become *APIError carrying the server-provided message.
// Connection failures wrap ErrUnavailable; 401 responses match ErrUnauthorized
// through errors.Is.
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
